package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/repository"
)

// guard resolves the caller's membership for a workspace. Every service
// embeds one so authorization plumbing stays in one place.
type guard struct {
	members repository.MemberRepository
}

// resolve returns the caller's member record for the workspace, or ok=false
// when the user is not a member. An empty userID short-circuits without
// touching the database.
func (g guard) resolve(ctx context.Context, workspaceID, userID string) (models.Member, bool, error) {
	if userID == "" {
		return models.Member{}, false, nil
	}

	member, err := g.members.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Member{}, false, nil
		}
		return models.Member{}, false, err
	}

	return member, true, nil
}

// requireMember returns the caller's membership or an authorization error.
func (g guard) requireMember(ctx context.Context, workspaceID, userID string) (models.Member, error) {
	if userID == "" {
		return models.Member{}, ErrUnauthenticated
	}

	member, ok, err := g.resolve(ctx, workspaceID, userID)
	if err != nil {
		return models.Member{}, err
	}
	if !ok {
		return models.Member{}, ErrNotMember
	}

	return member, nil
}

// requireAdmin returns the caller's membership when it carries the admin role.
func (g guard) requireAdmin(ctx context.Context, workspaceID, userID string) (models.Member, error) {
	member, err := g.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return models.Member{}, err
	}
	if !member.IsAdmin() {
		return models.Member{}, ErrForbidden
	}

	return member, nil
}

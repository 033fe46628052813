package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/repository"
)

// MemberService manages workspace memberships and roles.
type MemberService interface {
	List(ctx context.Context, userID, workspaceID string) ([]dto.MemberResponse, error)
	Get(ctx context.Context, userID, memberID string) (*dto.MemberResponse, error)
	Current(ctx context.Context, userID, workspaceID string) (*dto.MemberResponse, error)
	UpdateRole(ctx context.Context, userID, memberID string, req dto.MemberUpdateRequest) (*dto.MemberResponse, error)
	Remove(ctx context.Context, userID, memberID string) error
}

type memberService struct {
	members repository.MemberRepository
	users   repository.UserRepository
	guard   guard
	events  EventPublisher
	log     zerolog.Logger
}

func NewMemberService(
	members repository.MemberRepository,
	users repository.UserRepository,
	events EventPublisher,
	log zerolog.Logger,
) MemberService {
	if events == nil {
		events = NopPublisher{}
	}
	return &memberService{
		members: members,
		users:   users,
		guard:   guard{members: members},
		events:  events,
		log:     log.With().Str("component", "member-service").Logger(),
	}
}

func (s *memberService) List(ctx context.Context, userID, workspaceID string) ([]dto.MemberResponse, error) {
	// Non-members see an empty roster, not an error.
	_, ok, err := s.guard.resolve(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []dto.MemberResponse{}, nil
	}

	members, err := s.members.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		user, ok := byID[m.UserID]
		if !ok {
			continue
		}
		out = append(out, dto.NewMemberResponse(m, user))
	}
	return out, nil
}

func (s *memberService) Get(ctx context.Context, userID, memberID string) (*dto.MemberResponse, error) {
	member, err := s.getMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	// Outsiders cannot tell a hidden member from a missing one.
	_, ok, err := s.guard.resolve(ctx, member.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMemberNotFound
	}

	user, err := s.users.Get(ctx, member.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	resp := dto.NewMemberResponse(member, user)
	return &resp, nil
}

// Current resolves the caller's own membership. A nil response without
// an error means the caller does not belong to the workspace.
func (s *memberService) Current(ctx context.Context, userID, workspaceID string) (*dto.MemberResponse, error) {
	member, ok, err := s.guard.resolve(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	user, err := s.users.Get(ctx, member.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	resp := dto.NewMemberResponse(member, user)
	return &resp, nil
}

func (s *memberService) UpdateRole(ctx context.Context, userID, memberID string, req dto.MemberUpdateRequest) (*dto.MemberResponse, error) {
	member, err := s.getMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if _, err := s.guard.requireAdmin(ctx, member.WorkspaceID, userID); err != nil {
		return nil, err
	}

	// Demoting the only admin would strand the workspace.
	if member.IsAdmin() && req.Role != models.RoleAdmin {
		admins, err := s.members.CountAdmins(ctx, member.WorkspaceID)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	if err := s.members.UpdateRole(ctx, memberID, req.Role); err != nil {
		return nil, err
	}
	member.Role = req.Role

	s.events.Publish(Event{
		Type:        EventMemberChanged,
		WorkspaceID: member.WorkspaceID,
		Room:        WorkspaceRoom(member.WorkspaceID),
		Payload:     map[string]string{"memberId": memberID, "action": "role"},
	})

	user, err := s.users.Get(ctx, member.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	resp := dto.NewMemberResponse(member, user)
	return &resp, nil
}

func (s *memberService) Remove(ctx context.Context, userID, memberID string) error {
	member, err := s.getMember(ctx, memberID)
	if err != nil {
		return err
	}

	if _, err := s.guard.requireMember(ctx, member.WorkspaceID, userID); err != nil {
		return err
	}

	// Admins cannot be removed, which also covers an admin trying to
	// leave: demote first. Any member may remove a non-admin, including
	// themselves.
	if member.IsAdmin() {
		return ErrForbidden
	}

	// Removing a member also removes their messages, reactions and
	// conversations in one transaction.
	if err := s.members.Purge(ctx, memberID); err != nil {
		return err
	}

	s.events.Publish(Event{
		Type:        EventMemberChanged,
		WorkspaceID: member.WorkspaceID,
		Room:        WorkspaceRoom(member.WorkspaceID),
		Payload:     map[string]string{"memberId": memberID, "action": "removed"},
	})

	s.log.Info().Str("member_id", memberID).Str("workspace_id", member.WorkspaceID).Msg("member removed")
	return nil
}

func (s *memberService) getMember(ctx context.Context, memberID string) (models.Member, error) {
	member, err := s.members.Get(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Member{}, ErrMemberNotFound
		}
		return models.Member{}, err
	}
	return member, nil
}

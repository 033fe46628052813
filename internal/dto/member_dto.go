package dto

import (
	"time"

	"github.com/slate-hq/slate-api/internal/models"
)

// MemberUpdateRequest describes a role change.
type MemberUpdateRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

// UserResponse is the public slice of a user profile.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

// MemberResponse is a membership enriched with its user profile.
type MemberResponse struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspace_id"`
	UserID      string       `json:"user_id"`
	Role        string       `json:"role"`
	User        UserResponse `json:"user"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:    model.ID,
		Name:  model.Name,
		Email: model.Email,
		Image: model.Image,
	}
}

// NewMemberResponse converts a member and its user into a DTO.
func NewMemberResponse(member models.Member, user models.User) MemberResponse {
	return MemberResponse{
		ID:          member.ID,
		WorkspaceID: member.WorkspaceID,
		UserID:      member.UserID,
		Role:        member.Role,
		User:        NewUserResponse(user),
		CreatedAt:   member.CreatedAt,
	}
}

package dto

import (
	"time"

	"github.com/slate-hq/slate-api/internal/models"
)

// WorkspaceCreateRequest describes the payload for creating a workspace.
type WorkspaceCreateRequest struct {
	Name string `json:"name" validate:"required,min=3,max=20"`
}

// WorkspaceUpdateRequest describes the payload for renaming a workspace.
type WorkspaceUpdateRequest struct {
	Name string `json:"name" validate:"required,min=3,max=20"`
}

// WorkspaceJoinRequest carries the join code entered on the invite page.
type WorkspaceJoinRequest struct {
	JoinCode string `json:"join_code" validate:"required,len=6"`
}

// WorkspaceResponse is the member-facing workspace representation.
// It includes the join code, so it must only ever be returned to
// members of the workspace.
type WorkspaceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID string    `json:"owner_user_id"`
	JoinCode    string    `json:"join_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkspaceInfoResponse is the public join-preview representation. It
// deliberately omits the join code.
type WorkspaceInfoResponse struct {
	Name     string `json:"name"`
	IsMember bool   `json:"is_member"`
}

// NewWorkspaceResponse converts a model into a DTO.
func NewWorkspaceResponse(model models.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:          model.ID,
		Name:        model.Name,
		OwnerUserID: model.OwnerUserID,
		JoinCode:    model.JoinCode,
		CreatedAt:   model.CreatedAt,
	}
}

// NewWorkspaceResponseSlice converts a slice of models into DTOs.
func NewWorkspaceResponseSlice(workspaces []models.Workspace) []WorkspaceResponse {
	responses := make([]WorkspaceResponse, 0, len(workspaces))
	for _, workspace := range workspaces {
		responses = append(responses, NewWorkspaceResponse(workspace))
	}

	return responses
}

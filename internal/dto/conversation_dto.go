package dto

import (
	"time"

	"github.com/slate-hq/slate-api/internal/models"
)

// ConversationCreateRequest asks for the conversation between the
// caller and another member of the same workspace.
type ConversationCreateRequest struct {
	WorkspaceID string `json:"workspace_id" validate:"required"`
	MemberID    string `json:"member_id" validate:"required"`
}

// ConversationResponse is the serialized conversation.
type ConversationResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	MemberOneID string    `json:"member_one_id"`
	MemberTwoID string    `json:"member_two_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewConversationResponse converts a model into a DTO.
func NewConversationResponse(model models.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:          model.ID,
		WorkspaceID: model.WorkspaceID,
		MemberOneID: model.MemberOneID,
		MemberTwoID: model.MemberTwoID,
		CreatedAt:   model.CreatedAt,
	}
}

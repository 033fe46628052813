package dto

import (
	"time"

	"github.com/slate-hq/slate-api/internal/models"
)

// MessageCreateRequest describes a new message. Exactly one of
// ChannelID and ConversationID must be set on a top-level message;
// replies set ParentMessageID and inherit the parent's container.
type MessageCreateRequest struct {
	Body            string `json:"body" validate:"required"`
	Image           string `json:"image,omitempty"`
	WorkspaceID     string `json:"workspace_id" validate:"required"`
	ChannelID       string `json:"channel_id,omitempty"`
	ConversationID  string `json:"conversation_id,omitempty"`
	ParentMessageID string `json:"parent_message_id,omitempty"`
}

// MessageUpdateRequest describes a body edit.
type MessageUpdateRequest struct {
	Body string `json:"body" validate:"required"`
}

// MessageListQuery selects a container and a page of its messages.
type MessageListQuery struct {
	ChannelID       string `query:"channel_id"`
	ConversationID  string `query:"conversation_id"`
	ParentMessageID string `query:"parent_message_id"`
	Cursor          string `query:"cursor"`
	Limit           int    `query:"limit"`
}

// ReactionGroup aggregates the reactions on one message that share an
// emoji value. MemberIDs preserve the order the reactions were created.
type ReactionGroup struct {
	Value     string   `json:"value"`
	Count     int      `json:"count"`
	MemberIDs []string `json:"member_ids"`
}

// ThreadSummary describes the replies under a top-level message: how
// many there are, the avatar of the first replier, and the name and
// timestamp of the most recent reply.
type ThreadSummary struct {
	Count     int       `json:"count"`
	Image     string    `json:"image,omitempty"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// MessageResponse is a message enriched with its author, grouped
// reactions, and (on top-level listings) a thread summary.
type MessageResponse struct {
	ID              string          `json:"id"`
	Body            string          `json:"body"`
	Image           string          `json:"image,omitempty"`
	MemberID        string          `json:"member_id"`
	WorkspaceID     string          `json:"workspace_id"`
	ChannelID       *string         `json:"channel_id,omitempty"`
	ConversationID  *string         `json:"conversation_id,omitempty"`
	ParentMessageID *string         `json:"parent_message_id,omitempty"`
	Author          MemberResponse  `json:"author"`
	Reactions       []ReactionGroup `json:"reactions"`
	Thread          *ThreadSummary  `json:"thread,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MessagePageResponse is one page of a newest-first message listing.
type MessagePageResponse struct {
	Page           []MessageResponse `json:"page"`
	IsDone         bool              `json:"is_done"`
	ContinueCursor string            `json:"continue_cursor,omitempty"`
}

// NewMessageResponse converts a message model into a DTO shell; the
// service fills in author, reactions, and thread enrichment.
func NewMessageResponse(model models.Message) MessageResponse {
	return MessageResponse{
		ID:              model.ID,
		Body:            model.Body,
		Image:           model.Image,
		MemberID:        model.MemberID,
		WorkspaceID:     model.WorkspaceID,
		ChannelID:       model.ChannelID,
		ConversationID:  model.ConversationID,
		ParentMessageID: model.ParentMessageID,
		Reactions:       []ReactionGroup{},
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

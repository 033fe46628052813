package models

import "time"

// Message is a single chat message. Exactly one of ChannelID and
// ConversationID is set for a top-level message; ParentMessageID marks
// a thread reply and must reference a message that itself has no
// parent (threads are one level deep).
type Message struct {
	ID              string    `gorm:"size:36;primaryKey" json:"id"`
	Body            string    `gorm:"type:text;not null" json:"body"`
	Image           string    `gorm:"size:512" json:"image,omitempty"`
	MemberID        string    `gorm:"size:36;index;not null" json:"member_id"`
	WorkspaceID     string    `gorm:"size:36;index;not null" json:"workspace_id"`
	ChannelID       *string   `gorm:"size:36;index" json:"channel_id,omitempty"`
	ConversationID  *string   `gorm:"size:36;index" json:"conversation_id,omitempty"`
	ParentMessageID *string   `gorm:"size:36;index" json:"parent_message_id,omitempty"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Reaction records one member reacting to one message with one emoji
// value. The unique index over the triple makes a repeated toggle a
// delete rather than a duplicate insert, even under races.
type Reaction struct {
	ID          string    `gorm:"size:36;primaryKey" json:"id"`
	WorkspaceID string    `gorm:"size:36;index;not null" json:"workspace_id"`
	MessageID   string    `gorm:"size:36;uniqueIndex:idx_reactions_message_member_value;index" json:"message_id"`
	MemberID    string    `gorm:"size:36;uniqueIndex:idx_reactions_message_member_value;index" json:"member_id"`
	Value       string    `gorm:"size:64;uniqueIndex:idx_reactions_message_member_value;not null" json:"value"`
	CreatedAt   time.Time `json:"created_at"`
}

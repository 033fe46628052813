package models

import "time"

// Channel is a named topic container for messages within a workspace.
// Names are stored normalized: lower-case, whitespace runs collapsed
// to a single hyphen.
type Channel struct {
	ID          string    `gorm:"size:36;primaryKey" json:"id"`
	WorkspaceID string    `gorm:"size:36;index;not null" json:"workspace_id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Conversation is a 1:1 direct-message container between two members of
// the same workspace. The pair is unordered: lookups must match either
// assignment of member_one/member_two.
type Conversation struct {
	ID          string    `gorm:"size:36;primaryKey" json:"id"`
	WorkspaceID string    `gorm:"size:36;index;not null" json:"workspace_id"`
	MemberOneID string    `gorm:"size:36;index;not null" json:"member_one_id"`
	MemberTwoID string    `gorm:"size:36;index;not null" json:"member_two_id"`
	CreatedAt   time.Time `json:"created_at"`
}

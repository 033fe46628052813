package models

import "time"

// Workspace is the top-level tenant container. Every channel, member,
// conversation, and message belongs to exactly one workspace.
type Workspace struct {
	ID          string    `gorm:"size:36;primaryKey" json:"id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	OwnerUserID string    `gorm:"size:36;index;not null" json:"owner_user_id"`
	JoinCode    string    `gorm:"size:6;not null" json:"join_code"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member ties a user to a workspace with a role. The unique index on
// (workspace_id, user_id) is what guarantees one membership per user
// per workspace even when two join requests race.
type Member struct {
	ID          string    `gorm:"size:36;primaryKey" json:"id"`
	WorkspaceID string    `gorm:"size:36;uniqueIndex:idx_members_workspace_user;index" json:"workspace_id"`
	UserID      string    `gorm:"size:36;uniqueIndex:idx_members_workspace_user;index" json:"user_id"`
	Role        string    `gorm:"size:16;not null;default:member" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// IsAdmin reports whether the member holds the admin role.
func (m Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

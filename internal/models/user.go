package models

import "time"

// User is reference data owned by the external identity provider. The
// API only reads it to enrich members and messages; the profile row is
// upserted from token claims on first contact.
type User struct {
	ID        string    `gorm:"size:36;primaryKey" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Image     string    `gorm:"size:512" json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import (
	"time"
)

// Role is the moderation role attached to a profile.
type Role string

const (
	// RoleAdmin grants access to moderation operations.
	RoleAdmin Role = "admin"
	// RoleModerator is reserved for future scoped moderation rights.
	RoleModerator Role = "moderator"
	// RoleUser is the default role.
	RoleUser Role = "user"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// Profile holds per-user extension data. Exactly one row exists per user;
// the unique index on UserID makes lazy provisioning race-safe.
type Profile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Bio        string    `gorm:"type:text" json:"bio"`
	PictureRef string    `json:"picture_ref"`
	IsPrivate  bool      `gorm:"default:false" json:"is_private"`
	Role       Role      `gorm:"type:varchar(10);default:'user'" json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

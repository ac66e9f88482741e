// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered Fluss user.
// Email is only serialized to the user themselves; use PublicView for
// everyone else.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email,omitempty"`
	Password  string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Posts []Post `gorm:"foreignKey:OwnerID" json:"posts,omitempty"`
	Fame  []Fame `gorm:"foreignKey:UserID" json:"-"`
}

// PublicView returns a copy of the user with private fields blanked.
// The email of a user is visible only to that user.
func (u User) PublicView(viewerID uint) User {
	if u.ID != viewerID {
		u.Email = ""
	}
	u.Password = ""
	return u
}

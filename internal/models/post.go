package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the Fluss feed.
//
// FamePoints is denormalized: it always equals 1 (the creation offset) plus
// the sum of all fame values for the post. Only the fame repository writes
// it after creation.
type Post struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"not null" json:"title"`
	Text       string `gorm:"type:text;not null" json:"text"`
	FamePoints int    `gorm:"not null;default:1" json:"fame_points"`
	OwnerID    uint   `gorm:"not null;index" json:"owner_id"`
	Owner      User   `gorm:"foreignKey:OwnerID" json:"owner"`
	// ViewerFame is the requesting user's own vote on this post, null when
	// the viewer has not voted or is anonymous. Computed at query time.
	ViewerFame *int           `gorm:"->" json:"viewer_fame"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TextSnippet returns the first 80 characters of the post body for feed rows.
func (p *Post) TextSnippet() string {
	const snippetLen = 80
	runes := []rune(p.Text)
	if len(runes) <= snippetLen {
		return p.Text
	}
	return string(runes[:snippetLen])
}

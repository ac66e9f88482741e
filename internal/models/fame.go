package models

import "time"

// Fame values are a signed unit: up or down.
const (
	FameUp   = 1
	FameDown = -1
)

// Fame is a single user's current vote on a single post.
// The composite primary key guarantees at most one entry per (user, post);
// concurrent casts rely on that constraint rather than application locks.
type Fame struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`
}

// NormalizeFameValue collapses any input to exactly one of {+1, -1}.
// Anything that is not a downvote counts as an upvote; this mirrors a
// tri-state up/neutral/down client collapsing to binary.
func NormalizeFameValue(value int) int {
	if value == FameDown {
		return FameDown
	}
	return FameUp
}

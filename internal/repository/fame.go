// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"fluss/internal/models"

	"gorm.io/gorm"
)

// CastOutcome describes what a cast did to the ledger.
type CastOutcome string

const (
	CastCreated CastOutcome = "created"
	CastFlipped CastOutcome = "flipped"
	CastNoop    CastOutcome = "noop"
)

// FameRepository owns the one-vote-per-user-per-post invariant and the
// incremental maintenance of Post.FamePoints.
type FameRepository interface {
	Cast(ctx context.Context, userID, postID uint, value int) (int, CastOutcome, error)
	ValueFor(ctx context.Context, userID, postID uint) (*int, error)
	RemoveForPost(ctx context.Context, postID uint) error
}

type fameRepository struct {
	db *gorm.DB
}

// NewFameRepository creates a new fame repository.
func NewFameRepository(db *gorm.DB) FameRepository {
	return &fameRepository{db: db}
}

// Cast records or updates userID's vote on postID and keeps the denormalized
// tally in step, all in one transaction.
//
// The ledger write and the tally adjustment never use read-then-write: the
// insert relies on the (user_id, post_id) primary key with ON CONFLICT DO
// NOTHING, the flip is a conditional UPDATE, and the tally moves by a column
// expression. RowsAffected of those statements decides the delta, so two
// concurrent casts can never double-count regardless of interleaving.
//
// Returns the resulting tally. A repeat vote of the same polarity is a no-op.
func (r *fameRepository) Cast(ctx context.Context, userID, postID uint, value int) (int, CastOutcome, error) {
	value = models.NormalizeFameValue(value)

	var tally int
	outcome := CastNoop

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		delta := 0

		res := tx.Exec(
			`INSERT INTO fames (user_id, post_id, value, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, post_id) DO NOTHING`,
			userID, postID, value, now, now,
		)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 1 {
			delta = value
			outcome = CastCreated
		} else {
			// An entry exists. Flip it only if the polarity differs; the
			// removed old contribution plus the new one is 2*value.
			res = tx.Exec(
				`UPDATE fames SET value = ?, updated_at = ?
				 WHERE user_id = ? AND post_id = ? AND value <> ?`,
				value, now, userID, postID, value,
			)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				delta = 2 * value
				outcome = CastFlipped
			}
		}

		if delta != 0 {
			if err := tx.Model(&models.Post{}).
				Where("id = ?", postID).
				UpdateColumn("fame_points", gorm.Expr("fame_points + ?", delta)).Error; err != nil {
				return err
			}
		}

		return tx.Raw(`SELECT fame_points FROM posts WHERE id = ?`, postID).Scan(&tally).Error
	})
	if err != nil {
		return 0, CastNoop, err
	}

	return tally, outcome, nil
}

// ValueFor returns the user's current vote on the post, nil when absent.
func (r *fameRepository) ValueFor(ctx context.Context, userID, postID uint) (*int, error) {
	var fame models.Fame
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&fame).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fame.Value, nil
}

// RemoveForPost deletes all ledger entries for a post.
func (r *fameRepository) RemoveForPost(ctx context.Context, postID uint) error {
	return removeVotesForPost(r.db.WithContext(ctx), postID)
}

// removeVotesForPost is shared with the post repository so post deletion can
// cascade inside its own transaction.
func removeVotesForPost(tx *gorm.DB, postID uint) error {
	return tx.Where("post_id = ?", postID).Delete(&models.Fame{}).Error
}

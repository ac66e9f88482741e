// Package service contains the application's business logic layer.
package service

import (
	"context"
	"errors"

	"fluss/internal/cache"
	"fluss/internal/featureflags"
	"fluss/internal/middleware"
	"fluss/internal/models"
	"fluss/internal/notifications"
	"fluss/internal/repository"

	"gorm.io/gorm"
)

// FameService coordinates vote casting: the repository owns the ledger
// semantics, the service owns error mapping, flag gating, cache
// invalidation and event fan-out.
type FameService struct {
	fameRepo repository.FameRepository
	flags    *featureflags.Manager
	notifier *notifications.Notifier
}

type CastFameInput struct {
	UserID uint
	PostID uint
	Value  int
}

// CastFameResult reports the vote as recorded and the post's resulting
// tally. Changed is false for an idempotent repeat of the same vote.
type CastFameResult struct {
	PostID     uint `json:"post_id"`
	Value      int  `json:"value"`
	FamePoints int  `json:"fame_points"`
	Changed    bool `json:"changed"`
}

func NewFameService(
	fameRepo repository.FameRepository,
	flags *featureflags.Manager,
	notifier *notifications.Notifier,
) *FameService {
	return &FameService{
		fameRepo: fameRepo,
		flags:    flags,
		notifier: notifier,
	}
}

// CastFame records in.UserID's vote on in.PostID. Any value other than -1
// counts as an upvote. Downvotes additionally require the downfame flag,
// which defaults to enabled when unset.
func (s *FameService) CastFame(ctx context.Context, in CastFameInput) (*CastFameResult, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required to cast fame")
	}

	value := models.NormalizeFameValue(in.Value)
	if value == models.FameDown && !s.flags.EnabledOrDefault(featureflags.FlagDownfame, in.UserID, true) {
		return nil, models.NewValidationError("value", "Downvoting is not available for your account")
	}

	tally, outcome, err := s.fameRepo.Cast(ctx, in.UserID, in.PostID, value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewOperationFailedError("cast fame", err)
	}

	middleware.FameCasts.WithLabelValues(string(outcome)).Inc()

	if outcome != repository.CastNoop {
		cache.InvalidatePost(ctx, in.PostID)
		cache.InvalidateFeed(ctx)
		_ = s.notifier.PublishBroadcast(ctx, notifications.EventFameUpdated, map[string]interface{}{
			"post_id":     in.PostID,
			"fame_points": tally,
		})
	}

	return &CastFameResult{
		PostID:     in.PostID,
		Value:      value,
		FamePoints: tally,
		Changed:    outcome != repository.CastNoop,
	}, nil
}

package repository

import (
	"context"
	"time"

	"fluss/internal/cache"
	"fluss/internal/models"

	"gorm.io/gorm"
)

// MaxFeedLimit caps the page size a client may request.
const MaxFeedLimit = 50

// feedOverfetch is how many extra rows the feed reads beyond the page to
// detect whether more pages exist.
const feedOverfetch = 2

// PostRepository defines the interface for post data operations.
// All reads annotate rows with the viewer's own fame value when a viewer is
// present; the feed is strictly read-only over posts and ledger entries.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	GetByOwnerID(ctx context.Context, ownerID uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	Feed(ctx context.Context, limit int, cursor *time.Time, viewerID uint) ([]*models.Post, bool, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidateFeed(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post

	if viewerID == 0 {
		key := cache.PostKey(id)
		err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
			return r.applyViewerFame(r.db.WithContext(ctx), 0).
				Preload("Owner").
				First(&post, id).Error
		})
		if err != nil {
			return nil, err
		}
		return &post, nil
	}

	err := r.applyViewerFame(r.db.WithContext(ctx), viewerID).
		Preload("Owner").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByOwnerID(ctx context.Context, ownerID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyViewerFame(r.db.WithContext(ctx), viewerID).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// Feed returns up to clamped(limit) posts strictly older than cursor (when
// given), newest first, plus a has-more flag. The query overfetches to spot
// further pages without a count. Ordering ties on created_at break on id so a
// fixed cursor always yields the same page.
func (r *postRepository) Feed(ctx context.Context, limit int, cursor *time.Time, viewerID uint) ([]*models.Post, bool, error) {
	clamped := limit
	if clamped > MaxFeedLimit {
		clamped = MaxFeedLimit
	}
	if clamped < 1 {
		clamped = 1
	}

	q := r.applyViewerFame(r.db.WithContext(ctx), viewerID).
		Preload("Owner").
		Order("created_at DESC, id DESC").
		Limit(clamped + feedOverfetch)

	if cursor != nil {
		q = q.Where("created_at < ?", *cursor)
	}

	var posts []*models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, false, err
	}

	hasMore := len(posts) > clamped
	if hasMore {
		posts = posts[:clamped]
	}

	return posts, hasMore, nil
}

// applyViewerFame adds the viewer's own vote as a subquery column so the feed
// needs no second round trip per row.
func (r *postRepository) applyViewerFame(db *gorm.DB, viewerID uint) *gorm.DB {
	if viewerID != 0 {
		return db.Select(
			"posts.*, (SELECT value FROM fames WHERE fames.post_id = posts.id AND fames.user_id = ?) AS viewer_fame",
			viewerID,
		)
	}
	return db.Select("posts.*, NULL AS viewer_fame")
}

// Update writes only the editable columns. FamePoints stays untouched: the
// fame repository is its only writer after creation.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(post).
		Select("title", "text").
		Updates(models.Post{Title: post.Title, Text: post.Text}).Error
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidateFeed(ctx)
	return nil
}

// Delete removes the post and its ledger entries in one transaction, so an
// orphaned fame entry is never observable.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := removeVotesForPost(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateFeed(ctx)
	return nil
}

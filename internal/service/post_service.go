package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"fluss/internal/cache"
	"fluss/internal/middleware"
	"fluss/internal/models"
	"fluss/internal/notifications"
	"fluss/internal/repository"

	"gorm.io/gorm"
)

type PostService struct {
	postRepo repository.PostRepository
	notifier *notifications.Notifier
}

type CreatePostInput struct {
	OwnerID uint
	Title   string
	Text    string
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Title  string
	Text   string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

type FeedInput struct {
	Limit    int
	Cursor   *time.Time
	ViewerID uint
}

// FeedItem is a post row as served in the feed, with the body preview the
// clients render in list views.
type FeedItem struct {
	*models.Post
	TextSnippet string `json:"text_snippet"`
}

// FeedPage is one page of the reverse-chronological feed. NextCursor is the
// last row's created_at in unix nanoseconds; clients echo it back verbatim
// to fetch the page of strictly older posts. Nanoseconds carry the full
// stored precision, so the exclusive bound never lands between two posts
// that share a coarser timestamp.
type FeedPage struct {
	Posts      []FeedItem `json:"posts"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func NewPostService(postRepo repository.PostRepository, notifier *notifications.Notifier) *PostService {
	return &PostService{postRepo: postRepo, notifier: notifier}
}

const (
	maxTitleLen = 300
	maxTextLen  = 50000
)

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.OwnerID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required to create posts")
	}
	if in.Title == "" {
		return nil, models.NewValidationError("title", "Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("title", "Title too long (max 300 characters)")
	}
	if in.Text == "" {
		return nil, models.NewValidationError("text", "Text is required")
	}
	if len(in.Text) > maxTextLen {
		return nil, models.NewValidationError("text", "Text too long (max 50000 characters)")
	}

	post := &models.Post{
		Title:   in.Title,
		Text:    in.Text,
		OwnerID: in.OwnerID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewOperationFailedError("create post", err)
	}

	_ = s.notifier.PublishBroadcast(ctx, notifications.EventPostCreated, map[string]interface{}{
		"post_id":  post.ID,
		"owner_id": post.OwnerID,
	})

	return s.GetPost(ctx, post.ID, in.OwnerID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return post, nil
}

// Feed serves one page of the feed. The anonymous first page is the hot path
// and goes through the cache; any cursor or authenticated viewer bypasses it
// because those pages are viewer-specific or unbounded in variety.
func (s *PostService) Feed(ctx context.Context, in FeedInput) (*FeedPage, error) {
	limit := in.Limit
	if limit > repository.MaxFeedLimit {
		limit = repository.MaxFeedLimit
	}
	if limit < 1 {
		limit = 1
	}

	viewer := "anonymous"
	if in.ViewerID != 0 {
		viewer = "authenticated"
	}
	middleware.FeedPages.WithLabelValues(viewer).Inc()

	if in.ViewerID == 0 && in.Cursor == nil {
		var page FeedPage
		err := cache.Aside(ctx, cache.FeedFirstPageKey(limit), &page, cache.FeedTTL, func() error {
			built, fetchErr := s.fetchFeedPage(ctx, limit, nil, 0)
			if fetchErr != nil {
				return fetchErr
			}
			page = *built
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &page, nil
	}

	return s.fetchFeedPage(ctx, limit, in.Cursor, in.ViewerID)
}

func (s *PostService) fetchFeedPage(ctx context.Context, limit int, cursor *time.Time, viewerID uint) (*FeedPage, error) {
	posts, hasMore, err := s.postRepo.Feed(ctx, limit, cursor, viewerID)
	if err != nil {
		return nil, err
	}

	page := &FeedPage{
		Posts:   make([]FeedItem, 0, len(posts)),
		HasMore: hasMore,
	}
	for _, p := range posts {
		p.Owner = p.Owner.PublicView(viewerID)
		page.Posts = append(page.Posts, FeedItem{Post: p, TextSnippet: p.TextSnippet()})
	}
	if len(posts) > 0 {
		last := posts[len(posts)-1]
		page.NextCursor = strconv.FormatInt(last.CreatedAt.UnixNano(), 10)
	}
	return page, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, ownerID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	if limit > repository.MaxFeedLimit {
		limit = repository.MaxFeedLimit
	}
	if limit < 1 {
		limit = 1
	}
	posts, err := s.postRepo.GetByOwnerID(ctx, ownerID, limit, offset, viewerID)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Owner = p.Owner.PublicView(viewerID)
	}
	return posts, nil
}

// UpdatePost edits title/text. Only the owner may edit; a post that exists
// but belongs to someone else is a permission failure, not a missing post.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.GetPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if post.OwnerID != in.UserID {
		return nil, models.NewPermissionError("You can only update your own posts")
	}

	if in.Title != "" {
		if len(in.Title) > maxTitleLen {
			return nil, models.NewValidationError("title", "Title too long (max 300 characters)")
		}
		post.Title = in.Title
	}
	if in.Text != "" {
		if len(in.Text) > maxTextLen {
			return nil, models.NewValidationError("text", "Text too long (max 50000 characters)")
		}
		post.Text = in.Text
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewOperationFailedError("update post", err)
	}
	return post, nil
}

// DeletePost removes the post and its fame entries. Only the owner may
// delete.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.GetPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	if post.OwnerID != in.UserID {
		return models.NewPermissionError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return models.NewOperationFailedError("delete post", err)
	}

	_ = s.notifier.PublishBroadcast(ctx, notifications.EventPostDeleted, map[string]interface{}{
		"post_id": in.PostID,
	})
	return nil
}

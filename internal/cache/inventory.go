package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	postKeyPrefix = "post:%d"
	userKeyPrefix = "user:%d"
	feedFirstKey  = "feed:first:%d"
)

// TTLs are short; the feed is write-heavy and tallies move often.
const (
	PostTTL = 5 * time.Minute
	UserTTL = 5 * time.Minute
	FeedTTL = 30 * time.Second
)

func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// FeedFirstPageKey caches only the anonymous first page, keyed by limit.
func FeedFirstPageKey(limit int) string {
	return fmt.Sprintf(feedFirstKey, limit)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateFeed drops all cached anonymous first pages.
func InvalidateFeed(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "feed:first:*", 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resetTokenPrefix = "forgot_password:"
	revokedJTIPrefix = "revoked_jti:"
	ResetTokenTTL    = 3 * 24 * time.Hour
)

// ErrCacheUnavailable is returned when a token operation needs Redis and no
// client is configured. Token state cannot fail open.
var ErrCacheUnavailable = errors.New("cache: redis client not configured")

// SaveResetToken stores a single-use password reset token for the user.
func SaveResetToken(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	if client == nil {
		return ErrCacheUnavailable
	}
	return client.Set(ctx, resetTokenPrefix+token, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

// ConsumeResetToken atomically fetches and deletes the reset token.
// Returns (0, nil) when the token is unknown or expired.
func ConsumeResetToken(ctx context.Context, token string) (uint, error) {
	if client == nil {
		return 0, ErrCacheUnavailable
	}
	s, err := client.GetDel(ctx, resetTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// RevokeJTI marks a token ID as revoked until its natural expiry.
func RevokeJTI(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return ErrCacheUnavailable
	}
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, revokedJTIPrefix+jti, "1", ttl).Err()
}

// IsJTIRevoked reports whether the token ID has been revoked. Fails closed
// on Redis errors: a token we cannot check is treated as revoked.
func IsJTIRevoked(ctx context.Context, jti string) bool {
	if client == nil {
		return false
	}
	n, err := client.Exists(ctx, revokedJTIPrefix+jti).Result()
	if err != nil {
		return true
	}
	return n > 0
}

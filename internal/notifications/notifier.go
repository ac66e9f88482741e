// Package notifications publishes domain events to Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Event names published on the broadcast channel.
const (
	EventPostCreated = "post:created"
	EventFameUpdated = "fame:updated"
	EventPostDeleted = "post:deleted"
)

// BroadcastChannel is the Redis channel all feed consumers subscribe to.
const BroadcastChannel = "fluss:broadcast"

// Notifier provides helpers to publish events into Redis channels.
// All methods are no-ops when Redis is unavailable.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishBroadcast sends an event with a payload to the broadcast channel.
func (n *Notifier) PublishBroadcast(ctx context.Context, event string, payload map[string]interface{}) error {
	if n == nil || n.rdb == nil {
		return nil
	}

	msg, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		return err
	}

	return n.rdb.Publish(ctx, BroadcastChannel, string(msg)).Err()
}

// PublishUser sends an event with a payload to a single user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event string, payload map[string]interface{}) error {
	if n == nil || n.rdb == nil {
		return nil
	}

	msg, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		return err
	}

	return n.rdb.Publish(ctx, UserChannel(userID), string(msg)).Err()
}

// UserChannel returns the Redis channel name for a specific user.
func UserChannel(userID uint) string {
	return "fluss:user:" + strconv.FormatUint(uint64(userID), 10)
}

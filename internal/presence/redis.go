package presence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:"

// RedisTracker stores one key per online user with an expiry, so every
// replica of the server sees the same set.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Tracker = (*RedisTracker)(nil)

// NewRedisTracker creates a tracker on an existing client.
func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	if client == nil {
		panic("presence.NewRedisTracker: client is nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTracker{client: client, ttl: ttl}
}

// Connect parses a redis:// URL, pings the server and returns a tracker.
func Connect(ctx context.Context, url string, ttl time.Duration) (*RedisTracker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisTracker(client, ttl), nil
}

// Touch implements Tracker.Touch
func (t *RedisTracker) Touch(ctx context.Context, userID uuid.UUID) error {
	return t.client.Set(ctx, keyPrefix+userID.String(), time.Now().UTC().Unix(), t.ttl).Err()
}

// Online implements Tracker.Online
func (t *RedisTracker) Online(ctx context.Context) ([]uuid.UUID, error) {
	var (
		cursor uint64
		online []uuid.UUID
	)
	for {
		keys, next, err := t.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan presence keys: %w", err)
		}
		for _, key := range keys {
			id, err := uuid.Parse(strings.TrimPrefix(key, keyPrefix))
			if err != nil {
				continue
			}
			online = append(online, id)
		}
		if next == 0 {
			return online, nil
		}
		cursor = next
	}
}

// Close releases the underlying client.
func (t *RedisTracker) Close() error {
	return t.client.Close()
}

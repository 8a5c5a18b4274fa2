package presence

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisTracker_TouchAndOnline(t *testing.T) {
	mr, client := newMiniredis(t)
	tracker := NewRedisTracker(client, time.Minute)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, tracker.Touch(ctx, alice))
	require.NoError(t, tracker.Touch(ctx, bob))
	require.NoError(t, tracker.Touch(ctx, alice))

	// unrelated keys are ignored
	require.NoError(t, mr.Set("tasks:other", "x"))
	require.NoError(t, mr.Set(keyPrefix+"not-a-uuid", "x"))

	online, err := tracker.Online(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, online)

	if ttl := mr.TTL(keyPrefix + alice.String()); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
}

func TestRedisTracker_Expiry(t *testing.T) {
	mr, client := newMiniredis(t)
	tracker := NewRedisTracker(client, time.Minute)
	ctx := context.Background()

	alice := uuid.New()
	require.NoError(t, tracker.Touch(ctx, alice))

	mr.FastForward(2 * time.Minute)

	online, err := tracker.Online(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)
}

func TestRedisTracker_ServerDown(t *testing.T) {
	mr, client := newMiniredis(t)
	tracker := NewRedisTracker(client, time.Minute)
	mr.Close()

	assert.Error(t, tracker.Touch(context.Background(), uuid.New()))
	_, err := tracker.Online(context.Background())
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr, _ := newMiniredis(t)

	tracker, err := Connect(context.Background(), "redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracker.Close() })
	assert.Equal(t, DefaultTTL, tracker.ttl)

	_, err = Connect(context.Background(), "://bad", time.Minute)
	assert.Error(t, err)
}

func TestMemoryTracker(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewMemoryTracker(time.Minute)
	tracker.now = func() time.Time { return now }
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, tracker.Touch(ctx, alice))

	now = now.Add(45 * time.Second)
	require.NoError(t, tracker.Touch(ctx, bob))

	online, err := tracker.Online(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, online)

	now = now.Add(30 * time.Second)
	online, err = tracker.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob}, online)
}

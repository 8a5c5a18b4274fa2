package presence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryTracker keeps presence in process memory. It is only accurate for
// a single server instance.
type MemoryTracker struct {
	mu       sync.Mutex
	lastSeen map[uuid.UUID]time.Time
	ttl      time.Duration
	now      func() time.Time
}

var _ Tracker = (*MemoryTracker)(nil)

// NewMemoryTracker creates an in-process tracker.
func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryTracker{
		lastSeen: make(map[uuid.UUID]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Touch implements Tracker.Touch
func (t *MemoryTracker) Touch(_ context.Context, userID uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSeen[userID] = t.now()
	return nil
}

// Online implements Tracker.Online. Expired entries are dropped as a side effect.
func (t *MemoryTracker) Online(_ context.Context) ([]uuid.UUID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.ttl)
	online := make([]uuid.UUID, 0, len(t.lastSeen))
	for id, seen := range t.lastSeen {
		if seen.Before(cutoff) {
			delete(t.lastSeen, id)
			continue
		}
		online = append(online, id)
	}
	return online, nil
}

// Package presence records which principals have made an authenticated
// request recently. Entries expire after a TTL; there is no explicit logout.
package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tracker records and lists recently active users.
type Tracker interface {
	// Touch marks userID as online for the tracker's TTL.
	Touch(ctx context.Context, userID uuid.UUID) error

	// Online returns the users touched within the TTL, in no particular order.
	Online(ctx context.Context) ([]uuid.UUID, error)
}

// DefaultTTL is used when a tracker is built with a non-positive TTL.
const DefaultTTL = 5 * time.Minute

package quota

import (
	"context"
	"time"
)

// Store is the backing counter for daily send quotas.
//
// Incr must be atomic at the store layer and return the post-increment
// count in the same round trip: check-then-act on the caller side would
// race between concurrent process instances. No client-side caching of
// the count is permitted.
type Store interface {
	Incr(ctx context.Context, identity string, day time.Time) (int64, error)
}

// dayKey reduces a timestamp to UTC day granularity. A new day produces
// a new key, which is how the counter resets without in-place writes.
func dayKey(day time.Time) string {
	return day.UTC().Format("2006-01-02")
}

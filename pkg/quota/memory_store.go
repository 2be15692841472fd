package quota

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Suitable for
// tests and single-instance development only: the counter is not shared
// across processes, which the production limiter requires.
type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int64)}
}

func (ms *MemoryStore) Incr(ctx context.Context, identity string, day time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	key := identity + ":" + dayKey(day)
	ms.counts[key]++
	return ms.counts[key], nil
}

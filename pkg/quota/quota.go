package quota

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Limiter enforces a per-identity daily send quota through a shared
// atomic counter. The limiter itself is stateless; correctness under
// concurrent invocations from multiple process instances rests entirely
// on the store's atomic increment.
type Limiter struct {
	store Store
	limit int64
	now   func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the wall clock used to derive the day key.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a Limiter with the given default daily limit.
func New(store Store, dailyLimit int64, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if dailyLimit <= 0 {
		return nil, fmt.Errorf("%w: daily limit must be positive, got %d", ErrInvalidLimit, dailyLimit)
	}

	l := &Limiter{
		store: store,
		limit: dailyLimit,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Result is the outcome of one quota check.
type Result struct {
	Identity string
	Count    int64 // post-increment count for today
	Limit    int64
}

// Blocked reports whether the send must not proceed. The counter has
// already been incremented at this point: the quota records attempts,
// not successful sends, so retry storms cannot reset the window.
func (r *Result) Blocked() bool {
	return r.Count > r.Limit
}

// Allow records one send attempt for identity against the default daily
// limit and reports whether it may proceed.
func (l *Limiter) Allow(ctx context.Context, identity string) (*Result, error) {
	return l.AllowLimit(ctx, identity, l.limit)
}

// AllowLimit is Allow with a per-call limit override.
func (l *Limiter) AllowLimit(ctx context.Context, identity string, limit int64) (*Result, error) {
	if identity == "" {
		return nil, ErrEmptyIdentity
	}
	if limit <= 0 {
		limit = l.limit
	}

	count, err := l.store.Incr(ctx, identity, l.now())
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return &Result{Identity: identity, Count: count, Limit: limit}, nil
}

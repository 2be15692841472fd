package mailer

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the pause between consecutive sends. The target API
// enforces its own per-second throughput limit; pacing below it keeps
// the sequential batch from tripping throttling errors.
const DefaultDelay = 100 * time.Millisecond

// Pacer throttles the gap between consecutive sends. Wait blocks until
// the next send may proceed or the context is done.
type Pacer interface {
	Wait(ctx context.Context) error
}

type fixedPacer struct {
	delay time.Duration
}

// FixedDelay returns a Pacer that sleeps a constant duration between
// sends.
func FixedDelay(delay time.Duration) Pacer {
	return &fixedPacer{delay: delay}
}

func (p *fixedPacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopPacer struct{}

// NoDelay returns a Pacer that never waits. Tests use it to keep bulk
// sends fast.
func NoDelay() Pacer {
	return nopPacer{}
}

func (nopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}

type tokenBucketPacer struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens per second
	last     time.Time
	now      func() time.Time
}

// TokenBucket returns a Pacer allowing short bursts of up to burst
// sends, refilling at rate sends per interval. Wait consumes one token,
// sleeping until one accrues if the bucket is empty.
func TokenBucket(rate int, interval time.Duration, burst int) Pacer {
	if rate <= 0 {
		rate = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucketPacer{
		tokens:   float64(burst),
		capacity: float64(burst),
		rate:     float64(rate) / interval.Seconds(),
		now:      time.Now,
	}
}

func (p *tokenBucketPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := p.now()
	if !p.last.IsZero() {
		p.tokens = min(p.capacity, p.tokens+now.Sub(p.last).Seconds()*p.rate)
	}
	p.last = now

	if p.tokens >= 1 {
		p.tokens--
		p.mu.Unlock()
		return ctx.Err()
	}

	// Consume the token now, letting the balance go negative. The next
	// refill credits the sleep interval, which exactly covers the debt;
	// zeroing the balance instead would hand the next caller a free
	// token accrued during this sleep.
	wait := time.Duration((1 - p.tokens) / p.rate * float64(time.Second))
	p.tokens--
	p.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package mailer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yossi-weinberger/ten10/pkg/mailer"
)

func TestFixedDelay_Waits(t *testing.T) {
	t.Parallel()

	p := mailer.FixedDelay(20 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFixedDelay_CancelledContext(t *testing.T) {
	t.Parallel()

	p := mailer.FixedDelay(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestNoDelay_DoesNotWait(t *testing.T) {
	t.Parallel()

	p := mailer.NoDelay()

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestTokenBucket_BurstThenThrottle(t *testing.T) {
	t.Parallel()

	// Two tokens of burst, refilling one per 30ms.
	p := mailer.TokenBucket(1, 30*time.Millisecond, 2)

	ctx := context.Background()
	start := time.Now()
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))
	assert.Less(t, time.Since(start), 25*time.Millisecond, "burst should pass without waiting")

	require.NoError(t, p.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond, "third send should wait for a refill")
}

func TestTokenBucket_SustainedRate(t *testing.T) {
	t.Parallel()

	// One token of burst, one refill per 30ms. Three Waits consume the
	// initial token plus two refills, so the sequence spans at least two
	// full intervals; a token accrued while sleeping must not give the
	// next caller a free pass.
	p := mailer.TokenBucket(1, 30*time.Millisecond, 1)

	ctx := context.Background()
	start := time.Now()
	for range 3 {
		require.NoError(t, p.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestDispatcher_PacingBetweenSends(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	d := newDispatcher(t, transport, 100, mailer.WithPacer(mailer.FixedDelay(15*time.Millisecond)))

	start := time.Now()
	results, err := d.SendBulk(context.Background(), recipients(3))
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Two gaps between three sends.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

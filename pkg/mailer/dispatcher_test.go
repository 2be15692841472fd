package mailer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yossi-weinberger/ten10/pkg/email"
	"github.com/yossi-weinberger/ten10/pkg/mailer"
	"github.com/yossi-weinberger/ten10/pkg/quota"
)

const senderIdentity = "tithe@ten10.app"

// stubTransport records calls and delegates to fn, defaulting to success.
type stubTransport struct {
	fn    func(msg email.Message) (string, error)
	calls int
}

func (s *stubTransport) Send(ctx context.Context, msg email.Message) (string, error) {
	s.calls++
	if s.fn != nil {
		return s.fn(msg)
	}
	return fmt.Sprintf("msg-%d", s.calls), nil
}

func testRender(r mailer.Recipient) (email.Message, error) {
	return email.Message{
		From:     senderIdentity,
		To:       []string{r.Email},
		Subject:  "Monthly tithe reminder",
		TextBody: "Hello " + r.ID,
	}, nil
}

func newDispatcher(t *testing.T, transport mailer.Transport, dailyLimit int64, opts ...mailer.Option) *mailer.Dispatcher {
	t.Helper()

	limiter, err := quota.New(quota.NewMemoryStore(), dailyLimit)
	require.NoError(t, err)

	opts = append([]mailer.Option{mailer.WithPacer(mailer.NoDelay())}, opts...)
	d, err := mailer.New(transport, limiter, senderIdentity, testRender, opts...)
	require.NoError(t, err)
	return d
}

func recipients(n int) []mailer.Recipient {
	rs := make([]mailer.Recipient, n)
	for i := range rs {
		rs[i] = mailer.Recipient{
			ID:    fmt.Sprintf("u%d", i+1),
			Email: fmt.Sprintf("user%d@example.com", i+1),
		}
	}
	return rs
}

func TestDispatcher_AllSent(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	d := newDispatcher(t, transport, 100)

	results, err := d.SendBulk(context.Background(), recipients(2))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "u1", results[0].RecipientID)
	assert.Equal(t, mailer.StatusSent, results[0].Status)
	assert.Equal(t, "msg-1", results[0].MessageID)
	assert.Equal(t, "u2", results[1].RecipientID)
	assert.Equal(t, mailer.StatusSent, results[1].Status)

	summary := mailer.Summarize(results)
	assert.Equal(t, mailer.Summary{Sent: 2, Failed: 0, Blocked: 0}, summary)
}

func TestDispatcher_OneFailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	transportErr := errors.New("transport exploded")
	transport := &stubTransport{}
	transport.fn = func(msg email.Message) (string, error) {
		if transport.calls == 3 {
			return "", transportErr
		}
		return fmt.Sprintf("msg-%d", transport.calls), nil
	}

	d := newDispatcher(t, transport, 100)

	results, err := d.SendBulk(context.Background(), recipients(5))
	require.NoError(t, err)
	require.Len(t, results, 5)

	// Results come back in input order, with only #3 failed.
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("u%d", i+1), res.RecipientID)
		if i == 2 {
			assert.Equal(t, mailer.StatusFailed, res.Status)
			assert.ErrorIs(t, res.Err, transportErr)
		} else {
			assert.Equal(t, mailer.StatusSent, res.Status)
		}
	}

	summary := mailer.Summarize(results)
	assert.Equal(t, mailer.Summary{Sent: 4, Failed: 1, Blocked: 0}, summary)
}

func TestDispatcher_BlockedByQuota(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	d := newDispatcher(t, transport, 1)

	results, err := d.SendBulk(context.Background(), recipients(3))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, mailer.StatusSent, results[0].Status)
	for _, res := range results[1:] {
		assert.Equal(t, mailer.StatusFailed, res.Status)
		assert.ErrorIs(t, res.Err, quota.ErrDailyQuotaExceeded)
		assert.True(t, res.Blocked())
	}

	// Blocked attempts must never reach the transport.
	assert.Equal(t, 1, transport.calls)

	summary := mailer.Summarize(results)
	assert.Equal(t, mailer.Summary{Sent: 1, Failed: 2, Blocked: 2}, summary)
}

func TestDispatcher_LimitOverride(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	d := newDispatcher(t, transport, 100)

	results, err := d.SendBulkLimit(context.Background(), recipients(3), 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	summary := mailer.Summarize(results)
	assert.Equal(t, mailer.Summary{Sent: 2, Failed: 1, Blocked: 1}, summary)
}

type failingStore struct{ err error }

func (fs *failingStore) Incr(ctx context.Context, identity string, day time.Time) (int64, error) {
	return 0, fs.err
}

func TestDispatcher_StoreUnreachableAbortsBatch(t *testing.T) {
	t.Parallel()

	limiter, err := quota.New(&failingStore{err: errors.New("connection refused")}, 100)
	require.NoError(t, err)

	transport := &stubTransport{}
	d, err := mailer.New(transport, limiter, senderIdentity, testRender, mailer.WithPacer(mailer.NoDelay()))
	require.NoError(t, err)

	results, err := d.SendBulk(context.Background(), recipients(3))
	assert.ErrorIs(t, err, quota.ErrStoreUnavailable)
	assert.Empty(t, results)
	assert.Zero(t, transport.calls)
}

func TestDispatcher_RenderFailureIsLocal(t *testing.T) {
	t.Parallel()

	limiter, err := quota.New(quota.NewMemoryStore(), 100)
	require.NoError(t, err)

	renderErr := errors.New("missing template variable")
	render := func(r mailer.Recipient) (email.Message, error) {
		if r.ID == "u2" {
			return email.Message{}, renderErr
		}
		return testRender(r)
	}

	transport := &stubTransport{}
	d, err := mailer.New(transport, limiter, senderIdentity, render, mailer.WithPacer(mailer.NoDelay()))
	require.NoError(t, err)

	results, err := d.SendBulk(context.Background(), recipients(3))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, mailer.StatusSent, results[0].Status)
	assert.Equal(t, mailer.StatusFailed, results[1].Status)
	assert.ErrorIs(t, results[1].Err, mailer.ErrRenderFailed)
	assert.ErrorIs(t, results[1].Err, renderErr)
	assert.Equal(t, mailer.StatusSent, results[2].Status)
}

func TestDispatcher_CancellationReturnsPartialResults(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	transport := &stubTransport{}
	transport.fn = func(msg email.Message) (string, error) {
		if transport.calls == 2 {
			cancel()
		}
		return fmt.Sprintf("msg-%d", transport.calls), nil
	}

	d := newDispatcher(t, transport, 100)

	results, err := d.SendBulk(ctx, recipients(5))
	assert.ErrorIs(t, err, context.Canceled)

	// The two results produced before cancellation are kept.
	require.Len(t, results, 2)
	assert.Equal(t, mailer.StatusSent, results[0].Status)
	assert.Equal(t, mailer.StatusSent, results[1].Status)
}

func TestDispatcher_EmptyListIsNoop(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	d := newDispatcher(t, transport, 100)

	results, err := d.SendBulk(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, transport.calls)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	limiter, err := quota.New(quota.NewMemoryStore(), 10)
	require.NoError(t, err)
	transport := &stubTransport{}

	_, err = mailer.New(nil, limiter, senderIdentity, testRender)
	assert.ErrorIs(t, err, mailer.ErrNilTransport)

	_, err = mailer.New(transport, nil, senderIdentity, testRender)
	assert.ErrorIs(t, err, mailer.ErrNilLimiter)

	_, err = mailer.New(transport, limiter, "", testRender)
	assert.ErrorIs(t, err, mailer.ErrEmptyIdentity)

	_, err = mailer.New(transport, limiter, senderIdentity, nil)
	assert.ErrorIs(t, err, mailer.ErrNilRender)
}

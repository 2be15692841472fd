package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yossi-weinberger/ten10/pkg/email"
	"github.com/yossi-weinberger/ten10/pkg/quota"
)

// Transport delivers a single built message and returns the provider
// message ID.
type Transport interface {
	Send(ctx context.Context, msg email.Message) (string, error)
}

// Recipient is one entry of a bulk send together with its
// personalization data.
type Recipient struct {
	ID    string            `json:"id"`
	Email string            `json:"email"`
	Data  map[string]string `json:"data,omitempty"`
}

// RenderFunc produces the personalized message for one recipient.
type RenderFunc func(r Recipient) (email.Message, error)

// Dispatcher drives the full pipeline - quota check, message build,
// sign, send - for a list of recipients, strictly sequentially. One
// recipient's failure never aborts the batch; only shared-setup
// failures (store unreachable, cancellation) do.
type Dispatcher struct {
	transport Transport
	limiter   *quota.Limiter
	render    RenderFunc
	identity  string
	pacer     Pacer
	log       *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPacer swaps the pacing policy between sends.
func WithPacer(p Pacer) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.pacer = p
		}
	}
}

// WithLogger attaches a structured logger for per-send diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// New creates a Dispatcher. The identity is the sender address the
// daily quota is tracked against.
func New(transport Transport, limiter *quota.Limiter, identity string, render RenderFunc, opts ...Option) (*Dispatcher, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if limiter == nil {
		return nil, ErrNilLimiter
	}
	if identity == "" {
		return nil, ErrEmptyIdentity
	}
	if render == nil {
		return nil, ErrNilRender
	}

	d := &Dispatcher{
		transport: transport,
		limiter:   limiter,
		render:    render,
		identity:  identity,
		pacer:     FixedDelay(DefaultDelay),
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// SendBulk processes recipients in input order with the default daily
// limit. See SendBulkLimit.
func (d *Dispatcher) SendBulk(ctx context.Context, recipients []Recipient) ([]Result, error) {
	return d.SendBulkLimit(ctx, recipients, 0)
}

// SendBulkLimit processes recipients strictly sequentially, pacing
// between sends, and returns one Result per recipient in input order.
// A non-positive limit uses the limiter's default.
//
// The returned error is non-nil only for batch-level failures: context
// cancellation or an unreachable quota store. In both cases the results
// produced so far are returned alongside the error, never discarded.
func (d *Dispatcher) SendBulkLimit(ctx context.Context, recipients []Recipient, limit int64) ([]Result, error) {
	batchID := uuid.NewString()
	log := d.log.With(slog.String("batch_id", batchID), slog.Int("recipients", len(recipients)))
	log.InfoContext(ctx, "bulk send started")

	results := make([]Result, 0, len(recipients))
	for i, r := range recipients {
		if i > 0 {
			if err := d.pacer.Wait(ctx); err != nil {
				log.WarnContext(ctx, "bulk send cancelled while pacing", slog.Int("completed", len(results)))
				return results, err
			}
		}
		if err := ctx.Err(); err != nil {
			log.WarnContext(ctx, "bulk send cancelled", slog.Int("completed", len(results)))
			return results, err
		}

		res, err := d.sendOne(ctx, r, limit)
		if err != nil {
			// Shared setup broke; the remaining recipients cannot be
			// processed either.
			log.ErrorContext(ctx, "bulk send aborted", slog.Any("error", err), slog.Int("completed", len(results)))
			return results, err
		}

		if res.Status == StatusSent {
			log.InfoContext(ctx, "email sent",
				slog.String("recipient_id", r.ID),
				slog.String("message_id", res.MessageID))
		} else {
			log.WarnContext(ctx, "email failed",
				slog.String("recipient_id", r.ID),
				slog.String("reason", res.Reason))
		}
		results = append(results, res)
	}

	summary := Summarize(results)
	log.InfoContext(ctx, "bulk send finished",
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed),
		slog.Int("blocked", summary.Blocked))
	return results, nil
}

// sendOne runs the pipeline for a single recipient. It returns an error
// only for batch-aborting conditions; per-recipient problems are folded
// into the Result.
func (d *Dispatcher) sendOne(ctx context.Context, r Recipient, limit int64) (Result, error) {
	qr, err := d.limiter.AllowLimit(ctx, d.identity, limit)
	if err != nil {
		return Result{}, fmt.Errorf("quota check for %s: %w", d.identity, err)
	}
	if qr.Blocked() {
		return failed(r, fmt.Errorf("%w: %d of %d used", quota.ErrDailyQuotaExceeded, qr.Count, qr.Limit)), nil
	}

	msg, err := d.render(r)
	if err != nil {
		return failed(r, errors.Join(ErrRenderFailed, err)), nil
	}

	messageID, err := d.transport.Send(ctx, msg)
	if err != nil {
		return failed(r, err), nil
	}

	return Result{
		RecipientID: r.ID,
		Email:       r.Email,
		Status:      StatusSent,
		MessageID:   messageID,
	}, nil
}

func failed(r Recipient, err error) Result {
	return Result{
		RecipientID: r.ID,
		Email:       r.Email,
		Status:      StatusFailed,
		Err:         err,
		Reason:      err.Error(),
	}
}

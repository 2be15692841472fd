package mailer

import "errors"

var (
	ErrNilTransport  = errors.New("mailer: nil transport")
	ErrNilLimiter    = errors.New("mailer: nil limiter")
	ErrNilRender     = errors.New("mailer: nil render func")
	ErrEmptyIdentity = errors.New("mailer: empty sender identity")

	// ErrRenderFailed marks a personalization failure. Fatal for that
	// one message only; the batch continues.
	ErrRenderFailed = errors.New("mailer: failed to render message")
)

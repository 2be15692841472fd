package email

import (
	"fmt"
	"regexp"
	"strings"
)

// emailRegex is intentionally permissive: it catches structural mistakes
// (missing @, missing domain) without trying to re-validate addresses the
// application layer already validated.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Message is a logical email, immutable once built. It is constructed
// fresh per send and never shared across concurrent sends.
type Message struct {
	From     string            // Sender address, required
	ReplyTo  string            // Optional reply-to address
	To       []string          // Recipient addresses, at least one required
	CC       []string          // Optional carbon-copy addresses
	Subject  string            // Required; MIME-encoded on the wire when non-ASCII
	TextBody string            // Plain-text body
	HTMLBody string            // HTML body
	Tags     map[string]string // Optional provider tags for analytics

	// UnsubscribeURL, when set, adds List-Unsubscribe headers in raw MIME
	// mode. Header-level features like this are the reason raw mode exists.
	UnsubscribeURL string
}

// Validate checks the message before any serialization or network call.
// A message with both bodies empty is rejected up front: an email with no
// content must never reach the wire.
func (m Message) Validate() error {
	if strings.TrimSpace(m.From) == "" {
		return fmt.Errorf("%w: From is required", ErrInvalidMessage)
	}
	if !emailRegex.MatchString(m.From) {
		return fmt.Errorf("%w: From must be a valid email address", ErrInvalidMessage)
	}
	if len(m.To) == 0 {
		return fmt.Errorf("%w: at least one To address is required", ErrInvalidMessage)
	}
	for _, to := range m.To {
		if !emailRegex.MatchString(to) {
			return fmt.Errorf("%w: To address %q is not a valid email address", ErrInvalidMessage, to)
		}
	}
	for _, cc := range m.CC {
		if !emailRegex.MatchString(cc) {
			return fmt.Errorf("%w: CC address %q is not a valid email address", ErrInvalidMessage, cc)
		}
	}
	if m.ReplyTo != "" && !emailRegex.MatchString(m.ReplyTo) {
		return fmt.Errorf("%w: ReplyTo must be a valid email address", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.TextBody) == "" && strings.TrimSpace(m.HTMLBody) == "" {
		return ErrEmptyBody
	}
	return nil
}

// NeedsRaw reports whether the message requires raw MIME mode: CC and
// List-Unsubscribe headers exceed what the structured send API exposes.
func (m Message) NeedsRaw() bool {
	return len(m.CC) > 0 || m.UnsubscribeURL != ""
}

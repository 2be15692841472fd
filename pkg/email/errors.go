package email

import "errors"

var (
	// ErrInvalidMessage indicates a structurally invalid message
	// (missing or malformed addresses, empty subject).
	ErrInvalidMessage = errors.New("email: invalid message")

	// ErrEmptyBody indicates a message with neither a text nor an HTML
	// body. Rejected before any network call.
	ErrEmptyBody = errors.New("email: message has no text or html body")

	// ErrBuildFailed indicates the message could not be serialized.
	ErrBuildFailed = errors.New("email: failed to build message")
)

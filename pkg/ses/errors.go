package ses

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAPIVersion  = errors.New("ses: invalid api version")
	ErrMissingRegion      = errors.New("ses: missing region")
	ErrNoCredentials      = errors.New("ses: could not resolve credentials")
	ErrRequestFailed      = errors.New("ses: request failed")
	ErrUnexpectedResponse = errors.New("ses: unexpected response body")
)

// APIError is a non-2xx response from the email API. The raw body is
// carried for diagnostics and never swallowed.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ses: api returned %d: %s", e.StatusCode, e.Body)
}

package sigv4

import "errors"

var (
	ErrMissingCredentials = errors.New("sigv4: missing access key id or secret access key")
	ErrMissingRegion      = errors.New("sigv4: missing region")
	ErrMissingService     = errors.New("sigv4: missing service name")
	ErrNilRequest         = errors.New("sigv4: nil request")
)

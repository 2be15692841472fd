package unsubtoken

import "errors"

var (
	ErrMissingSecret    = errors.New("unsubtoken: missing signing secret")
	ErrMissingRecipient = errors.New("unsubtoken: missing recipient id or email")
	ErrInvalidScope     = errors.New("unsubtoken: invalid scope")
	ErrInvalidTTL       = errors.New("unsubtoken: ttl must be positive")
	ErrInvalidToken     = errors.New("unsubtoken: invalid token")
	ErrInvalidSignature = errors.New("unsubtoken: invalid signature")
	ErrExpiredToken     = errors.New("unsubtoken: token is expired")
)

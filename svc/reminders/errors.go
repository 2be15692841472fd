package reminders

import "errors"

var (
	ErrNilTokenService = errors.New("reminders: nil unsubscribe token service")
	ErrInvalidTemplate = errors.New("reminders: invalid template")
)

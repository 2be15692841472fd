package pg

import "errors"

var (
	ErrFailedToParseConfig = errors.New("failed to parse postgres config")
	ErrFailedToConnect     = errors.New("failed to open postgres connection")
)

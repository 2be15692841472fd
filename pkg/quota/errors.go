package quota

import "errors"

var (
	// ErrDailyQuotaExceeded marks a send attempt blocked by the daily
	// limit. Recoverable by the caller the next day; never retried.
	ErrDailyQuotaExceeded = errors.New("quota: daily send limit exceeded")

	// ErrStoreUnavailable wraps store errors. The caller must treat this
	// as a shared-setup failure and abort the batch.
	ErrStoreUnavailable = errors.New("quota: store unavailable")

	ErrNilStore      = errors.New("quota: nil store")
	ErrInvalidLimit  = errors.New("quota: invalid daily limit")
	ErrEmptyIdentity = errors.New("quota: empty identity")
)

package mailer

import (
	"errors"

	"github.com/yossi-weinberger/ten10/pkg/quota"
)

// Status is the terminal outcome of one send attempt. A retry produces
// a new Result; existing ones are never mutated.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Result records the outcome of one recipient's send attempt.
type Result struct {
	RecipientID string `json:"recipient_id"`
	Email       string `json:"email"`
	Status      Status `json:"status"`
	MessageID   string `json:"message_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Err         error  `json:"-"`
}

// Blocked reports whether this result failed because the daily quota
// was exhausted rather than because of a transport or build problem.
func (r Result) Blocked() bool {
	return errors.Is(r.Err, quota.ErrDailyQuotaExceeded)
}

// Summary aggregates a batch of results. Blocked is a subset of Failed.
type Summary struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Blocked int `json:"blocked"`
}

// Summarize counts outcomes for caller-side interpretation; the
// dispatcher itself never escalates individual failures.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusSent:
			s.Sent++
		case StatusFailed:
			s.Failed++
			if r.Blocked() {
				s.Blocked++
			}
		}
	}
	return s
}

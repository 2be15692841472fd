// Package reminders is the HTTP-triggered entry point of the reminder
// email pipeline.
//
// POST /dispatch takes a recipient list with personalization data,
// drives the bulk dispatcher and answers 200 with an aggregate summary
// - even when every send failed - distinguishing a no-op run from an
// attempted-but-failed one. GET /unsubscribe verifies the signed token
// from email links.
//
// Each rendered reminder carries a per-recipient unsubscribe link,
// which forces raw MIME mode on the transport (List-Unsubscribe is a
// header-level feature).
package reminders

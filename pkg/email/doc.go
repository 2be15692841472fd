// Package email models a single outbound transactional email and its
// wire serializations.
//
// A Message is built fresh per send and immutable once constructed. It
// serializes three ways, chosen by the transport configuration and the
// features the message needs:
//
//   - Payload: structured JSON body for the v2 send endpoint.
//   - QueryValues: legacy Action=SendEmail query-protocol form.
//   - RawMIME: hand-assembled multipart/alternative stream, used when CC
//     or List-Unsubscribe headers exceed what the structured API exposes.
//
// Validation is shared by all three modes and fails fast: a message with
// both bodies empty never reaches the network. Subjects containing
// non-ASCII bytes are RFC 2047 B-encoded in raw mode and passed as
// declared UTF-8 in structured mode.
package email

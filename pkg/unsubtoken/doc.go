// Package unsubtoken issues the signed, time-limited tokens embedded in
// unsubscribe links of outbound emails.
//
// A token carries the recipient id, email, scope (reminder-only or all
// mail) and expiry, HMAC-signed so the unsubscribe endpoint can verify
// it without any lookup. The format is compact:
// base64url(claims JSON) + "." + base64url(HMAC-SHA256 signature).
package unsubtoken

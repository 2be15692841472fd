// Package sigv4 implements AWS Signature Version 4 request signing.
//
// The pipeline talks to the email API over raw HTTPS rather than through
// an SDK client, so the signature (canonical request, string to sign,
// day-scoped HMAC key chain, Authorization header) is computed here.
// One Signer instance is parameterized by credentials, region and
// service name and reused across all call sites; the derived signing key
// is valid for a single UTC day and cached within it.
//
// Signing is a pure function of the request, the body and the clock.
// Credentials are held in memory only and never logged.
//
// Usage:
//
//	signer, err := sigv4.New(creds, "us-east-1", "ses")
//	if err != nil {
//		return err
//	}
//	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
//	req.Header.Set("Content-Type", "application/json")
//	if err := signer.Sign(req, body); err != nil {
//		return err
//	}
package sigv4

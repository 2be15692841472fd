// Package ses is the HTTP transport of the outbound email pipeline.
//
// A Client serializes a message (structured payload or raw MIME,
// depending on the features the message needs), signs the request with
// the hand-built SigV4 signer and issues exactly one HTTPS call. The
// wire protocol - JSON v2 endpoint or the legacy XML query endpoint -
// is fixed by configuration; responses are parsed with the matching
// parser, never sniffed.
//
// The client has no retry logic. A non-2xx response surfaces as an
// *APIError carrying the status code and the raw body for diagnostics.
//
// Credentials resolve in order: the WithCredentials option, static keys
// from Config, then the AWS SDK default chain. The SDK is used only for
// credential resolution; all signing and transport happens here.
package ses

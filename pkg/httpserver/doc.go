// Package httpserver is a small wrapper around net/http adding graceful
// shutdown, configurable timeouts and slog lifecycle logging.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then drains in-flight requests within the shutdown timeout.
// Errors are wrapped with ErrStart and ErrShutdown for errors.Is checks.
package httpserver

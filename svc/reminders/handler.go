package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yossi-weinberger/ten10/pkg/mailer"
	"github.com/yossi-weinberger/ten10/pkg/unsubtoken"
)

// UnsubscribeFunc records a verified unsubscribe request.
type UnsubscribeFunc func(ctx context.Context, claims unsubtoken.Claims) error

// BatchRequest is the dispatch invocation payload.
type BatchRequest struct {
	Recipients         []mailer.Recipient `json:"recipients"`
	DailyLimitOverride int64              `json:"daily_limit_override,omitempty"`
}

// BatchResponse is the aggregate dispatch outcome. Status distinguishes
// "noop" (nothing to send) from "ok" (attempted, see counters).
type BatchResponse struct {
	Status  string          `json:"status"`
	Sent    int             `json:"sent"`
	Failed  int             `json:"failed"`
	Blocked int             `json:"blocked"`
	Results []mailer.Result `json:"results"`
}

// Router mounts the service endpoints.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/dispatch", s.handleDispatch)
	r.Get("/unsubscribe", s.handleUnsubscribe)
	return r
}

// handleDispatch runs a bulk send. It answers 200 with the aggregate
// summary even when some or all sends failed; only malformed input and
// batch-level failures (cancellation, quota store down) map to error
// statuses.
func (s *Service) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	if len(req.Recipients) == 0 {
		writeJSON(w, http.StatusOK, BatchResponse{Status: "noop", Results: []mailer.Result{}})
		return
	}

	results, err := s.dispatcher.SendBulkLimit(r.Context(), req.Recipients, req.DailyLimitOverride)
	if err != nil {
		s.log.ErrorContext(r.Context(), "dispatch aborted", slog.Any("error", err), slog.Int("completed", len(results)))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   err.Error(),
			"results": results,
		})
		return
	}

	summary := mailer.Summarize(results)
	writeJSON(w, http.StatusOK, BatchResponse{
		Status:  "ok",
		Sent:    summary.Sent,
		Failed:  summary.Failed,
		Blocked: summary.Blocked,
		Results: results,
	})
}

// handleUnsubscribe verifies the signed token from an email link and,
// when a callback is registered, records the unsubscribe.
func (s *Service) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing token"})
		return
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, unsubtoken.ErrExpiredToken) {
			status = http.StatusGone
		}
		writeJSON(w, status, map[string]string{"error": "invalid or expired token"})
		return
	}

	if s.unsubscribe != nil {
		if err := s.unsubscribe(r.Context(), claims); err != nil {
			s.log.ErrorContext(r.Context(), "recording unsubscribe failed",
				slog.String("recipient_id", claims.RecipientID), slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not record unsubscribe"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "unsubscribed",
		"scope":  string(claims.Scope),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

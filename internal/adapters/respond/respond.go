// Package respond writes JSON responses and maps domain errors onto HTTP
// status codes. It is shared by handlers and middleware.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
)

// StatusFor is the single mapping from error kind to HTTP status.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden, domain.KindPendingApproval:
		return http.StatusForbidden
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindInvalidInput, domain.KindUnavailable:
		return http.StatusBadRequest
	case domain.KindConflict, domain.KindInvalidTransition:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

type ErrorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Errors writes error responses. With Debug set the full error chain is
// included as "stack"; it is never set in production.
type Errors struct {
	Debug  bool
	Logger *slog.Logger
}

func (e *Errors) Write(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := StatusFor(kind)

	body := ErrorBody{Message: domain.MessageOf(err)}
	if e.Debug {
		body.Stack = err.Error()
	}

	if e.Logger != nil {
		attrs := []any{"method", r.Method, "path", r.URL.Path, "status", status, "kind", kind.String(), "error", err}
		if status >= http.StatusInternalServerError {
			e.Logger.Error("request failed", attrs...)
		} else {
			e.Logger.Debug("request rejected", attrs...)
		}
	}
	JSON(w, status, body)
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Message is the body of responses that carry only a confirmation.
type Message struct {
	Message string `json:"message"`
}

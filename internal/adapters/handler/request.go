package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/middleware"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewError(domain.KindInvalidInput, "request body is empty")
		}
		return domain.WrapError(domain.KindInvalidInput, err, "invalid request payload")
	}
	return nil
}

// actor returns the identity resolved by the auth middleware.
func actor(r *http.Request) (domain.Identity, error) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return domain.Identity{}, domain.ErrMissingToken
	}
	return session.Identity, nil
}

func parseOptionalFloat(field, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidInput, "%s must be a number, got %q", field, raw)
	}
	return &v, nil
}

func parseOptionalInt(field, raw string, max int) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, domain.NewError(domain.KindInvalidInput, "%s must be a non-negative integer, got %q", field, raw)
	}
	if max > 0 && v > max {
		v = max
	}
	return v, nil
}

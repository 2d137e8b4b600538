package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/handler"
)

func TestHealthHandler_Health(t *testing.T) {
	h := handler.NewHealthHandler()
	rec := httptest.NewRecorder()

	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body handler.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "UP" || body.Checks["process"].Status != "UP" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     []handler.DependencyCheck
		wantStatus int
		wantDown   []string
	}{
		{
			name:       "all_dependencies_up",
			checks:     []handler.DependencyCheck{{Name: "mongodb", Ping: up}, {Name: "redis", Ping: up}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "one_dependency_down",
			checks:     []handler.DependencyCheck{{Name: "mongodb", Ping: up}, {Name: "postgres", Ping: down}},
			wantStatus: http.StatusServiceUnavailable,
			wantDown:   []string{"postgres"},
		},
		{
			name:       "uninitialized_dependency",
			checks:     []handler.DependencyCheck{{Name: "mongodb"}},
			wantStatus: http.StatusServiceUnavailable,
			wantDown:   []string{"mongodb"},
		},
		{
			name:       "no_dependencies",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(tt.checks...)
			rec := httptest.NewRecorder()

			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var body handler.ReadyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for _, name := range tt.wantDown {
				if c := body.Checks[name]; c.Status != "DOWN" || c.Message == "" {
					t.Errorf("expected %s DOWN with a message, got %+v", name, c)
				}
			}
		})
	}
}

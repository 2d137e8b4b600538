package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
)

const dependencyCheckTimeout = 5 * time.Second

// DependencyCheck is one readiness probe. A nil Ping reports the
// dependency as not initialized.
type DependencyCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks    []DependencyCheck
	startTime time.Time
	version   string
}

func NewHealthHandler(checks ...DependencyCheck) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		checks:    checks,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse follows Kubernetes/OpenShift health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ReadyResponse struct {
	Status string           `json:"status"`
	Checks map[string]Check `json:"checks"`
}

// Health is a simple liveness check - just confirms the Go process is running
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Ready checks every dependency (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]Check, len(h.checks))
	status := "UP"
	httpStatus := http.StatusOK

	for _, dc := range h.checks {
		c := runCheck(r.Context(), dc)
		checks[dc.Name] = c
		if c.Status != "UP" {
			status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	respond.JSON(w, httpStatus, ReadyResponse{Status: status, Checks: checks})
}

// Live is an alias for Health - simple liveness check
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

func runCheck(ctx context.Context, dc DependencyCheck) Check {
	if dc.Ping == nil {
		return Check{Status: "DOWN", Message: dc.Name + " is not initialized"}
	}
	ctx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
	defer cancel()
	if err := dc.Ping(ctx); err != nil {
		return Check{Status: "DOWN", Message: "Cannot connect to " + dc.Name}
	}
	return Check{Status: "UP"}
}

package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker names. Timeouts are chosen per dependency.
const (
	BreakerRedis         = "Redis-Revocations"
	BreakerMongo         = "MongoDB"
	BreakerGridFS        = "MongoDB-GridFS"
	BreakerPostgres      = "PostgreSQL"
	BreakerRelayPostgres = "Relay-PostgreSQL"
	BreakerRabbitMQ      = "RabbitMQ"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// Errors matching any of benign (via errors.Is) are expected outcomes
// such as a missing document and do not count as failures.
func NewCircuitBreaker(name string, benign ...error) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	// Aligned with the 5s health check timeout.
	switch name {
	case BreakerRedis:
		timeout = 5 * time.Second
	case BreakerPostgres, BreakerMongo, BreakerGridFS, BreakerRelayPostgres:
		timeout = 10 * time.Second
	default:
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			for _, b := range benign {
				if errors.Is(err, b) {
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Error("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

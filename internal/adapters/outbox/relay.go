package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/repository"
	"github.com/AchilleasB/rentals/marketplace-service/internal/config"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

const (
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute

	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// Relay forwards booking status events from the Postgres event log to the
// broker. Inserts are signalled with NOTIFY; a periodic sweep picks up
// anything the listener missed.
type Relay struct {
	db        *sqlx.DB
	dbURL     string
	publisher ports.BookingEventPublisher
	dbCB      *gobreaker.CircuitBreaker
	logger    *slog.Logger

	mu            sync.RWMutex
	lastProcessed time.Time
	healthy       bool
}

func NewRelay(db *sqlx.DB, dbURL string, publisher ports.BookingEventPublisher, logger *slog.Logger) *Relay {
	return &Relay{
		db:            db,
		dbURL:         dbURL,
		publisher:     publisher,
		dbCB:          config.NewCircuitBreaker(config.BreakerRelayPostgres),
		logger:        logger.With("component", "relay"),
		lastProcessed: time.Now(),
		healthy:       true,
	}
}

// IsHealthy is the liveness check. An open breaker is degraded but
// recoverable and does not fail it.
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.healthy
}

// IsReady reports whether the relay can currently forward events.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if time.Since(r.lastProcessed) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy
}

func (r *Relay) markProcessed() {
	r.mu.Lock()
	r.lastProcessed = time.Now()
	r.healthy = true
	r.mu.Unlock()
}

func (r *Relay) setHealthy(v bool) {
	r.mu.Lock()
	r.healthy = v
	r.mu.Unlock()
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Error("listener error", "event", ev, "error", err)
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(repository.BookingEventsChannel); err != nil {
		return err
	}
	r.logger.Info("listening for notifications", "channel", repository.BookingEventsChannel)

	if err := r.processUnprocessedEvents(ctx); err != nil {
		r.logger.Error("failed to process startup backlog", "error", err)
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down")
			return ctx.Err()

		case notification := <-listener.Notify:
			if notification == nil {
				// Connection was re-established; events may have been missed.
				r.setHealthy(false)
				if err := r.processUnprocessedEvents(ctx); err == nil {
					r.markProcessed()
				}
				continue
			}
			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				r.logger.Error("failed to process event", "event_id", notification.Extra, "error", err)
				continue
			}
			r.markProcessed()

		case <-ticker.C:
			go listener.Ping()
			if err := r.processUnprocessedEvents(ctx); err != nil {
				r.logger.Error("periodic processing failed", "error", err)
				continue
			}
			r.markProcessed()
		}
	}
}

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (any, error) {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var evt domain.BookingStatusEvent
		err = tx.GetContext(ctx, &evt, `
			SELECT `+repository.BookingEventColumns+`
			FROM booking_status_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.forward(ctx, evt); err != nil {
			return nil, err
		}
		if err := markEvent(ctx, tx, evt.ID); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (any, error) {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var events []domain.BookingStatusEvent
		err = tx.SelectContext(ctx, &events, `
			SELECT `+repository.BookingEventColumns+`
			FROM booking_status_events
			WHERE processed_at IS NULL
			ORDER BY occurred_at, seq
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		for _, evt := range events {
			if err := r.forward(ctx, evt); err != nil {
				r.logger.Error("failed to publish event", "event_id", evt.ID, "error", err)
				continue
			}
			if err := markEvent(ctx, tx, evt.ID); err != nil {
				return nil, err
			}
			r.logger.Debug("processed event", "event_id", evt.ID)
		}
		return nil, tx.Commit()
	})
	return err
}

// forward publishes evt. Malformed events are dropped with a log line and
// still marked processed so they are not retried forever.
func (r *Relay) forward(ctx context.Context, evt domain.BookingStatusEvent) error {
	if err := ValidateEvent(evt); err != nil {
		r.logger.Warn("dropping invalid event", "event_id", evt.ID, "error", err)
		return nil
	}
	return r.publisher.PublishBookingStatusChanged(ctx, evt)
}

// ValidateEvent rejects rows that do not describe a lifecycle step.
func ValidateEvent(evt domain.BookingStatusEvent) error {
	if evt.BookingID == "" {
		return errors.New("event has no booking id")
	}
	to, err := domain.ParseBookingStatus(string(evt.ToStatus))
	if err != nil {
		return fmt.Errorf("unknown target status %q", evt.ToStatus)
	}
	if evt.FromStatus == "" {
		if to != domain.BookingPending {
			return fmt.Errorf("creation event must target %s, got %s", domain.BookingPending, to)
		}
		return nil
	}
	if !domain.CanTransition(evt.FromStatus, to) {
		return fmt.Errorf("%s -> %s is not a lifecycle transition", evt.FromStatus, to)
	}
	return nil
}

func markEvent(ctx context.Context, tx *sqlx.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE booking_status_events SET processed_at = NOW() WHERE id = $1`, id)
	return err
}

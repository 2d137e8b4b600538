package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/rentals/marketplace-service/internal/config"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

// BookingEventsChannel is the NOTIFY channel the relay listens on. The
// payload is the id of the inserted event.
const BookingEventsChannel = "booking_events"

const bookingEventsSchema = `
CREATE TABLE IF NOT EXISTS booking_status_events (
	id           UUID PRIMARY KEY,
	seq          BIGSERIAL NOT NULL, -- insertion order, breaks occurred_at ties
	booking_id   TEXT NOT NULL,
	listing_id   TEXT NOT NULL,
	renter_id    TEXT NOT NULL,
	owner_id     TEXT NOT NULL,
	actor_id     TEXT NOT NULL,
	from_status  TEXT NOT NULL DEFAULT '',
	to_status    TEXT NOT NULL,
	occurred_at  TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS booking_status_events_booking_idx
	ON booking_status_events (booking_id, occurred_at, seq);

CREATE INDEX IF NOT EXISTS booking_status_events_unprocessed_idx
	ON booking_status_events (occurred_at) WHERE processed_at IS NULL;

CREATE OR REPLACE FUNCTION notify_booking_status_event() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('booking_events', NEW.id::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS booking_status_events_notify ON booking_status_events;
CREATE TRIGGER booking_status_events_notify
	AFTER INSERT ON booking_status_events
	FOR EACH ROW EXECUTE FUNCTION notify_booking_status_event();
`

// BookingEventColumns is the column list shared by every reader of the
// event table.
const BookingEventColumns = `id, booking_id, listing_id, renter_id, owner_id, actor_id,
	from_status, to_status, occurred_at`

// ConnectPostgres opens and pings the event log database.
func ConnectPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// EnsureEventSchema creates the event table and its NOTIFY trigger.
func EnsureEventSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, bookingEventsSchema); err != nil {
		return fmt.Errorf("failed to apply booking event schema: %w", err)
	}
	return nil
}

// PostgresEventStore is the append-only booking status history.
type PostgresEventStore struct {
	db *sqlx.DB
	cb *gobreaker.CircuitBreaker
}

var _ ports.BookingEventStore = (*PostgresEventStore)(nil)

func NewPostgresEventStore(db *sqlx.DB) *PostgresEventStore {
	return &PostgresEventStore{
		db: db,
		cb: config.NewCircuitBreaker(config.BreakerPostgres),
	}
}

func (s *PostgresEventStore) Append(ctx context.Context, evt domain.BookingStatusEvent) error {
	_, err := s.cb.Execute(func() (any, error) {
		return s.db.NamedExecContext(ctx, `
			INSERT INTO booking_status_events (`+BookingEventColumns+`)
			VALUES (:id, :booking_id, :listing_id, :renter_id, :owner_id, :actor_id,
				:from_status, :to_status, :occurred_at)`, evt)
	})
	if err != nil {
		return eventStoreError(err)
	}
	return nil
}

func (s *PostgresEventStore) History(ctx context.Context, bookingID string) ([]domain.BookingStatusEvent, error) {
	events, err := guarded(s.cb, func() ([]domain.BookingStatusEvent, error) {
		events := []domain.BookingStatusEvent{}
		err := s.db.SelectContext(ctx, &events, `
			SELECT `+BookingEventColumns+`
			FROM booking_status_events
			WHERE booking_id = $1
			ORDER BY occurred_at, seq`, bookingID)
		return events, err
	})
	if err != nil {
		return nil, eventStoreError(err)
	}
	return events, nil
}

func eventStoreError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Upstream(err, "event log temporarily unavailable")
	}
	return domain.Upstream(err, "event log failure")
}

package ports

import (
	"context"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
)

// BookingEventPublisher forwards booking status events to the broker.
type BookingEventPublisher interface {
	PublishBookingStatusChanged(ctx context.Context, evt domain.BookingStatusEvent) error
}

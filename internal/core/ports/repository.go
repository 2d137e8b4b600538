package ports

import (
	"context"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
)

// IdentityRepository persists identities. Implementations enforce email
// uniqueness and return domain.ErrDuplicateEmail on violation, and a
// KindNotFound error when a lookup by id or email misses.
type IdentityRepository interface {
	Create(ctx context.Context, identity domain.Identity) error
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	List(ctx context.Context) ([]domain.Identity, error)
	// Approve sets is_approved to true. It never sets it back to false.
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing domain.Listing) error
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Listing, error)
	FindAvailable(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error)
	IDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	List(ctx context.Context) ([]domain.Listing, error)
	Update(ctx context.Context, listing domain.Listing) error
	Delete(ctx context.Context, id string) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) error
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	FindByRenter(ctx context.Context, renterID string) ([]domain.Booking, error)
	FindByListings(ctx context.Context, listingIDs []string) ([]domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	// UpdateStatus writes booking.Status only if the stored status still
	// equals from. A lost race yields domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, booking domain.Booking, from domain.BookingStatus) error
}

// BookingEventStore is the append-only booking status history.
type BookingEventStore interface {
	Append(ctx context.Context, event domain.BookingStatusEvent) error
	History(ctx context.Context, bookingID string) ([]domain.BookingStatusEvent, error)
}

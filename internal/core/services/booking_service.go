package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/AchilleasB/rentals/marketplace-service/internal/clock"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

var _ ports.BookingService = (*BookingService)(nil)

type BookingService struct {
	bookings   ports.BookingRepository
	listings   ports.ListingRepository
	identities ports.IdentityRepository
	events     ports.BookingEventStore
	clock      clock.Clock
	logger     *slog.Logger
}

// NewBookingService wires the booking workflow. events may be nil, in
// which case no status history is kept.
func NewBookingService(
	bookings ports.BookingRepository,
	listings ports.ListingRepository,
	identities ports.IdentityRepository,
	events ports.BookingEventStore,
	clk clock.Clock,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		bookings:   bookings,
		listings:   listings,
		identities: identities,
		events:     events,
		clock:      clk,
		logger:     logger,
	}
}

// Create opens a pending booking request against an available listing.
func (s *BookingService) Create(ctx context.Context, actor domain.Identity, listingID string, details domain.RenterDetails) (*domain.Booking, error) {
	if err := domain.Authorize(&actor, domain.RoleRenter).Err(); err != nil {
		return nil, err
	}
	if listingID == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "listingId is required")
	}
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	booking, err := domain.NewBooking(uuid.NewString(), actor, *listing, details, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	s.record(ctx, booking, actor.ID, "")
	return &booking, nil
}

func (s *BookingService) ListForRenter(ctx context.Context, actor domain.Identity) ([]domain.BookingView, error) {
	if err := domain.Authorize(&actor, domain.RoleRenter).Err(); err != nil {
		return nil, err
	}
	bookings, err := s.bookings.FindByRenter(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return bookingViews(ctx, s.identities, s.listings, bookings)
}

// ListForOwner returns bookings on any listing the owner currently holds.
func (s *BookingService) ListForOwner(ctx context.Context, actor domain.Identity) ([]domain.BookingView, error) {
	if err := domain.Authorize(&actor, domain.RoleOwner).Err(); err != nil {
		return nil, err
	}
	listingIDs, err := s.listings.IDsByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(listingIDs) == 0 {
		return []domain.BookingView{}, nil
	}
	bookings, err := s.bookings.FindByListings(ctx, listingIDs)
	if err != nil {
		return nil, err
	}
	return bookingViews(ctx, s.identities, s.listings, bookings)
}

// Transition moves a booking along its lifecycle. The write is
// conditional on the status read, so of two racing transitions out of
// the same status at most one succeeds.
func (s *BookingService) Transition(ctx context.Context, actor domain.Identity, bookingID, status string) (*ports.TransitionResult, error) {
	if err := domain.Authorize(&actor, domain.RoleOwner).Err(); err != nil {
		return nil, err
	}
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	from, err := booking.Transition(actor, status, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateStatus(ctx, *booking, from); err != nil {
		return nil, err
	}

	s.logger.Info("booking status changed",
		"booking_id", booking.ID, "from", from, "to", booking.Status, "actor_id", actor.ID)
	s.record(ctx, *booking, actor.ID, from)
	return &ports.TransitionResult{Booking: *booking, From: from}, nil
}

// record appends to the status history. The booking document is the
// source of truth, so a failed append is logged and the request still
// succeeds.
func (s *BookingService) record(ctx context.Context, b domain.Booking, actorID string, from domain.BookingStatus) {
	if s.events == nil {
		return
	}
	evt := domain.BookingStatusEvent{
		ID:         uuid.NewString(),
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		RenterID:   b.RenterID,
		OwnerID:    b.OwnerID,
		ActorID:    actorID,
		FromStatus: from,
		ToStatus:   b.Status,
		OccurredAt: b.UpdatedAt,
	}
	if err := s.events.Append(ctx, evt); err != nil {
		s.logger.Error("failed to append booking status event",
			"booking_id", b.ID, "to", b.Status, "error", err)
	}
}

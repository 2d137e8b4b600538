package services

import (
	"context"
	"log/slog"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

var _ ports.AdminService = (*AdminService)(nil)

// AdminService is the Admin-only view over the whole marketplace.
type AdminService struct {
	identities ports.IdentityRepository
	listings   ports.ListingRepository
	bookings   ports.BookingRepository
	events     ports.BookingEventStore
	logger     *slog.Logger
}

func NewAdminService(
	identities ports.IdentityRepository,
	listings ports.ListingRepository,
	bookings ports.BookingRepository,
	events ports.BookingEventStore,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		identities: identities,
		listings:   listings,
		bookings:   bookings,
		events:     events,
		logger:     logger,
	}
}

func (s *AdminService) ListIdentities(ctx context.Context, actor domain.Identity) ([]domain.PublicIdentity, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	identities, err := s.identities.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicIdentity, 0, len(identities))
	for _, identity := range identities {
		out = append(out, identity.Public())
	}
	return out, nil
}

// ListListings returns every listing, available or not.
func (s *AdminService) ListListings(ctx context.Context, actor domain.Identity) ([]domain.ListingView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	listings, err := s.listings.List(ctx)
	if err != nil {
		return nil, err
	}
	return listingViews(ctx, s.identities, listings)
}

func (s *AdminService) ListBookings(ctx context.Context, actor domain.Identity) ([]domain.BookingView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	return bookingViews(ctx, s.identities, s.listings, bookings)
}

// BookingHistory returns the status events of one booking, oldest first.
func (s *AdminService) BookingHistory(ctx context.Context, actor domain.Identity, bookingID string) ([]domain.BookingStatusEvent, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.bookings.FindByID(ctx, bookingID); err != nil {
		return nil, err
	}
	if s.events == nil {
		return []domain.BookingStatusEvent{}, nil
	}
	history, err := s.events.History(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return history, nil
}

// ApproveOwner opens the approval gate for an Owner. Approving an
// already approved Owner is a no-op.
func (s *AdminService) ApproveOwner(ctx context.Context, actor domain.Identity, id string) (*domain.PublicIdentity, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	target, err := s.identities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Role != domain.RoleOwner {
		return nil, domain.NewError(domain.KindInvalidInput, "only owner accounts require approval")
	}
	if !target.IsApproved {
		if err := s.identities.Approve(ctx, target.ID); err != nil {
			return nil, err
		}
		target.IsApproved = true
		s.logger.Info("owner approved", "owner_id", target.ID, "admin_id", actor.ID)
	}
	public := target.Public()
	return &public, nil
}

// DeleteIdentity removes a Renter or Owner. Their listings and bookings
// are left in place.
func (s *AdminService) DeleteIdentity(ctx context.Context, actor domain.Identity, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	target, err := s.identities.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanDeleteIdentity(actor, *target) {
		return domain.NewError(domain.KindForbidden, "admin accounts cannot be deleted")
	}
	if err := s.identities.Delete(ctx, target.ID); err != nil {
		return err
	}
	s.logger.Info("identity deleted", "identity_id", target.ID, "role", target.Role, "admin_id", actor.ID)
	return nil
}

func requireAdmin(actor domain.Identity) error {
	return domain.Authorize(&actor, domain.RoleAdmin).Err()
}

package services

import (
	"context"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

func listingViews(ctx context.Context, identities ports.IdentityRepository, listings []domain.Listing) ([]domain.ListingView, error) {
	ownerIDs := make([]string, 0, len(listings))
	for _, l := range listings {
		ownerIDs = append(ownerIDs, l.OwnerID)
	}
	parties, err := partySummaries(ctx, identities, ownerIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, domain.ListingView{Listing: l, Owner: parties[l.OwnerID]})
	}
	return views, nil
}

// bookingViews attaches the listing excerpt and both parties' summaries.
// References to deleted listings or identities are left nil.
func bookingViews(
	ctx context.Context,
	identities ports.IdentityRepository,
	listings ports.ListingRepository,
	bookings []domain.Booking,
) ([]domain.BookingView, error) {
	listingIDs := make([]string, 0, len(bookings))
	partyIDs := make([]string, 0, 2*len(bookings))
	for _, b := range bookings {
		listingIDs = append(listingIDs, b.ListingID)
		partyIDs = append(partyIDs, b.RenterID, b.OwnerID)
	}

	summaries := make(map[string]*domain.ListingSummary)
	if ids := unique(listingIDs); len(ids) > 0 {
		found, err := listings.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, l := range found {
			summary := l.Summary()
			summaries[l.ID] = &summary
		}
	}
	parties, err := partySummaries(ctx, identities, partyIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, domain.BookingView{
			Booking: b,
			Listing: summaries[b.ListingID],
			Renter:  parties[b.RenterID],
			Owner:   parties[b.OwnerID],
		})
	}
	return views, nil
}

func partySummaries(ctx context.Context, identities ports.IdentityRepository, ids []string) (map[string]*domain.PartySummary, error) {
	out := make(map[string]*domain.PartySummary)
	ids = unique(ids)
	if len(ids) == 0 {
		return out, nil
	}
	found, err := identities.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, identity := range found {
		summary := identity.Summary()
		out[identity.ID] = &summary
	}
	return out, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

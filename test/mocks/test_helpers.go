package mocks

import (
	"time"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
)

// Epoch is the fixed start time used by fake clocks in tests.
var Epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func CreateTestRenter(id string) domain.Identity {
	return domain.Identity{
		ID:           id,
		Name:         "Renter " + id,
		Email:        id + "@renter.test",
		PasswordHash: Digest("password123"),
		Role:         domain.RoleRenter,
		IsApproved:   true,
		CreatedAt:    Epoch,
	}
}

func CreateTestOwner(id string, approved bool) domain.Identity {
	return domain.Identity{
		ID:           id,
		Name:         "Owner " + id,
		Email:        id + "@owner.test",
		PasswordHash: Digest("password123"),
		Role:         domain.RoleOwner,
		IsApproved:   approved,
		CreatedAt:    Epoch,
	}
}

func CreateTestAdmin(id string) domain.Identity {
	return domain.Identity{
		ID:           id,
		Name:         "Admin " + id,
		Email:        id + "@admin.test",
		PasswordHash: Digest("password123"),
		Role:         domain.RoleAdmin,
		IsApproved:   true,
		CreatedAt:    Epoch,
	}
}

// CreateTestListing returns an available Rent listing. age shifts
// CreatedAt back so callers can control newest-first ordering.
func CreateTestListing(id, ownerID string, age time.Duration) domain.Listing {
	created := Epoch.Add(-age)
	return domain.Listing{
		ID:           id,
		OwnerID:      ownerID,
		PropertyType: "Apartment",
		AdType:       domain.AdTypeRent,
		Address:      "1 Canal Street " + id,
		Description:  "Bright two-room apartment",
		Images:       []string{},
		RentAmount:   1200,
		IsAvailable:  true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func CreateTestBooking(id string, listing domain.Listing, renterID string, status domain.BookingStatus) domain.Booking {
	return domain.Booking{
		ID:        id,
		ListingID: listing.ID,
		RenterID:  renterID,
		OwnerID:   listing.OwnerID,
		RenterDetails: domain.RenterDetails{
			Name:  "Jane Renter",
			Email: "jane@renter.test",
		},
		Status:    status,
		CreatedAt: Epoch,
		UpdatedAt: Epoch,
	}
}

// CreateTestEvent returns a status event for booking moving from -> to.
func CreateTestEvent(booking domain.Booking, from, to domain.BookingStatus) domain.BookingStatusEvent {
	return domain.BookingStatusEvent{
		ID:         "evt-" + booking.ID + "-" + string(to),
		BookingID:  booking.ID,
		ListingID:  booking.ListingID,
		RenterID:   booking.RenterID,
		OwnerID:    booking.OwnerID,
		ActorID:    booking.OwnerID,
		FromStatus: from,
		ToStatus:   to,
		OccurredAt: Epoch,
	}
}

package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
)

// ParseBookingStatus fails with ErrUnknownStatus for anything but the
// four recognized statuses.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case BookingPending, BookingApproved, BookingRejected, BookingCompleted:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// bookingTransitions lists every permitted (from, to) pair. Rejected and
// completed are terminal; pending cannot skip approval.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingApproved, BookingRejected},
	BookingApproved: {BookingCompleted},
}

// CanTransition reports whether from -> to is a row of the lifecycle
// table.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

type RenterDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message,omitempty"`
}

func (d RenterDetails) validate() (RenterDetails, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Message = strings.TrimSpace(d.Message)
	if d.Name == "" || d.Email == "" {
		return d, NewError(KindInvalidInput, "please provide your name and email for the booking request")
	}
	if !strings.Contains(d.Email, "@") {
		return d, NewError(KindInvalidInput, "renter email %q is not a valid address", d.Email)
	}
	return d, nil
}

type Booking struct {
	ID            string        `json:"id"`
	ListingID     string        `json:"listingId"`
	RenterID      string        `json:"renterId"`
	OwnerID       string        `json:"ownerId"`
	RenterDetails RenterDetails `json:"renterDetails"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// NewBooking opens a pending request by renter against listing. The
// listing's owner is copied onto the booking and never re-derived.
func NewBooking(id string, renter Identity, listing Listing, details RenterDetails, now time.Time) (Booking, error) {
	if renter.Role != RoleRenter {
		return Booking{}, NewError(KindForbidden, "only renters are authorized to create booking requests")
	}
	if !listing.IsAvailable {
		return Booking{}, NewError(KindUnavailable, "this listing is currently not available for booking")
	}
	details, err := details.validate()
	if err != nil {
		return Booking{}, err
	}
	return Booking{
		ID:            id,
		ListingID:     listing.ID,
		RenterID:      renter.ID,
		OwnerID:       listing.OwnerID,
		RenterDetails: details,
		Status:        BookingPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Transition moves b to status on behalf of actor and returns the status
// it left. b is only modified on success.
func (b *Booking) Transition(actor Identity, status string, now time.Time) (BookingStatus, error) {
	if !CanTransitionBooking(actor, *b) {
		return "", NewError(KindForbidden, "not authorized to update this booking")
	}
	to, err := ParseBookingStatus(status)
	if err != nil {
		return "", err
	}
	from := b.Status
	if !CanTransition(from, to) {
		return "", WrapError(KindInvalidTransition, ErrInvalidTransition,
			"booking cannot move from %s to %s", from, to)
	}
	b.Status = to
	b.UpdatedAt = now
	return from, nil
}

// BookingStatusEvent is one entry of a booking's append-only status
// history. FromStatus is empty for the creation event.
type BookingStatusEvent struct {
	ID         string        `json:"id" db:"id"`
	BookingID  string        `json:"bookingId" db:"booking_id"`
	ListingID  string        `json:"listingId" db:"listing_id"`
	RenterID   string        `json:"renterId" db:"renter_id"`
	OwnerID    string        `json:"ownerId" db:"owner_id"`
	ActorID    string        `json:"actorId" db:"actor_id"`
	FromStatus BookingStatus `json:"fromStatus" db:"from_status"`
	ToStatus   BookingStatus `json:"toStatus" db:"to_status"`
	OccurredAt time.Time     `json:"occurredAt" db:"occurred_at"`
}

// BookingView is a booking enriched with the listing excerpt and the
// parties' public summaries.
type BookingView struct {
	Booking
	Listing *ListingSummary `json:"listing,omitempty"`
	Renter  *PartySummary   `json:"renter,omitempty"`
	Owner   *PartySummary   `json:"owner,omitempty"`
}

package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	Identity  domain.PublicIdentity `json:"identity"`
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expiresAt"`
}

type TransitionResult struct {
	Booking domain.Booking
	From    domain.BookingStatus
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, session domain.Session) error
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	ProvisionAdmin(ctx context.Context, name, email, password string) (*domain.PublicIdentity, error)
}

type ListingService interface {
	ListAvailable(ctx context.Context, filter domain.ListingFilter) ([]domain.ListingView, error)
	GetAvailable(ctx context.Context, id string) (*domain.ListingView, error)
	Create(ctx context.Context, actor domain.Identity, draft domain.ListingDraft, images []ImageUpload) (*domain.Listing, error)
	ListMine(ctx context.Context, actor domain.Identity) ([]domain.Listing, error)
	GetMine(ctx context.Context, actor domain.Identity, id string) (*domain.Listing, error)
	Update(ctx context.Context, actor domain.Identity, id string, patch domain.ListingPatch) (*domain.Listing, error)
	SetAvailability(ctx context.Context, actor domain.Identity, id string, available bool) (*domain.Listing, error)
	Delete(ctx context.Context, actor domain.Identity, id string) error
	OpenImage(ctx context.Context, name string) (*Blob, error)
}

type BookingService interface {
	Create(ctx context.Context, actor domain.Identity, listingID string, details domain.RenterDetails) (*domain.Booking, error)
	ListForRenter(ctx context.Context, actor domain.Identity) ([]domain.BookingView, error)
	ListForOwner(ctx context.Context, actor domain.Identity) ([]domain.BookingView, error)
	Transition(ctx context.Context, actor domain.Identity, bookingID, status string) (*TransitionResult, error)
}

type AdminService interface {
	ListIdentities(ctx context.Context, actor domain.Identity) ([]domain.PublicIdentity, error)
	ListListings(ctx context.Context, actor domain.Identity) ([]domain.ListingView, error)
	ListBookings(ctx context.Context, actor domain.Identity) ([]domain.BookingView, error)
	BookingHistory(ctx context.Context, actor domain.Identity, bookingID string) ([]domain.BookingStatusEvent, error)
	ApproveOwner(ctx context.Context, actor domain.Identity, id string) (*domain.PublicIdentity, error)
	DeleteIdentity(ctx context.Context, actor domain.Identity, id string) error
}

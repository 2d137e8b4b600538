package handler

import (
	"log/slog"
	"net/http"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/metrics"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/middleware"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/services"
)

type RouterConfig struct {
	Auth         ports.AuthService
	Registration ports.RegistrationService
	Listings     ports.ListingService
	Bookings     ports.BookingService
	Admin        ports.AdminService

	Health         *HealthHandler
	Metrics        *metrics.Metrics
	Errors         *respond.Errors
	Logger         *slog.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
	// MaxImages is the per-listing image count the listing service
	// accepts. Zero means services.DefaultMaxImages.
	MaxImages int
}

// NewRouter builds the full HTTP surface with its middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	auth := middleware.NewAuthMiddleware(cfg.Auth, cfg.Errors, cfg.Metrics)

	authHandler := NewAuthHandler(cfg.Auth, cfg.Errors)
	registrationHandler := NewRegistrationHandler(cfg.Registration, cfg.Errors)
	listingHandler := NewListingHandler(cfg.Listings, cfg.Bookings, cfg.Errors)
	maxImages := cfg.MaxImages
	if maxImages <= 0 {
		maxImages = services.DefaultMaxImages
	}
	ownerHandler := NewOwnerHandler(cfg.Listings, cfg.Bookings, cfg.Errors, cfg.Metrics, cfg.MaxUploadBytes, maxImages)
	adminHandler := NewAdminHandler(cfg.Admin, cfg.Errors)

	renter := func(h http.HandlerFunc) http.HandlerFunc { return auth.RequireRoles(h, domain.RoleRenter) }
	owner := func(h http.HandlerFunc) http.HandlerFunc { return auth.RequireRoles(h, domain.RoleOwner) }
	admin := func(h http.HandlerFunc) http.HandlerFunc { return auth.RequireRoles(h, domain.RoleAdmin) }

	mux := http.NewServeMux()

	if cfg.Health != nil {
		mux.HandleFunc("GET /health", cfg.Health.Health)
		mux.HandleFunc("GET /health/ready", cfg.Health.Ready)
		mux.HandleFunc("GET /health/live", cfg.Health.Live)
	}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	mux.HandleFunc("POST /identities/register", registrationHandler.Register)
	mux.HandleFunc("POST /identities/login", authHandler.Login)
	mux.HandleFunc("GET /identities/me", auth.Authenticated(authHandler.Me))
	mux.HandleFunc("POST /identities/logout", auth.Authenticated(authHandler.Logout))

	mux.HandleFunc("GET /listings", listingHandler.List)
	mux.HandleFunc("GET /listings/{id}", listingHandler.Get)
	mux.HandleFunc("POST /listings/{id}/bookings", renter(listingHandler.CreateBooking))
	mux.HandleFunc("GET /listings/mine/bookings", renter(listingHandler.MyBookings))
	mux.HandleFunc("GET /uploads/{name}", listingHandler.Image)

	mux.HandleFunc("POST /owner/listings", owner(ownerHandler.CreateListing))
	mux.HandleFunc("GET /owner/listings", owner(ownerHandler.ListListings))
	mux.HandleFunc("GET /owner/listings/bookings", owner(ownerHandler.ListBookings))
	mux.HandleFunc("GET /owner/listings/{id}", owner(ownerHandler.GetListing))
	mux.HandleFunc("PUT /owner/listings/{id}", owner(ownerHandler.UpdateListing))
	mux.HandleFunc("DELETE /owner/listings/{id}", owner(ownerHandler.DeleteListing))
	mux.HandleFunc("PUT /owner/listings/{id}/availability", owner(ownerHandler.SetAvailability))
	mux.HandleFunc("PUT /owner/bookings/{id}/status", owner(ownerHandler.TransitionBooking))

	mux.HandleFunc("GET /admin/identities", admin(adminHandler.ListIdentities))
	mux.HandleFunc("GET /admin/listings", admin(adminHandler.ListListings))
	mux.HandleFunc("GET /admin/bookings", admin(adminHandler.ListBookings))
	mux.HandleFunc("GET /admin/bookings/{id}/history", admin(adminHandler.BookingHistory))
	mux.HandleFunc("PUT /admin/identities/{id}/approve", admin(adminHandler.ApproveOwner))
	mux.HandleFunc("DELETE /admin/identities/{id}", admin(adminHandler.DeleteIdentity))

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return middleware.Chain(mux,
		middleware.Observe(logger, cfg.Metrics),
		middleware.Recover(cfg.Errors),
		middleware.CORS(cfg.AllowedOrigins),
	)
}

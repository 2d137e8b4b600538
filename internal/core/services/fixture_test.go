package services_test

import (
	"bytes"
	"io"
	"log/slog"
	"time"

	"github.com/AchilleasB/rentals/marketplace-service/internal/clock"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/services"
	"github.com/AchilleasB/rentals/marketplace-service/test/mocks"
)

const tokenTTL = 24 * time.Hour

// fixture wires every service to in-memory mocks sharing one fake clock.
type fixture struct {
	clock       *clock.FakeClock
	identities  *mocks.MockIdentityRepository
	listings    *mocks.MockListingRepository
	bookings    *mocks.MockBookingRepository
	events      *mocks.MockBookingEventStore
	blobs       *mocks.MockBlobStore
	hasher      *mocks.FakeHasher
	tokens      *mocks.FakeTokens
	revocations *mocks.MockRevocations

	auth         *services.AuthService
	registration *services.RegistrationService
	listing      *services.ListingService
	booking      *services.BookingService
	admin        *services.AdminService
}

func newFixture() *fixture {
	f := &fixture{
		clock:       clock.Fake(mocks.Epoch),
		identities:  mocks.NewMockIdentityRepository(),
		listings:    mocks.NewMockListingRepository(),
		bookings:    mocks.NewMockBookingRepository(),
		events:      mocks.NewMockBookingEventStore(),
		blobs:       mocks.NewMockBlobStore(),
		hasher:      &mocks.FakeHasher{},
		revocations: mocks.NewMockRevocations(),
	}
	f.tokens = mocks.NewFakeTokens(f.clock, tokenTTL)

	logger := discardLogger()
	f.auth = services.NewAuthService(f.identities, f.hasher, f.tokens, f.revocations, logger)
	f.registration = services.NewRegistrationService(f.identities, f.hasher, f.tokens, f.clock)
	f.listing = services.NewListingService(f.listings, f.identities, f.blobs, f.clock,
		services.ListingLimits{MaxImageBytes: 1 << 10, MaxImages: 3}, logger)
	f.booking = services.NewBookingService(f.bookings, f.listings, f.identities, f.events, f.clock, logger)
	f.admin = services.NewAdminService(f.identities, f.listings, f.bookings, f.events, logger)
	return f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00")
)

func pngUpload(name string) ports.ImageUpload {
	return ports.ImageUpload{Filename: name, Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)}
}

func jpegUpload(name string) ports.ImageUpload {
	return ports.ImageUpload{Filename: name, Size: int64(len(jpegHeader)), Content: bytes.NewReader(jpegHeader)}
}

func ptr[T any](v T) *T { return &v }

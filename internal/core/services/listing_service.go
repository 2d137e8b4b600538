package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/AchilleasB/rentals/marketplace-service/internal/clock"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

type ListingLimits struct {
	MaxImageBytes int64
	MaxImages     int
}

func DefaultListingLimits() ListingLimits {
	return ListingLimits{MaxImageBytes: DefaultMaxImageBytes, MaxImages: DefaultMaxImages}
}

var _ ports.ListingService = (*ListingService)(nil)

type ListingService struct {
	listings   ports.ListingRepository
	identities ports.IdentityRepository
	blobs      ports.BlobStore
	clock      clock.Clock
	limits     ListingLimits
	logger     *slog.Logger
}

func NewListingService(
	listings ports.ListingRepository,
	identities ports.IdentityRepository,
	blobs ports.BlobStore,
	clk clock.Clock,
	limits ListingLimits,
	logger *slog.Logger,
) *ListingService {
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = DefaultMaxImageBytes
	}
	if limits.MaxImages <= 0 {
		limits.MaxImages = DefaultMaxImages
	}
	return &ListingService{
		listings:   listings,
		identities: identities,
		blobs:      blobs,
		clock:      clk,
		limits:     limits,
		logger:     logger,
	}
}

// ListAvailable is the public search. Only available listings are
// returned, with the owner reduced to name and email.
func (s *ListingService) ListAvailable(ctx context.Context, filter domain.ListingFilter) ([]domain.ListingView, error) {
	listings, err := s.listings.FindAvailable(ctx, filter)
	if err != nil {
		return nil, err
	}
	return listingViews(ctx, s.identities, listings)
}

// GetAvailable returns one listing if it exists and is available. An
// unavailable listing is indistinguishable from a missing one.
func (s *ListingService) GetAvailable(ctx context.Context, id string) (*domain.ListingView, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, errListingNotAvailable
		}
		return nil, err
	}
	if !listing.IsAvailable {
		return nil, errListingNotAvailable
	}
	views, err := listingViews(ctx, s.identities, []domain.Listing{*listing})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

var errListingNotAvailable = domain.NewError(domain.KindNotFound, "listing not found or not currently available")

// Create validates the draft and every image, stores the images and then
// the listing. Images are referenced in upload order. Stored images are
// removed again if a later step fails.
func (s *ListingService) Create(ctx context.Context, actor domain.Identity, draft domain.ListingDraft, uploads []ports.ImageUpload) (*domain.Listing, error) {
	if err := domain.Authorize(&actor, domain.RoleOwner).Err(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if _, err := domain.NewListing("", actor.ID, draft, nil, now); err != nil {
		return nil, err
	}
	images, err := prepareImages(uploads, s.limits.MaxImageBytes, s.limits.MaxImages)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(images))
	stored := make([]string, 0, len(images))
	for _, img := range images {
		if err := s.blobs.Put(ctx, img.name, img.contentType, img.reader()); err != nil {
			s.discardBlobs(ctx, stored)
			return nil, domain.Upstream(err, "failed to store listing image")
		}
		stored = append(stored, img.name)
		paths = append(paths, img.path())
	}

	listing, err := domain.NewListing(uuid.NewString(), actor.ID, draft, paths, now)
	if err != nil {
		s.discardBlobs(ctx, stored)
		return nil, err
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		s.discardBlobs(ctx, stored)
		return nil, err
	}
	s.logger.Info("listing created", "listing_id", listing.ID, "owner_id", actor.ID, "images", len(paths))
	return &listing, nil
}

func (s *ListingService) ListMine(ctx context.Context, actor domain.Identity) ([]domain.Listing, error) {
	if err := domain.Authorize(&actor, domain.RoleOwner).Err(); err != nil {
		return nil, err
	}
	return s.listings.FindByOwner(ctx, actor.ID)
}

func (s *ListingService) GetMine(ctx context.Context, actor domain.Identity, id string) (*domain.Listing, error) {
	return s.owned(ctx, actor, id)
}

// Update applies patch to a listing the actor owns.
func (s *ListingService) Update(ctx context.Context, actor domain.Identity, id string, patch domain.ListingPatch) (*domain.Listing, error) {
	listing, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, domain.NewError(domain.KindInvalidInput, "no listing fields to update")
	}
	if err := listing.Apply(patch, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.listings.Update(ctx, *listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) SetAvailability(ctx context.Context, actor domain.Identity, id string, available bool) (*domain.Listing, error) {
	return s.Update(ctx, actor, id, domain.ListingPatch{IsAvailable: &available})
}

// Delete removes a listing the actor owns. Image cleanup is best effort.
func (s *ListingService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	listing, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.listings.Delete(ctx, listing.ID); err != nil {
		return err
	}

	names := make([]string, 0, len(listing.Images))
	for _, path := range listing.Images {
		if name, ok := ImageName(path); ok {
			names = append(names, name)
		}
	}
	s.discardBlobs(ctx, names)
	s.logger.Info("listing deleted", "listing_id", listing.ID, "owner_id", actor.ID)
	return nil
}

// OpenImage streams a stored listing image.
func (s *ListingService) OpenImage(ctx context.Context, name string) (*ports.Blob, error) {
	if _, ok := ImageName(UploadsPrefix + name); !ok {
		return nil, domain.NewError(domain.KindNotFound, "image not found")
	}
	return s.blobs.Open(ctx, name)
}

func (s *ListingService) owned(ctx context.Context, actor domain.Identity, id string) (*domain.Listing, error) {
	if err := domain.Authorize(&actor, domain.RoleOwner).Err(); err != nil {
		return nil, err
	}
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanMutateListing(actor, *listing) {
		return nil, domain.NewError(domain.KindForbidden, "not authorized to manage this listing")
	}
	return listing, nil
}

func (s *ListingService) discardBlobs(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.blobs.Delete(ctx, name); err != nil {
			s.logger.Warn("failed to remove listing image", "image", name, "error", err)
		}
	}
}

package domain_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func validDraft() domain.ListingDraft {
	return domain.ListingDraft{
		PropertyType: "Apartment",
		AdType:       "rent",
		Address:      "1 Canal Street",
		Description:  "Bright",
		RentAmount:   ptr(1200.0),
	}
}

func TestNewListing(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.ListingDraft)
		wantErr string
	}{
		{"valid", func(*domain.ListingDraft) {}, ""},
		{"zero_rent_allowed", func(d *domain.ListingDraft) { d.RentAmount = ptr(0.0) }, ""},
		{"missing_fields_listed", func(d *domain.ListingDraft) { d.Address = " "; d.RentAmount = nil }, "address, rentAmount"},
		{"bad_ad_type", func(d *domain.ListingDraft) { d.AdType = "Lease" }, "ad type"},
		{"negative_rent", func(d *domain.ListingDraft) { d.RentAmount = ptr(-1.0) }, "non-negative"},
		{"nan_rent", func(d *domain.ListingDraft) { d.RentAmount = ptr(math.NaN()) }, "non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)

			l, err := domain.NewListing("l1", "o1", draft, []string{"/uploads/b.png", "/uploads/a.png"}, epoch)

			if tt.wantErr != "" {
				if domain.KindOf(err) != domain.KindInvalidInput || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected InvalidInput containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.IsAvailable || l.AdType != domain.AdTypeRent || l.OwnerID != "o1" {
				t.Errorf("unexpected listing %+v", l)
			}
			if len(l.Images) != 2 || l.Images[0] != "/uploads/b.png" {
				t.Errorf("images must keep submission order, got %v", l.Images)
			}
		})
	}
}

func TestNewListing_NilImagesBecomesEmpty(t *testing.T) {
	l, err := domain.NewListing("l1", "o1", validDraft(), nil, epoch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Images == nil {
		t.Error("expected empty, non-nil image list")
	}
}

func TestListing_Apply(t *testing.T) {
	base, err := domain.NewListing("l1", "o1", validDraft(), nil, epoch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	later := epoch.Add(time.Hour)

	t.Run("partial_update", func(t *testing.T) {
		l := base
		err := l.Apply(domain.ListingPatch{Address: ptr(" 2 Dam Square "), IsAvailable: ptr(false)}, later)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.Address != "2 Dam Square" || l.IsAvailable || l.Description != base.Description {
			t.Errorf("unexpected listing %+v", l)
		}
		if !l.UpdatedAt.Equal(later) || l.OwnerID != "o1" {
			t.Errorf("owner or timestamp wrong: %+v", l)
		}
	})

	t.Run("invalid_field_leaves_listing_unchanged", func(t *testing.T) {
		l := base
		err := l.Apply(domain.ListingPatch{Address: ptr("new"), RentAmount: ptr(-5.0)}, later)
		if domain.KindOf(err) != domain.KindInvalidInput {
			t.Fatalf("expected InvalidInput, got %v", err)
		}
		if l.Address != base.Address || !l.UpdatedAt.Equal(epoch) {
			t.Errorf("listing modified on failure: %+v", l)
		}
	})

	t.Run("empty_text_rejected", func(t *testing.T) {
		l := base
		if err := l.Apply(domain.ListingPatch{Description: ptr("   ")}, later); err == nil {
			t.Error("expected error for blank description")
		}
	})
}

func TestListingPatch_IsEmpty(t *testing.T) {
	if !(domain.ListingPatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
	if (domain.ListingPatch{IsAvailable: ptr(false)}).IsEmpty() {
		t.Error("patch with availability should not be empty")
	}
}

func TestKindOf(t *testing.T) {
	if domain.KindOf(nil) != domain.KindInternal {
		t.Error("nil error maps to Internal")
	}
	wrapped := domain.Upstream(domain.ErrDuplicateEmail, "store failed")
	if domain.KindOf(wrapped) != domain.KindUpstreamFailure {
		t.Errorf("outermost kind should win, got %v", domain.KindOf(wrapped))
	}
	if domain.MessageOf(wrapped) != "store failed" {
		t.Errorf("unexpected message %q", domain.MessageOf(wrapped))
	}
	if domain.KindUpstreamFailure.String() != "UpstreamFailure" {
		t.Errorf("unexpected kind name %q", domain.KindUpstreamFailure.String())
	}
}

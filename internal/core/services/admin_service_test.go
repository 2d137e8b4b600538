package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/services"
	"github.com/AchilleasB/rentals/marketplace-service/test/mocks"
)

func adminFixture() (*fixture, domain.Identity) {
	f := newFixture()
	admin := mocks.CreateTestAdmin("a1")
	f.identities.Seed(
		admin,
		mocks.CreateTestAdmin("a2"),
		mocks.CreateTestRenter("r1"),
		mocks.CreateTestOwner("o1", true),
		mocks.CreateTestOwner("o2", false),
	)
	return f, admin
}

func TestAdminService_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f, _ := adminFixture()

	actors := map[string]domain.Identity{
		"renter":         mocks.CreateTestRenter("r1"),
		"approved_owner": mocks.CreateTestOwner("o1", true),
		"pending_owner":  mocks.CreateTestOwner("o2", false),
	}
	for name, actor := range actors {
		t.Run(name, func(t *testing.T) {
			calls := map[string]error{}
			_, calls["identities"] = f.admin.ListIdentities(ctx, actor)
			_, calls["listings"] = f.admin.ListListings(ctx, actor)
			_, calls["bookings"] = f.admin.ListBookings(ctx, actor)
			_, calls["history"] = f.admin.BookingHistory(ctx, actor, "b1")
			_, calls["approve"] = f.admin.ApproveOwner(ctx, actor, "o2")
			calls["delete"] = f.admin.DeleteIdentity(ctx, actor, "r1")

			for op, err := range calls {
				if got := domain.KindOf(err); err == nil || (got != domain.KindForbidden && got != domain.KindPendingApproval) {
					t.Errorf("%s: expected denial, got %v", op, err)
				}
			}
		})
	}

	if _, ok := f.identities.Get("r1"); !ok {
		t.Error("denied delete must not remove the identity")
	}
	if o2, _ := f.identities.Get("o2"); o2.IsApproved {
		t.Error("denied approve must not open the gate")
	}
}

func TestAdminService_ListIdentities(t *testing.T) {
	f, admin := adminFixture()

	identities, err := f.admin.ListIdentities(context.Background(), admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(identities) != 5 {
		t.Fatalf("expected 5 identities, got %d", len(identities))
	}
}

func TestAdminService_ListListingsIncludesUnavailable(t *testing.T) {
	f, admin := adminFixture()
	off := mocks.CreateTestListing("l-off", "o1", 0)
	off.IsAvailable = false
	f.listings.Seed(mocks.CreateTestListing("l-on", "o1", 0), off, mocks.CreateTestListing("l-orphan", "gone", 0))

	views, err := f.admin.ListListings(context.Background(), admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(views))
	}
	for _, v := range views {
		if v.ID == "l-orphan" && v.Owner != nil {
			t.Errorf("orphaned listing should have no owner summary, got %+v", v.Owner)
		}
		if v.ID != "l-orphan" && v.Owner == nil {
			t.Errorf("listing %s should carry its owner summary", v.ID)
		}
	}
}

func TestAdminService_ListBookings(t *testing.T) {
	f, admin := adminFixture()
	listing := mocks.CreateTestListing("l1", "o1", 0)
	f.listings.Seed(listing)
	f.bookings.Seed(
		mocks.CreateTestBooking("b1", listing, "r1", domain.BookingPending),
		mocks.CreateTestBooking("b2", mocks.CreateTestListing("deleted", "o1", 0), "r1", domain.BookingApproved),
	)

	views, err := f.admin.ListBookings(context.Background(), admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(views))
	}
	for _, v := range views {
		switch v.ID {
		case "b1":
			if v.Listing == nil || v.Renter == nil || v.Owner == nil {
				t.Errorf("b1 should be fully enriched: %+v", v)
			}
		case "b2":
			if v.Listing != nil {
				t.Errorf("b2 references a missing listing, got %+v", v.Listing)
			}
		}
	}
}

func TestAdminService_BookingHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("returns_events_for_booking", func(t *testing.T) {
		f, admin := adminFixture()
		listing := mocks.CreateTestListing("l1", "o1", 0)
		b1 := mocks.CreateTestBooking("b1", listing, "r1", domain.BookingApproved)
		b2 := mocks.CreateTestBooking("b2", listing, "r1", domain.BookingPending)
		f.bookings.Seed(b1, b2)
		for _, evt := range []domain.BookingStatusEvent{
			mocks.CreateTestEvent(b1, "", domain.BookingPending),
			mocks.CreateTestEvent(b2, "", domain.BookingPending),
			mocks.CreateTestEvent(b1, domain.BookingPending, domain.BookingApproved),
		} {
			if err := f.events.Append(ctx, evt); err != nil {
				t.Fatalf("append failed: %v", err)
			}
		}

		history, err := f.admin.BookingHistory(ctx, admin, "b1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(history) != 2 || history[1].ToStatus != domain.BookingApproved {
			t.Errorf("unexpected history %+v", history)
		}
	})

	t.Run("unknown_booking", func(t *testing.T) {
		f, admin := adminFixture()
		if _, err := f.admin.BookingHistory(ctx, admin, "nope"); domain.KindOf(err) != domain.KindNotFound {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("no_event_log_configured", func(t *testing.T) {
		f, admin := adminFixture()
		f.bookings.Seed(mocks.CreateTestBooking("b1", mocks.CreateTestListing("l1", "o1", 0), "r1", domain.BookingPending))
		svc := services.NewAdminService(f.identities, f.listings, f.bookings, nil, discardLogger())

		history, err := svc.BookingHistory(ctx, admin, "b1")
		if err != nil || history == nil || len(history) != 0 {
			t.Errorf("expected empty history, got %v %v", history, err)
		}
	})

	t.Run("event_log_failure_propagates", func(t *testing.T) {
		f, admin := adminFixture()
		f.bookings.Seed(mocks.CreateTestBooking("b1", mocks.CreateTestListing("l1", "o1", 0), "r1", domain.BookingPending))
		f.events.HistoryError = domain.Upstream(errors.New("timeout"), "event log failure")

		if _, err := f.admin.BookingHistory(ctx, admin, "b1"); domain.KindOf(err) != domain.KindUpstreamFailure {
			t.Errorf("expected UpstreamFailure, got %v", err)
		}
	})
}

func TestAdminService_ApproveOwner(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantKind    domain.Kind
		wantErr     bool
		wantApprove int
	}{
		{name: "pending_owner", target: "o2", wantApprove: 1},
		{name: "already_approved_is_noop", target: "o1", wantApprove: 0},
		{name: "renter_needs_no_approval", target: "r1", wantErr: true, wantKind: domain.KindInvalidInput},
		{name: "admin_needs_no_approval", target: "a2", wantErr: true, wantKind: domain.KindInvalidInput},
		{name: "unknown_identity", target: "ghost", wantErr: true, wantKind: domain.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, admin := adminFixture()

			public, err := f.admin.ApproveOwner(context.Background(), admin, tt.target)

			if tt.wantErr {
				if got := domain.KindOf(err); err == nil || got != tt.wantKind {
					t.Fatalf("expected %v, got %v", tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !public.IsApproved {
				t.Error("returned identity should be approved")
			}
			if stored, _ := f.identities.Get(tt.target); !stored.IsApproved {
				t.Error("stored identity should be approved")
			}
			if got := len(f.identities.ApproveCalls); got != tt.wantApprove {
				t.Errorf("expected %d Approve calls, got %d", tt.wantApprove, got)
			}
		})
	}
}

// Once approved, the owner can sign in and reach owner operations.
func TestAdminService_ApprovalOpensGate(t *testing.T) {
	ctx := context.Background()
	f, admin := adminFixture()

	if _, err := f.auth.Login(ctx, "o2@owner.test", "password123"); !errors.Is(err, domain.ErrPendingApproval) {
		t.Fatalf("expected ErrPendingApproval before approval, got %v", err)
	}
	if _, err := f.admin.ApproveOwner(ctx, admin, "o2"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	res, err := f.auth.Login(ctx, "o2@owner.test", "password123")
	if err != nil {
		t.Fatalf("login after approval failed: %v", err)
	}
	session, err := f.auth.Resolve(ctx, res.Token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, err := f.listing.ListMine(ctx, session.Identity); err != nil {
		t.Errorf("approved owner should list own listings, got %v", err)
	}
}

func TestAdminService_DeleteIdentity(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantKind domain.Kind
		wantErr  bool
	}{
		{name: "renter", target: "r1"},
		{name: "owner", target: "o1"},
		{name: "other_admin", target: "a2", wantErr: true, wantKind: domain.KindForbidden},
		{name: "self", target: "a1", wantErr: true, wantKind: domain.KindForbidden},
		{name: "unknown", target: "ghost", wantErr: true, wantKind: domain.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, admin := adminFixture()
			before := f.identities.Count()

			err := f.admin.DeleteIdentity(context.Background(), admin, tt.target)

			if tt.wantErr {
				if got := domain.KindOf(err); err == nil || got != tt.wantKind {
					t.Fatalf("expected %v, got %v", tt.wantKind, err)
				}
				if f.identities.Count() != before {
					t.Error("no identity should be removed on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := f.identities.Get(tt.target); ok {
				t.Error("identity should be removed")
			}
		})
	}
}

func TestAdminService_DeleteKeepsListingsAndBookings(t *testing.T) {
	ctx := context.Background()
	f, admin := adminFixture()
	listing := mocks.CreateTestListing("l1", "o1", 0)
	f.listings.Seed(listing)
	f.bookings.Seed(mocks.CreateTestBooking("b1", listing, "r1", domain.BookingPending))

	if err := f.admin.DeleteIdentity(ctx, admin, "o1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if f.listings.Count() != 1 || f.bookings.Count() != 1 {
		t.Error("listings and bookings must survive identity deletion")
	}
	views, err := f.admin.ListBookings(ctx, admin)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 1 || views[0].Owner != nil || views[0].Renter == nil {
		t.Errorf("deleted owner should render as a nil summary: %+v", views)
	}
}

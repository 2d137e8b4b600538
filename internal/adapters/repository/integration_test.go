package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/repository"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/test/mocks"
)

// These tests need real stores and are skipped unless TEST_MONGO_URI or
// TEST_DB_CONNECTION_STRING is set. Each Mongo test uses a throwaway
// database.

func testMongo(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := repository.ConnectMongo(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("rentals_test_" + uuid.NewString()[:8])
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMongoIdentityRepository(t *testing.T) {
	db := testMongo(t)
	ctx := context.Background()
	repo := repository.NewMongoIdentityRepository(db, repository.NewMongoBreaker())

	owner := mocks.CreateTestOwner("o1", false)
	admin := mocks.CreateTestAdmin("a1")
	for _, i := range []domain.Identity{owner, admin, mocks.CreateTestRenter("r1")} {
		if err := repo.Create(ctx, i); err != nil {
			t.Fatalf("create %s: %v", i.ID, err)
		}
	}

	t.Run("duplicate_email", func(t *testing.T) {
		dup := mocks.CreateTestRenter("r2")
		dup.Email = owner.Email
		if err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Errorf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("find_by_email", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, owner.Email)
		if err != nil || got.ID != "o1" || got.PasswordHash != owner.PasswordHash {
			t.Errorf("unexpected result %+v %v", got, err)
		}
		if _, err := repo.FindByEmail(ctx, "nobody@example.com"); domain.KindOf(err) != domain.KindNotFound {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("approve_owner_only", func(t *testing.T) {
		if err := repo.Approve(ctx, "o1"); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if err := repo.Approve(ctx, "o1"); err != nil {
			t.Errorf("approving twice should succeed, got %v", err)
		}
		got, _ := repo.FindByID(ctx, "o1")
		if !got.IsApproved {
			t.Error("owner should be approved")
		}
		if err := repo.Approve(ctx, "r1"); domain.KindOf(err) != domain.KindNotFound {
			t.Errorf("renters are not approvable, got %v", err)
		}
	})

	t.Run("delete_never_removes_admin", func(t *testing.T) {
		if err := repo.Delete(ctx, "a1"); domain.KindOf(err) != domain.KindNotFound {
			t.Errorf("expected NotFound for admin target, got %v", err)
		}
		if err := repo.Delete(ctx, "r1"); err != nil {
			t.Errorf("delete renter: %v", err)
		}
		found, err := repo.FindByIDs(ctx, []string{"o1", "r1", "a1"})
		if err != nil || len(found) != 2 {
			t.Errorf("expected owner and admin to remain, got %d %v", len(found), err)
		}
	})
}

func TestMongoListingRepository(t *testing.T) {
	db := testMongo(t)
	ctx := context.Background()
	repo := repository.NewMongoListingRepository(db, repository.NewMongoBreaker())

	newer := mocks.CreateTestListing("l-new", "o1", 0)
	newer.Images = []string{"/uploads/b.png", "/uploads/a.png"}
	older := mocks.CreateTestListing("l-old", "o1", time.Hour)
	older.PropertyType = "House"
	older.RentAmount = 2500
	off := mocks.CreateTestListing("l-off", "o2", 0)
	off.IsAvailable = false
	for _, l := range []domain.Listing{older, newer, off} {
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("create %s: %v", l.ID, err)
		}
	}

	t.Run("available_newest_first", func(t *testing.T) {
		got, err := repo.FindAvailable(ctx, domain.ListingFilter{})
		if err != nil || len(got) != 2 || got[0].ID != "l-new" || got[1].ID != "l-old" {
			t.Errorf("unexpected result %+v %v", got, err)
		}
	})

	t.Run("filters", func(t *testing.T) {
		min := 2000.0
		got, _ := repo.FindAvailable(ctx, domain.ListingFilter{PropertyType: "house", MinRent: &min})
		if len(got) != 1 || got[0].ID != "l-old" {
			t.Errorf("unexpected filtered result %+v", got)
		}
		got, _ = repo.FindAvailable(ctx, domain.ListingFilter{Limit: 1, Offset: 1})
		if len(got) != 1 || got[0].ID != "l-old" {
			t.Errorf("unexpected page %+v", got)
		}
	})

	t.Run("image_order_round_trip", func(t *testing.T) {
		got, err := repo.FindByID(ctx, "l-new")
		if err != nil || len(got.Images) != 2 || got.Images[0] != "/uploads/b.png" {
			t.Errorf("image order lost: %+v %v", got, err)
		}
	})

	t.Run("owner_ids", func(t *testing.T) {
		ids, err := repo.IDsByOwner(ctx, "o1")
		if err != nil || len(ids) != 2 {
			t.Errorf("unexpected ids %v %v", ids, err)
		}
	})

	t.Run("update_keeps_owner", func(t *testing.T) {
		changed := off
		changed.OwnerID = "intruder"
		changed.IsAvailable = true
		if err := repo.Update(ctx, changed); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, _ := repo.FindByID(ctx, "l-off")
		if got.OwnerID != "o2" || !got.IsAvailable {
			t.Errorf("unexpected listing after update %+v", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "l-off"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := repo.Delete(ctx, "l-off"); domain.KindOf(err) != domain.KindNotFound {
			t.Errorf("expected NotFound on second delete, got %v", err)
		}
	})
}

func TestMongoBookingRepository_ConditionalUpdate(t *testing.T) {
	db := testMongo(t)
	ctx := context.Background()
	repo := repository.NewMongoBookingRepository(db, repository.NewMongoBreaker())

	booking := mocks.CreateTestBooking("b1", mocks.CreateTestListing("l1", "o1", 0), "r1", domain.BookingPending)
	if err := repo.Create(ctx, booking); err != nil {
		t.Fatalf("create: %v", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, to := range []domain.BookingStatus{domain.BookingApproved, domain.BookingRejected, domain.BookingApproved, domain.BookingRejected} {
		wg.Add(1)
		go func(to domain.BookingStatus) {
			defer wg.Done()
			next := booking
			next.Status = to
			err := repo.UpdateStatus(ctx, next, domain.BookingPending)
			switch {
			case err == nil:
				mu.Lock()
				wins++
				mu.Unlock()
			case !errors.Is(err, domain.ErrInvalidTransition):
				t.Errorf("unexpected error: %v", err)
			}
		}(to)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one winning update, got %d", wins)
	}
	got, err := repo.FindByListings(ctx, []string{"l1"})
	if err != nil || len(got) != 1 || got[0].Status == domain.BookingPending {
		t.Errorf("unexpected stored booking %+v %v", got, err)
	}
}

func TestPostgresEventStore(t *testing.T) {
	dsn := os.Getenv("TEST_DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("TEST_DB_CONNECTION_STRING not set")
	}
	ctx := context.Background()
	db, err := repository.ConnectPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := repository.EnsureEventSchema(ctx, db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	store := repository.NewPostgresEventStore(db)

	booking := mocks.CreateTestBooking(uuid.NewString(), mocks.CreateTestListing("l1", "o1", 0), "r1", domain.BookingPending)
	created := mocks.CreateTestEvent(booking, "", domain.BookingPending)
	approved := mocks.CreateTestEvent(booking, domain.BookingPending, domain.BookingApproved)
	approved.OccurredAt = created.OccurredAt.Add(time.Minute)
	for _, evt := range []domain.BookingStatusEvent{approved, created} {
		evt.ID = uuid.NewString()
		if err := store.Append(ctx, evt); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	history, err := store.History(ctx, booking.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].FromStatus != "" || history[1].ToStatus != domain.BookingApproved {
		t.Errorf("expected oldest-first history, got %+v", history)
	}

	t.Run("same_instant_keeps_insertion_order", func(t *testing.T) {
		booking := mocks.CreateTestBooking(uuid.NewString(), mocks.CreateTestListing("l1", "o1", 0), "r1", domain.BookingPending)
		steps := []domain.BookingStatusEvent{
			mocks.CreateTestEvent(booking, "", domain.BookingPending),
			mocks.CreateTestEvent(booking, domain.BookingPending, domain.BookingApproved),
			mocks.CreateTestEvent(booking, domain.BookingApproved, domain.BookingCompleted),
		}
		for _, evt := range steps {
			evt.ID = uuid.NewString()
			if err := store.Append(ctx, evt); err != nil {
				t.Fatalf("append: %v", err)
			}
		}

		history, err := store.History(ctx, booking.ID)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(history) != len(steps) {
			t.Fatalf("expected %d events, got %d", len(steps), len(history))
		}
		for i, evt := range history {
			if evt.ToStatus != steps[i].ToStatus {
				t.Errorf("position %d: expected %s, got %s", i, steps[i].ToStatus, evt.ToStatus)
			}
		}
	})

	empty, err := store.History(ctx, uuid.NewString())
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty history, got %v %v", empty, err)
	}
}

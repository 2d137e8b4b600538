package repository

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

type renterDetailsDocument struct {
	Name    string `bson:"name"`
	Email   string `bson:"email"`
	Phone   string `bson:"phone,omitempty"`
	Message string `bson:"message,omitempty"`
}

type bookingDocument struct {
	ID            string                `bson:"_id"`
	ListingID     string                `bson:"listing_id"`
	RenterID      string                `bson:"renter_id"`
	OwnerID       string                `bson:"owner_id"`
	RenterDetails renterDetailsDocument `bson:"renter_details"`
	Status        string                `bson:"status"`
	CreatedAt     time.Time             `bson:"created_at"`
	UpdatedAt     time.Time             `bson:"updated_at"`
}

func bookingToDocument(b domain.Booking) bookingDocument {
	return bookingDocument{
		ID:        b.ID,
		ListingID: b.ListingID,
		RenterID:  b.RenterID,
		OwnerID:   b.OwnerID,
		RenterDetails: renterDetailsDocument{
			Name:    b.RenterDetails.Name,
			Email:   b.RenterDetails.Email,
			Phone:   b.RenterDetails.Phone,
			Message: b.RenterDetails.Message,
		},
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (d bookingDocument) toDomain() domain.Booking {
	return domain.Booking{
		ID:        d.ID,
		ListingID: d.ListingID,
		RenterID:  d.RenterID,
		OwnerID:   d.OwnerID,
		RenterDetails: domain.RenterDetails{
			Name:    d.RenterDetails.Name,
			Email:   d.RenterDetails.Email,
			Phone:   d.RenterDetails.Phone,
			Message: d.RenterDetails.Message,
		},
		Status:    domain.BookingStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type MongoBookingRepository struct {
	coll *mongo.Collection
	cb   *gobreaker.CircuitBreaker
}

var _ ports.BookingRepository = (*MongoBookingRepository)(nil)

func NewMongoBookingRepository(db *mongo.Database, cb *gobreaker.CircuitBreaker) *MongoBookingRepository {
	return &MongoBookingRepository{coll: db.Collection(bookingsCollection), cb: cb}
}

func (r *MongoBookingRepository) Create(ctx context.Context, booking domain.Booking) error {
	_, err := guarded(r.cb, func() (*mongo.InsertOneResult, error) {
		return r.coll.InsertOne(ctx, bookingToDocument(booking))
	})
	return translate(err, "booking")
}

func (r *MongoBookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	doc, err := guarded(r.cb, func() (bookingDocument, error) {
		var doc bookingDocument
		err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
		return doc, err
	})
	if err != nil {
		return nil, translate(err, "booking")
	}
	booking := doc.toDomain()
	return &booking, nil
}

func (r *MongoBookingRepository) FindByRenter(ctx context.Context, renterID string) ([]domain.Booking, error) {
	return r.find(ctx, bson.M{"renter_id": renterID})
}

func (r *MongoBookingRepository) FindByListings(ctx context.Context, listingIDs []string) ([]domain.Booking, error) {
	if len(listingIDs) == 0 {
		return []domain.Booking{}, nil
	}
	return r.find(ctx, bson.M{"listing_id": bson.M{"$in": listingIDs}})
}

func (r *MongoBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.find(ctx, bson.M{})
}

// UpdateStatus is a compare-and-set on the status field. Zero matches
// means another writer moved the booking first.
func (r *MongoBookingRepository) UpdateStatus(ctx context.Context, booking domain.Booking, from domain.BookingStatus) error {
	res, err := guarded(r.cb, func() (*mongo.UpdateResult, error) {
		return r.coll.UpdateOne(ctx,
			bson.M{"_id": booking.ID, "status": string(from)},
			bson.M{"$set": bson.M{
				"status":     string(booking.Status),
				"updated_at": booking.UpdatedAt,
			}},
		)
	})
	if err != nil {
		return translate(err, "booking")
	}
	if res.MatchedCount == 0 {
		return domain.WrapError(domain.KindInvalidTransition, domain.ErrInvalidTransition,
			"booking is no longer %s", from)
	}
	return nil
}

func (r *MongoBookingRepository) find(ctx context.Context, filter bson.M) ([]domain.Booking, error) {
	docs, err := guarded(r.cb, func() ([]bookingDocument, error) {
		return findAll[bookingDocument](ctx, r.coll, filter, newestFirst)
	})
	if err != nil {
		return nil, translate(err, "booking")
	}
	out := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

type listingDocument struct {
	ID           string    `bson:"_id"`
	OwnerID      string    `bson:"owner_id"`
	PropertyType string    `bson:"property_type"`
	AdType       string    `bson:"ad_type"`
	Address      string    `bson:"address"`
	Description  string    `bson:"description"`
	Images       []string  `bson:"images"`
	RentAmount   float64   `bson:"rent_amount"`
	IsAvailable  bool      `bson:"is_available"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func listingToDocument(l domain.Listing) listingDocument {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return listingDocument{
		ID:           l.ID,
		OwnerID:      l.OwnerID,
		PropertyType: l.PropertyType,
		AdType:       string(l.AdType),
		Address:      l.Address,
		Description:  l.Description,
		Images:       images,
		RentAmount:   l.RentAmount,
		IsAvailable:  l.IsAvailable,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func (d listingDocument) toDomain() domain.Listing {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return domain.Listing{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		PropertyType: d.PropertyType,
		AdType:       domain.AdType(d.AdType),
		Address:      d.Address,
		Description:  d.Description,
		Images:       images,
		RentAmount:   d.RentAmount,
		IsAvailable:  d.IsAvailable,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type MongoListingRepository struct {
	coll *mongo.Collection
	cb   *gobreaker.CircuitBreaker
}

var _ ports.ListingRepository = (*MongoListingRepository)(nil)

func NewMongoListingRepository(db *mongo.Database, cb *gobreaker.CircuitBreaker) *MongoListingRepository {
	return &MongoListingRepository{coll: db.Collection(listingsCollection), cb: cb}
}

func (r *MongoListingRepository) Create(ctx context.Context, listing domain.Listing) error {
	_, err := guarded(r.cb, func() (*mongo.InsertOneResult, error) {
		return r.coll.InsertOne(ctx, listingToDocument(listing))
	})
	return translate(err, "listing")
}

func (r *MongoListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	doc, err := guarded(r.cb, func() (listingDocument, error) {
		var doc listingDocument
		err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
		return doc, err
	})
	if err != nil {
		return nil, translate(err, "listing")
	}
	listing := doc.toDomain()
	return &listing, nil
}

func (r *MongoListingRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return []domain.Listing{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, newestFirst)
}

// FindAvailable applies the public search filter. Property type matches
// case-insensitively.
func (r *MongoListingRepository) FindAvailable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	filter := bson.M{"is_available": true}
	if f.PropertyType != "" {
		filter["property_type"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.PropertyType) + "$", "$options": "i"}
	}
	if f.AdType != "" {
		filter["ad_type"] = string(f.AdType)
	}
	rent := bson.M{}
	if f.MinRent != nil {
		rent["$gte"] = *f.MinRent
	}
	if f.MaxRent != nil {
		rent["$lte"] = *f.MaxRent
	}
	if len(rent) > 0 {
		filter["rent_amount"] = rent
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	return r.find(ctx, filter, opts)
}

func (r *MongoListingRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID}, newestFirst)
}

func (r *MongoListingRepository) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	type idOnly struct {
		ID string `bson:"_id"`
	}
	docs, err := guarded(r.cb, func() ([]idOnly, error) {
		return findAll[idOnly](ctx, r.coll, bson.M{"owner_id": ownerID},
			options.Find().SetProjection(bson.M{"_id": 1}))
	})
	if err != nil {
		return nil, translate(err, "listing")
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *MongoListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	return r.find(ctx, bson.M{}, newestFirst)
}

// Update replaces the mutable fields. owner_id and created_at are never
// written after insert.
func (r *MongoListingRepository) Update(ctx context.Context, listing domain.Listing) error {
	doc := listingToDocument(listing)
	res, err := guarded(r.cb, func() (*mongo.UpdateResult, error) {
		return r.coll.UpdateOne(ctx, bson.M{"_id": listing.ID}, bson.M{"$set": bson.M{
			"property_type": doc.PropertyType,
			"ad_type":       doc.AdType,
			"address":       doc.Address,
			"description":   doc.Description,
			"images":        doc.Images,
			"rent_amount":   doc.RentAmount,
			"is_available":  doc.IsAvailable,
			"updated_at":    doc.UpdatedAt,
		}})
	})
	if err != nil {
		return translate(err, "listing")
	}
	if res.MatchedCount == 0 {
		return domain.NewError(domain.KindNotFound, "listing not found")
	}
	return nil
}

func (r *MongoListingRepository) Delete(ctx context.Context, id string) error {
	res, err := guarded(r.cb, func() (*mongo.DeleteResult, error) {
		return r.coll.DeleteOne(ctx, bson.M{"_id": id})
	})
	if err != nil {
		return translate(err, "listing")
	}
	if res.DeletedCount == 0 {
		return domain.NewError(domain.KindNotFound, "listing not found")
	}
	return nil
}

func (r *MongoListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Listing, error) {
	docs, err := guarded(r.cb, func() ([]listingDocument, error) {
		return findAll[listingDocument](ctx, r.coll, filter, opts)
	})
	if err != nil {
		return nil, translate(err, "listing")
	}
	out := make([]domain.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

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

type identityDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	IsApproved   bool      `bson:"is_approved"`
	CreatedAt    time.Time `bson:"created_at"`
}

func identityToDocument(i domain.Identity) identityDocument {
	return identityDocument{
		ID:           i.ID,
		Name:         i.Name,
		Email:        domain.NormalizeEmail(i.Email),
		PasswordHash: i.PasswordHash,
		Role:         string(i.Role),
		IsApproved:   i.IsApproved,
		CreatedAt:    i.CreatedAt,
	}
}

func (d identityDocument) toDomain() domain.Identity {
	return domain.Identity{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		IsApproved:   d.IsApproved,
		CreatedAt:    d.CreatedAt,
	}
}

type MongoIdentityRepository struct {
	coll *mongo.Collection
	cb   *gobreaker.CircuitBreaker
}

var _ ports.IdentityRepository = (*MongoIdentityRepository)(nil)

func NewMongoIdentityRepository(db *mongo.Database, cb *gobreaker.CircuitBreaker) *MongoIdentityRepository {
	return &MongoIdentityRepository{coll: db.Collection(identitiesCollection), cb: cb}
}

func (r *MongoIdentityRepository) Create(ctx context.Context, identity domain.Identity) error {
	_, err := guarded(r.cb, func() (struct{}, error) {
		_, err := r.coll.InsertOne(ctx, identityToDocument(identity))
		if mongo.IsDuplicateKeyError(err) {
			return struct{}{}, domain.ErrDuplicateEmail
		}
		return struct{}{}, err
	})
	return translate(err, "identity")
}

func (r *MongoIdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *MongoIdentityRepository) findOne(ctx context.Context, filter bson.M) (*domain.Identity, error) {
	doc, err := guarded(r.cb, func() (identityDocument, error) {
		var doc identityDocument
		err := r.coll.FindOne(ctx, filter).Decode(&doc)
		return doc, err
	})
	if err != nil {
		return nil, translate(err, "identity")
	}
	identity := doc.toDomain()
	return &identity, nil
}

func (r *MongoIdentityRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Identity, error) {
	if len(ids) == 0 {
		return []domain.Identity{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoIdentityRepository) List(ctx context.Context) ([]domain.Identity, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoIdentityRepository) find(ctx context.Context, filter bson.M) ([]domain.Identity, error) {
	docs, err := guarded(r.cb, func() ([]identityDocument, error) {
		return findAll[identityDocument](ctx, r.coll, filter, newestFirst)
	})
	if err != nil {
		return nil, translate(err, "identity")
	}
	out := make([]domain.Identity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Approve only ever sets is_approved to true, and only on owners.
func (r *MongoIdentityRepository) Approve(ctx context.Context, id string) error {
	res, err := guarded(r.cb, func() (*mongo.UpdateResult, error) {
		return r.coll.UpdateOne(ctx,
			bson.M{"_id": id, "role": string(domain.RoleOwner)},
			bson.M{"$set": bson.M{"is_approved": true}},
		)
	})
	if err != nil {
		return translate(err, "identity")
	}
	if res.MatchedCount == 0 {
		return domain.NewError(domain.KindNotFound, "owner not found")
	}
	return nil
}

func (r *MongoIdentityRepository) Delete(ctx context.Context, id string) error {
	res, err := guarded(r.cb, func() (*mongo.DeleteResult, error) {
		return r.coll.DeleteOne(ctx, bson.M{"_id": id, "role": bson.M{"$ne": string(domain.RoleAdmin)}})
	})
	if err != nil {
		return translate(err, "identity")
	}
	if res.DeletedCount == 0 {
		return domain.NewError(domain.KindNotFound, "identity not found")
	}
	return nil
}

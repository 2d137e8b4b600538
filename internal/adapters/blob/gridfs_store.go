package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AchilleasB/rentals/marketplace-service/internal/config"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

const bucketName = "listing_images"

// GridFSStore keeps listing images in a GridFS bucket, keyed by filename.
type GridFSStore struct {
	db *mongo.Database
	cb *gobreaker.CircuitBreaker
}

var _ ports.BlobStore = (*GridFSStore)(nil)

func NewGridFSStore(db *mongo.Database) *GridFSStore {
	return &GridFSStore{
		db: db,
		cb: config.NewCircuitBreaker(config.BreakerGridFS, gridfs.ErrFileNotFound),
	}
}

func (s *GridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	bucket, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := bucket.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return bucket, nil
}

func (s *GridFSStore) Put(ctx context.Context, name, contentType string, content io.Reader) error {
	_, err := s.cb.Execute(func() (any, error) {
		bucket, err := s.bucket(ctx)
		if err != nil {
			return nil, err
		}
		opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
		return bucket.UploadFromStream(name, content, opts)
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

// Open returns a stream over the stored image. The caller closes it.
func (s *GridFSStore) Open(ctx context.Context, name string) (*ports.Blob, error) {
	res, err := s.cb.Execute(func() (any, error) {
		bucket, err := s.bucket(ctx)
		if err != nil {
			return nil, err
		}
		return bucket.OpenDownloadStreamByName(name)
	})
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "image not found")
		}
		return nil, domain.Upstream(err, "failed to open image")
	}

	stream := res.(*gridfs.DownloadStream)
	file := stream.GetFile()
	contentType := "application/octet-stream"
	if v, err := file.Metadata.LookupErr("contentType"); err == nil {
		if ct, ok := v.StringValueOK(); ok && ct != "" {
			contentType = ct
		}
	}
	return &ports.Blob{
		Name:        name,
		ContentType: contentType,
		Size:        file.Length,
		Content:     stream,
	}, nil
}

// Delete removes every revision stored under name. A missing file is not
// an error.
func (s *GridFSStore) Delete(ctx context.Context, name string) error {
	_, err := s.cb.Execute(func() (any, error) {
		bucket, err := s.bucket(ctx)
		if err != nil {
			return nil, err
		}
		cursor, err := bucket.Find(bson.M{"filename": name})
		if err != nil {
			return nil, err
		}
		var files []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.All(ctx, &files); err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := bucket.Delete(f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

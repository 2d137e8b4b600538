package ports

import (
	"context"
	"io"
	"time"
)

// PasswordHasher is the one-way credential verifier.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns false for a wrong password and an error only when
	// digest itself is malformed.
	Verify(plaintext, digest string) (bool, error)
}

type TokenClaims struct {
	Subject   string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer issues and verifies signed session tokens.
type TokenIssuer interface {
	Issue(identityID string) (string, TokenClaims, error)
	Verify(token string) (TokenClaims, error)
}

// TokenRevocations remembers tokens that were logged out before expiry.
type TokenRevocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Blob is a stored image and its content.
type Blob struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.ReadCloser
}

// BlobStore keeps listing images keyed by generated filename.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, content io.Reader) error
	Open(ctx context.Context, name string) (*Blob, error)
	Delete(ctx context.Context, name string) error
}

// ImageUpload is one image submitted with a new listing. Size is the
// size declared by the transport, zero when unknown.
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

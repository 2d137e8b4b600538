package security

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AchilleasB/rentals/marketplace-service/internal/clock"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

const tokenIssuer = "rentals-marketplace"

var _ ports.TokenIssuer = (*JWTTokens)(nil)

// JWTTokens signs RS256 session tokens. The subject is the identity id;
// roles are never embedded and are re-read on every request.
type JWTTokens struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	ttl        time.Duration
	clock      clock.Clock
}

func NewJWTTokens(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, ttl time.Duration, clk clock.Clock) *JWTTokens {
	return &JWTTokens{
		privateKey: privateKey,
		publicKey:  publicKey,
		ttl:        ttl,
		clock:      clk,
	}
}

func (t *JWTTokens) Issue(identityID string) (string, ports.TokenClaims, error) {
	if t.privateKey == nil {
		return "", ports.TokenClaims{}, errors.New("no signing key configured")
	}
	now := t.clock.Now().Truncate(time.Second)
	claims := ports.TokenClaims{
		Subject:   identityID,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(t.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   claims.Subject,
		ID:        claims.TokenID,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})
	signed, err := token.SignedString(t.privateKey)
	if err != nil {
		return "", ports.TokenClaims{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

func (t *JWTTokens) Verify(tokenString string) (ports.TokenClaims, error) {
	var registered jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &registered,
		func(token *jwt.Token) (any, error) {
			return t.publicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		return ports.TokenClaims{}, err
	}
	if registered.Subject == "" {
		return ports.TokenClaims{}, errors.New("token has no subject")
	}

	claims := ports.TokenClaims{
		Subject: registered.Subject,
		TokenID: registered.ID,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

var _ ports.AuthService = (*AuthService)(nil)

type AuthService struct {
	identities  ports.IdentityRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	revocations ports.TokenRevocations
	logger      *slog.Logger
}

// NewAuthService wires login and session resolution. revocations may be
// nil, in which case logout is a no-op on the server side.
func NewAuthService(
	identities ports.IdentityRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	revocations ports.TokenRevocations,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		identities:  identities,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
	}
}

// Login verifies the credential and issues a session token. Unapproved
// Owners are turned away with PendingApproval even with a correct
// password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "email and password are required")
	}

	identity, err := s.identities.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, identity.PasswordHash)
	if err != nil {
		s.logger.Error("stored credential digest is malformed", "identity_id", identity.ID, "error", err)
		return nil, domain.WrapError(domain.KindInternal, err, "credential verification failed")
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if identity.Role == domain.RoleOwner && !identity.IsApproved {
		return nil, domain.ErrPendingApproval
	}

	token, claims, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return nil, domain.WrapError(domain.KindInternal, err, "failed to issue session token")
	}
	return &ports.AuthResult{Identity: identity.Public(), Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// Resolve turns a bearer token into a session. The identity is re-read
// on every call because the subject may have been deleted since the
// token was issued.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, domain.Upstream(err, "failed to check token revocation")
		}
		if revoked {
			return nil, domain.ErrInvalidToken
		}
	}

	identity, err := s.identities.FindByID(ctx, claims.Subject)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.ErrUnknownSubject
		}
		return nil, err
	}

	return &domain.Session{
		Identity:  *identity,
		Token:     token,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Logout revokes the session's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if s.revocations == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return domain.Upstream(err, "failed to revoke token")
	}
	s.logger.Info("session revoked", "identity_id", session.Identity.ID, "token_id", session.TokenID)
	return nil
}

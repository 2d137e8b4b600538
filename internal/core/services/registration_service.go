package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/AchilleasB/rentals/marketplace-service/internal/clock"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

var _ ports.RegistrationService = (*RegistrationService)(nil)

type RegistrationService struct {
	identities ports.IdentityRepository
	hasher     ports.PasswordHasher
	tokens     ports.TokenIssuer
	clock      clock.Clock
}

func NewRegistrationService(
	identities ports.IdentityRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	clk clock.Clock,
) *RegistrationService {
	return &RegistrationService{
		identities: identities,
		hasher:     hasher,
		tokens:     tokens,
		clock:      clk,
	}
}

// Register creates a Renter or Owner account. Owners start unapproved.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "please add all required fields: name, email, password, role")
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleAdmin {
		return nil, domain.NewError(domain.KindInvalidInput, "admin accounts cannot be self-registered")
	}

	identity, err := s.create(ctx, in.Name, in.Email, in.Password, role)
	if err != nil {
		return nil, err
	}

	token, claims, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return nil, domain.WrapError(domain.KindInternal, err, "failed to issue session token")
	}
	return &ports.AuthResult{Identity: identity.Public(), Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// ProvisionAdmin creates an Admin account. It is only reachable from the
// provisioning command, never from the HTTP surface.
func (s *RegistrationService) ProvisionAdmin(ctx context.Context, name, email, password string) (*domain.PublicIdentity, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "name, email and password are required")
	}
	identity, err := s.create(ctx, name, email, password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	public := identity.Public()
	return &public, nil
}

func (s *RegistrationService) create(ctx context.Context, name, email, password string, role domain.Role) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, domain.NewError(domain.KindInvalidInput, "email %q is not a valid address", email)
	}

	existing, err := s.identities.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrDuplicateEmail
	case err != nil && domain.KindOf(err) != domain.KindNotFound:
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	identity := domain.NewIdentity(uuid.NewString(), strings.TrimSpace(name), email, digest, role, s.clock.Now())
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

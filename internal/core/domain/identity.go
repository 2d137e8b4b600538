package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleRenter Role = "Renter"
	RoleOwner  Role = "Owner"
	RoleAdmin  Role = "Admin"
)

// ParseRole accepts the canonical role names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "renter":
		return RoleRenter, nil
	case "owner":
		return RoleOwner, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", NewError(KindInvalidInput, "unsupported role %q", s)
}

type Identity struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsApproved   bool      `json:"isApproved"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewIdentity builds a freshly registered identity. Owners start
// unapproved; every other role is approved from the start.
func NewIdentity(id, name, email, passwordHash string, role Role, now time.Time) Identity {
	return Identity{
		ID:           id,
		Name:         name,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		IsApproved:   role != RoleOwner,
		CreatedAt:    now,
	}
}

// NormalizeEmail is the canonical form used for uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Principal is the closed set of acting identities. Only this package can
// implement it, so every switch over a Principal is exhaustive over
// RenterPrincipal, OwnerPrincipal and AdminPrincipal.
type Principal interface {
	PrincipalID() string
	principal()
}

type RenterPrincipal struct{ ID string }

type OwnerPrincipal struct {
	ID       string
	Approved bool
}

type AdminPrincipal struct{ ID string }

func (p RenterPrincipal) PrincipalID() string { return p.ID }
func (p OwnerPrincipal) PrincipalID() string  { return p.ID }
func (p AdminPrincipal) PrincipalID() string  { return p.ID }

func (RenterPrincipal) principal() {}
func (OwnerPrincipal) principal()  {}
func (AdminPrincipal) principal()  {}

// Principal converts the stored role/approval pair into its variant.
func (i Identity) Principal() (Principal, error) {
	switch i.Role {
	case RoleRenter:
		return RenterPrincipal{ID: i.ID}, nil
	case RoleOwner:
		return OwnerPrincipal{ID: i.ID, Approved: i.IsApproved}, nil
	case RoleAdmin:
		return AdminPrincipal{ID: i.ID}, nil
	}
	return nil, fmt.Errorf("identity %s has unknown role %q", i.ID, i.Role)
}

// PublicIdentity is the identity as shown to its owner and to admins.
type PublicIdentity struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (i Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:         i.ID,
		Name:       i.Name,
		Email:      i.Email,
		Role:       i.Role,
		IsApproved: i.IsApproved,
		CreatedAt:  i.CreatedAt,
	}
}

// PartySummary is what other parties may learn about an identity.
type PartySummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (i Identity) Summary() PartySummary {
	return PartySummary{Name: i.Name, Email: i.Email}
}

// Session is the per-request authentication context: the resolved
// identity plus the token it was resolved from.
type Session struct {
	Identity  Identity
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/services"
	"github.com/AchilleasB/rentals/marketplace-service/test/mocks"
)

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(*fixture)
		wantErr   error
		wantKind  domain.Kind
		failing   bool
	}{
		{
			name:      "renter_logs_in",
			email:     "r1@renter.test",
			password:  "password123",
			setupMock: func(f *fixture) { f.identities.Seed(mocks.CreateTestRenter("r1")) },
		},
		{
			name:      "email_is_normalized",
			email:     "  R1@Renter.Test ",
			password:  "password123",
			setupMock: func(f *fixture) { f.identities.Seed(mocks.CreateTestRenter("r1")) },
		},
		{
			name:      "approved_owner_logs_in",
			email:     "o1@owner.test",
			password:  "password123",
			setupMock: func(f *fixture) { f.identities.Seed(mocks.CreateTestOwner("o1", true)) },
		},
		{
			name:      "pending_owner_is_gated",
			email:     "o1@owner.test",
			password:  "password123",
			setupMock: func(f *fixture) { f.identities.Seed(mocks.CreateTestOwner("o1", false)) },
			wantErr:   domain.ErrPendingApproval,
			wantKind:  domain.KindPendingApproval,
			failing:   true,
		},
		{
			name:      "pending_owner_wrong_password_reveals_nothing",
			email:     "o1@owner.test",
			password:  "wrong",
			setupMock: func(f *fixture) { f.identities.Seed(mocks.CreateTestOwner("o1", false)) },
			wantErr:   domain.ErrInvalidCredentials,
			wantKind:  domain.KindUnauthenticated,
			failing:   true,
		},
		{
			name:      "wrong_password",
			email:     "r1@renter.test",
			password:  "wrong",
			setupMock: func(f *fixture) { f.identities.Seed(mocks.CreateTestRenter("r1")) },
			wantErr:   domain.ErrInvalidCredentials,
			wantKind:  domain.KindUnauthenticated,
			failing:   true,
		},
		{
			name:      "unknown_email",
			email:     "nobody@example.com",
			password:  "password123",
			setupMock: func(*fixture) {},
			wantErr:   domain.ErrInvalidCredentials,
			wantKind:  domain.KindUnauthenticated,
			failing:   true,
		},
		{
			name:      "missing_fields",
			email:     "",
			password:  "password123",
			setupMock: func(*fixture) {},
			wantKind:  domain.KindInvalidInput,
			failing:   true,
		},
		{
			name:     "malformed_digest_is_internal",
			email:    "r1@renter.test",
			password: "password123",
			setupMock: func(f *fixture) {
				r := mocks.CreateTestRenter("r1")
				r.PasswordHash = "garbage"
				f.identities.Seed(r)
			},
			wantKind: domain.KindInternal,
			failing:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setupMock(f)

			res, err := f.auth.Login(context.Background(), tt.email, tt.password)

			if tt.failing {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				if got := domain.KindOf(err); got != tt.wantKind {
					t.Errorf("expected kind %v, got %v", tt.wantKind, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Token == "" || !res.ExpiresAt.Equal(mocks.Epoch.Add(tokenTTL)) {
				t.Errorf("unexpected auth result %+v", res)
			}
		})
	}
}

func TestAuthService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("valid_token_resolves_current_identity", func(t *testing.T) {
		f := newFixture()
		f.identities.Seed(mocks.CreateTestOwner("o1", true))
		res, err := f.auth.Login(ctx, "o1@owner.test", "password123")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		session, err := f.auth.Resolve(ctx, res.Token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.Identity.ID != "o1" || session.Token != res.Token || session.TokenID == "" {
			t.Errorf("unexpected session %+v", session)
		}
	})

	t.Run("missing_token", func(t *testing.T) {
		f := newFixture()
		if _, err := f.auth.Resolve(ctx, ""); !errors.Is(err, domain.ErrMissingToken) {
			t.Errorf("expected ErrMissingToken, got %v", err)
		}
	})

	t.Run("forged_token", func(t *testing.T) {
		f := newFixture()
		_, err := f.auth.Resolve(ctx, "not-a-token")
		if !errors.Is(err, domain.ErrInvalidToken) || domain.KindOf(err) != domain.KindUnauthenticated {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired_token", func(t *testing.T) {
		f := newFixture()
		f.identities.Seed(mocks.CreateTestRenter("r1"))
		res, _ := f.auth.Login(ctx, "r1@renter.test", "password123")
		f.clock.Advance(tokenTTL + time.Second)

		if _, err := f.auth.Resolve(ctx, res.Token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("deleted_subject", func(t *testing.T) {
		f := newFixture()
		f.identities.Seed(mocks.CreateTestRenter("r1"))
		res, _ := f.auth.Login(ctx, "r1@renter.test", "password123")
		if err := f.identities.Delete(ctx, "r1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		if _, err := f.auth.Resolve(ctx, res.Token); !errors.Is(err, domain.ErrUnknownSubject) {
			t.Errorf("expected ErrUnknownSubject, got %v", err)
		}
	})

	t.Run("revocation_store_down_is_upstream", func(t *testing.T) {
		f := newFixture()
		f.identities.Seed(mocks.CreateTestRenter("r1"))
		res, _ := f.auth.Login(ctx, "r1@renter.test", "password123")
		f.revocations.IsRevokedError = errors.New("connection refused")

		if _, err := f.auth.Resolve(ctx, res.Token); domain.KindOf(err) != domain.KindUpstreamFailure {
			t.Errorf("expected UpstreamFailure, got %v", err)
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.identities.Seed(mocks.CreateTestRenter("r1"))
	res, _ := f.auth.Login(ctx, "r1@renter.test", "password123")
	session, err := f.auth.Resolve(ctx, res.Token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if err := f.auth.Logout(ctx, *session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.auth.Resolve(ctx, res.Token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("revoked token should no longer resolve, got %v", err)
	}

	// A second login issues a fresh token that still works.
	again, _ := f.auth.Login(ctx, "r1@renter.test", "password123")
	if _, err := f.auth.Resolve(ctx, again.Token); err != nil {
		t.Errorf("new token should resolve: %v", err)
	}
}

func TestAuthService_LogoutWithoutRevocationStore(t *testing.T) {
	f := newFixture()
	auth := services.NewAuthService(f.identities, f.hasher, f.tokens, nil, discardLogger())
	if err := auth.Logout(context.Background(), domain.Session{TokenID: "jti"}); err != nil {
		t.Errorf("logout without a revocation store should succeed, got %v", err)
	}
}

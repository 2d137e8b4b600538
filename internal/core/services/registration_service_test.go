package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
	"github.com/AchilleasB/rentals/marketplace-service/test/mocks"
)

func TestRegistrationService_Register(t *testing.T) {
	tests := []struct {
		name         string
		input        ports.RegisterInput
		setupMock    func(*fixture)
		wantKind     domain.Kind
		wantErr      bool
		wantApproved bool
	}{
		{
			name:         "renter_is_approved_immediately",
			input:        ports.RegisterInput{Name: "Rita", Email: "rita@example.com", Password: "secret", Role: "Renter"},
			setupMock:    func(*fixture) {},
			wantApproved: true,
		},
		{
			name:         "owner_starts_unapproved",
			input:        ports.RegisterInput{Name: "Otto", Email: "otto@example.com", Password: "secret", Role: "owner"},
			setupMock:    func(*fixture) {},
			wantApproved: false,
		},
		{
			name:      "admin_cannot_self_register",
			input:     ports.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret", Role: "Admin"},
			setupMock: func(*fixture) {},
			wantErr:   true,
			wantKind:  domain.KindInvalidInput,
		},
		{
			name:      "missing_password",
			input:     ports.RegisterInput{Name: "Rita", Email: "rita@example.com", Role: "Renter"},
			setupMock: func(*fixture) {},
			wantErr:   true,
			wantKind:  domain.KindInvalidInput,
		},
		{
			name:      "unknown_role",
			input:     ports.RegisterInput{Name: "Rita", Email: "rita@example.com", Password: "x", Role: "Landlord"},
			setupMock: func(*fixture) {},
			wantErr:   true,
			wantKind:  domain.KindInvalidInput,
		},
		{
			name:      "invalid_email",
			input:     ports.RegisterInput{Name: "Rita", Email: "rita.example.com", Password: "x", Role: "Renter"},
			setupMock: func(*fixture) {},
			wantErr:   true,
			wantKind:  domain.KindInvalidInput,
		},
		{
			name:  "duplicate_email_case_insensitive",
			input: ports.RegisterInput{Name: "Rita", Email: "R1@Renter.TEST", Password: "x", Role: "Renter"},
			setupMock: func(f *fixture) {
				f.identities.Seed(mocks.CreateTestRenter("r1"))
			},
			wantErr:  true,
			wantKind: domain.KindConflict,
		},
		{
			name:  "store_failure_is_upstream",
			input: ports.RegisterInput{Name: "Rita", Email: "rita@example.com", Password: "x", Role: "Renter"},
			setupMock: func(f *fixture) {
				f.identities.FindByEmailError = domain.Upstream(context.DeadlineExceeded, "document store failure")
			},
			wantErr:  true,
			wantKind: domain.KindUpstreamFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ARRANGE
			f := newFixture()
			tt.setupMock(f)
			before := f.identities.Count()

			// ACT
			res, err := f.registration.Register(context.Background(), tt.input)

			// ASSERT
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if got := domain.KindOf(err); got != tt.wantKind {
					t.Errorf("expected kind %v, got %v (%v)", tt.wantKind, got, err)
				}
				if f.identities.Count() != before {
					t.Error("no identity should be stored on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Token == "" {
				t.Error("expected a session token")
			}
			if res.Identity.IsApproved != tt.wantApproved {
				t.Errorf("expected IsApproved=%v, got %v", tt.wantApproved, res.Identity.IsApproved)
			}
			stored, ok := f.identities.Get(res.Identity.ID)
			if !ok {
				t.Fatal("identity was not stored")
			}
			if stored.PasswordHash != mocks.Digest(tt.input.Password) {
				t.Error("password must be stored as a digest")
			}
		})
	}
}

func TestRegistrationService_DuplicateLeavesFirstUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.registration.Register(ctx, ports.RegisterInput{Name: "A", Email: "same@example.com", Password: "one", Role: "Renter"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = f.registration.Register(ctx, ports.RegisterInput{Name: "B", Email: "same@example.com", Password: "two", Role: "Owner"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	stored, _ := f.identities.Get(first.Identity.ID)
	if stored.Name != "A" || stored.Role != domain.RoleRenter || f.identities.Count() != 1 {
		t.Errorf("first identity changed: %+v", stored)
	}
}

func TestRegistrationService_ProvisionAdmin(t *testing.T) {
	f := newFixture()

	admin, err := f.registration.ProvisionAdmin(context.Background(), "Ada", "Ada@Example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.Role != domain.RoleAdmin || !admin.IsApproved || admin.Email != "ada@example.com" {
		t.Errorf("unexpected admin %+v", admin)
	}

	if _, err := f.registration.ProvisionAdmin(context.Background(), "", "x@y.z", "secret"); domain.KindOf(err) != domain.KindInvalidInput {
		t.Errorf("expected InvalidInput for missing name, got %v", err)
	}
}

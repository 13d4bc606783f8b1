package auth

import (
	"context"
	"errors"
	"testing"
)

type recordingProfiles struct {
	created []string
}

func (r *recordingProfiles) Create(ctx context.Context, userID, fullName, email string) error {
	r.created = append(r.created, userID)
	return nil
}

func TestPasswordIsHashedBeforeSaving(t *testing.T) {
	repo := NewInMemoryUserRepository()
	service := NewService(repo, nil)

	password := "Password@123"

	_, err := service.Register(context.Background(), "Test User", "test@example.com", password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := repo.users["test@example.com"]
	if user == nil {
		t.Fatalf("user not found")
	}

	if user.Password == password {
		t.Fatalf("password was stored in plain text")
	}
}

func TestRegisterValidation(t *testing.T) {
	service := NewService(NewInMemoryUserRepository(), nil)
	ctx := context.Background()

	cases := []struct {
		name, email, password string
		want                  error
	}{
		{"", "a@example.com", "Password@123", ErrMissingFields},
		{"A", "not-an-email", "Password@123", ErrInvalidEmail},
		{"A", "a@example.com", "short", ErrWeakPassword},
	}

	for _, tc := range cases {
		if _, err := service.Register(ctx, tc.name, tc.email, tc.password); !errors.Is(err, tc.want) {
			t.Errorf("Register(%q, %q): expected %v, got %v", tc.name, tc.email, tc.want, err)
		}
	}
}

func TestRegisterCreatesProfileAndAssignsRole(t *testing.T) {
	profiles := &recordingProfiles{}
	service := NewService(NewInMemoryUserRepository(), profiles, "Admin@Canteen.example")
	ctx := context.Background()

	customer, err := service.Register(ctx, "Ravi", "ravi@example.com", "Password@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.Role != RoleCustomer {
		t.Fatalf("expected role %s, got %s", RoleCustomer, customer.Role)
	}

	admin, err := service.Register(ctx, "Canteen", " admin@canteen.example ", "Password@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.Role != RoleAdmin {
		t.Fatalf("expected role %s, got %s", RoleAdmin, admin.Role)
	}

	if len(profiles.created) != 2 || profiles.created[0] != customer.ID {
		t.Fatalf("expected a profile per account, got %v", profiles.created)
	}
}

func TestLogin(t *testing.T) {
	service := NewService(NewInMemoryUserRepository(), nil)
	ctx := context.Background()

	registered, err := service.Register(ctx, "Meera", "meera@example.com", "Password@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, err := service.Login(ctx, "MEERA@example.com", "Password@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}

	if _, err := service.Login(ctx, "meera@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := service.Login(ctx, "nobody@example.com", "Password@123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

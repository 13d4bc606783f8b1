package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// ProfileCreator makes the empty profile for a new account.
type ProfileCreator interface {
	Create(ctx context.Context, userID, fullName, email string) error
}

type Service struct {
	repo        UserRepository
	profiles    ProfileCreator
	adminEmails map[string]bool
}

// NewService builds the auth service. profiles may be nil. Accounts
// registered with one of adminEmails get the ADMIN role.
func NewService(repo UserRepository, profiles ProfileCreator, adminEmails ...string) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &Service{repo: repo, profiles: profiles, adminEmails: admins}
}

// REGISTER
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := RoleCustomer
	if s.adminEmails[email] {
		role = RoleAdmin
	}

	user := &User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	if s.profiles != nil {
		if err := s.profiles.Create(ctx, user.ID, user.Name, user.Email); err != nil {
			slog.Error("profile creation failed", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

// LOGIN
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword(
		[]byte(user.Password),
		[]byte(password),
	)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

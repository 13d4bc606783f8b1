package profile

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidLatitude  = errors.New("lat must be between -90 and 90")
	ErrInvalidLongitude = errors.New("lng must be between -180 and 180")
	ErrAddressRequired  = errors.New("address is required")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create makes the empty profile that goes with a new account.
func (s *Service) Create(ctx context.Context, userID, fullName, email string) error {
	return s.repo.Create(ctx, &Profile{ID: userID, FullName: fullName, Email: email})
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.Get(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID string, u Update) (*Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if u.FullName != nil {
		p.FullName = strings.TrimSpace(*u.FullName)
	}
	if u.Phone != nil {
		p.Phone = strings.TrimSpace(*u.Phone)
	}
	if u.Address != nil {
		p.Address = strings.TrimSpace(*u.Address)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetLocation saves a delivery location. The address is stored as given;
// nothing is geocoded.
func (s *Service) SetLocation(ctx context.Context, userID string, loc Location) (*Profile, error) {
	loc.Address = strings.TrimSpace(loc.Address)
	if loc.Address == "" {
		return nil, ErrAddressRequired
	}
	if loc.Lat < -90 || loc.Lat > 90 {
		return nil, ErrInvalidLatitude
	}
	if loc.Lng < -180 || loc.Lng > 180 {
		return nil, ErrInvalidLongitude
	}

	if err := s.repo.SetLocation(ctx, userID, &loc); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) ClearLocation(ctx context.Context, userID string) error {
	return s.repo.SetLocation(ctx, userID, nil)
}

// DeliveryAddress is the default address for userID's orders, or "" if none is saved.
func (s *Service) DeliveryAddress(ctx context.Context, userID string) (string, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p.DeliveryAddress(), nil
}

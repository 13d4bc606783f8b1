package profile

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("profile not found")

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	Get(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	SetLocation(ctx context.Context, id string, loc *Location) error
}

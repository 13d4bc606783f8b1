package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"upahar/internal/db"
)

type PostgresRepository struct {
	db db.Pool
}

func NewPostgresRepository(pool db.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Create(ctx context.Context, p *Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO profiles (id, full_name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, p.ID, p.FullName, p.Email, p.Phone, p.Address, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	var fullName, email, phone, addr, locAddress *string
	var lat, lng *float64

	err := r.db.QueryRow(ctx, `
		SELECT id, full_name, email, phone, address,
		       location_address, location_lat, location_lng,
		       created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id).Scan(
		&p.ID, &fullName, &email, &phone, &addr,
		&locAddress, &lat, &lng,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p.FullName = deref(fullName)
	p.Email = deref(email)
	p.Phone = deref(phone)
	p.Address = deref(addr)
	if lat != nil && lng != nil {
		p.Location = &Location{Address: deref(locAddress), Lat: *lat, Lng: *lng}
	}

	return &p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *Profile) error {
	p.UpdatedAt = time.Now().UTC()

	cmd, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET full_name = $2,
		    phone = $3,
		    address = $4,
		    updated_at = $5
		WHERE id = $1
	`, p.ID, p.FullName, p.Phone, p.Address, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLocation saves loc, or clears the saved location when loc is nil.
func (r *PostgresRepository) SetLocation(ctx context.Context, id string, loc *Location) error {
	var (
		address  *string
		lat, lng *float64
	)
	if loc != nil {
		address, lat, lng = &loc.Address, &loc.Lat, &loc.Lng
	}

	cmd, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET location_address = $2,
		    location_lat = $3,
		    location_lng = $4,
		    updated_at = now()
		WHERE id = $1
	`, id, address, lat, lng)
	if err != nil {
		return fmt.Errorf("set location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

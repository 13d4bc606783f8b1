package profile

import (
	"context"
	"sync"
	"time"
)

type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{profiles: make(map[string]Profile)}
}

var _ Repository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) Create(ctx context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[p.ID]; ok {
		return nil
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.profiles[p.ID] = *p
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Location != nil {
		loc := *p.Location
		p.Location = &loc
	}
	return &p, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.profiles[p.ID]
	if !ok {
		return ErrNotFound
	}
	cur.FullName, cur.Phone, cur.Address = p.FullName, p.Phone, p.Address
	cur.UpdatedAt = time.Now().UTC()
	p.UpdatedAt = cur.UpdatedAt
	r.profiles[p.ID] = cur
	return nil
}

func (r *InMemoryRepository) SetLocation(ctx context.Context, id string, loc *Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.profiles[id]
	if !ok {
		return ErrNotFound
	}
	if loc != nil {
		l := *loc
		cur.Location = &l
	} else {
		cur.Location = nil
	}
	cur.UpdatedAt = time.Now().UTC()
	r.profiles[id] = cur
	return nil
}

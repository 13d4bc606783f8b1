package orders

import (
	"context"
	"sort"
	"sync"
	"time"
)

type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{orders: make(map[string]Order)}
}

var _ Repository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) Create(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = StatusPending
	}
	r.orders[o.ID] = clone(*o)
	return nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string, status Status) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Order{}
	for _, o := range r.orders {
		if o.UserID != userID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, clone(o))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) GetForUser(ctx context.Context, userID, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok || o.UserID != userID {
		return nil, ErrNotFound
	}
	o = clone(o)
	return &o, nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o

	o = clone(o)
	return &o, nil
}

func clone(o Order) Order {
	o.Items = append([]Item(nil), o.Items...)
	return o
}

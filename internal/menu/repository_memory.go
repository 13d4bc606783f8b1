package menu

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryRepository is a catalog kept in a map, for tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]MenuItem
}

func NewInMemoryRepository(seed ...MenuItem) *InMemoryRepository {
	r := &InMemoryRepository{items: make(map[string]MenuItem)}
	for _, item := range seed {
		r.items[item.ID] = item
	}
	return r
}

var _ Repository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) ListAvailable(ctx context.Context, filter Filter) ([]MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	items := []MenuItem{}
	for _, item := range r.items {
		if !item.Available {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Vegetarian != nil && item.Vegetarian != *filter.Vegetarian {
			continue
		}
		if filter.Popular != nil && item.Popular != *filter.Popular {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(item.Name), q) &&
			!strings.Contains(strings.ToLower(item.Description), q) {
			continue
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r *InMemoryRepository) ListCategories(ctx context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[string]int{}
	for _, item := range r.items {
		if item.Available {
			counts[item.Category]++
		}
	}

	categories := make([]Category, 0, len(counts))
	for name, n := range counts {
		categories = append(categories, Category{Name: name, ItemCount: n})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, item *MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = *item
	return nil
}

func (r *InMemoryRepository) Update(ctx context.Context, item *MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return ErrNotFound
	}
	item.UpdatedAt = time.Now().UTC()
	r.items[item.ID] = *item
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *InMemoryRepository) SetImageURL(ctx context.Context, id string, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	item.ImageURL = url
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	return nil
}

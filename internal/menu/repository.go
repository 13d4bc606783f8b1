package menu

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("menu item not found")

// Repository defines all database operations for the catalog.
type Repository interface {

	// -------------------------------
	// Storefront (read-only)
	// -------------------------------

	// Available items only, newest first.
	ListAvailable(ctx context.Context, filter Filter) ([]MenuItem, error)

	// Any item by id, available or not. ErrNotFound when absent.
	Get(ctx context.Context, id string) (*MenuItem, error)

	// Categories of available items with counts.
	ListCategories(ctx context.Context) ([]Category, error)

	// -------------------------------
	// Admin
	// -------------------------------

	Create(ctx context.Context, item *MenuItem) error
	Update(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id string) error
	SetImageURL(ctx context.Context, id string, url string) error
}

package orders

import "context"

type Repository interface {
	// Create stores the order and its items together.
	Create(ctx context.Context, o *Order) error
	// ListByUser returns userID's orders, newest first. An empty status lists all.
	ListByUser(ctx context.Context, userID string, status Status) ([]Order, error)
	// GetForUser returns ErrNotFound when the order belongs to someone else.
	GetForUser(ctx context.Context, userID, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
}

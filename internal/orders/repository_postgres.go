package orders

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

const orderColumns = `id, user_id, status, subtotal, delivery_fee, tax, total,
	delivery_address, payment_method, created_at, updated_at`

// --------------------------------------------------
// CREATE (order + items in one transaction)
// --------------------------------------------------
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = StatusPending
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		o.ID, o.UserID, o.Status, o.Subtotal, o.DeliveryFee, o.Tax, o.Total,
		nullable(o.DeliveryAddress), nullable(string(o.PaymentMethod)), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, name, quantity, price_at_order, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, it.ID, o.ID, nullable(it.MenuItemID), it.Name, it.Quantity, it.PriceAtOrder, now)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// --------------------------------------------------
// READ
// --------------------------------------------------
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, status Status) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range out {
		if out[i].Items, err = r.items(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PostgresRepository) GetForUser(ctx context.Context, userID, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// --------------------------------------------------
// ADMIN
// --------------------------------------------------
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		id, status,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresRepository) items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, menu_item_id, name, quantity, price_at_order
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		var menuItemID *string
		if err := rows.Scan(&it.ID, &menuItemID, &it.Name, &it.Quantity, &it.PriceAtOrder); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if menuItemID != nil {
			it.MenuItemID = *menuItemID
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var address, payment *string

	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.Subtotal, &o.DeliveryFee, &o.Tax, &o.Total,
		&address, &payment, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if address != nil {
		o.DeliveryAddress = *address
	}
	if payment != nil {
		o.PaymentMethod = PaymentMethod(*payment)
	}
	return &o, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

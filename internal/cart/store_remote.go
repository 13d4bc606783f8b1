package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"upahar/internal/db"
	"upahar/internal/menu"
)

// RemoteStore keeps a signed-in user's cart in the cart_items table.
// Each change maps to one statement; replace runs in a transaction.
type RemoteStore struct {
	db db.Pool
}

var _ Persister = (*RemoteStore)(nil)

func NewRemoteStore(pool db.Pool) *RemoteStore {
	return &RemoteStore{db: pool}
}

// --------------------------------------------------
// LOAD (joined with the catalog for item snapshots)
// --------------------------------------------------
func (s *RemoteStore) Load(ctx context.Context, userID string) ([]Line, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+menu.QualifiedColumns("m")+`, ci.quantity
		FROM cart_items ci
		JOIN menu_items m ON m.id = ci.menu_item_id
		WHERE ci.user_id = $1
		ORDER BY ci.added_at, ci.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var quantity int
		item, err := menu.ScanItem(rows, &quantity)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		lines = append(lines, Line{ID: item.ID, Item: *item, Quantity: quantity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return lines, nil
}

// --------------------------------------------------
// APPLY
// --------------------------------------------------
func (s *RemoteStore) Apply(ctx context.Context, userID string, change Change) error {
	switch change.Kind {
	case ChangeUpsert:
		return s.upsert(ctx, s.db, userID, change.Line)

	case ChangeDelete:
		if _, err := s.db.Exec(ctx,
			`DELETE FROM cart_items WHERE user_id = $1 AND menu_item_id = $2`,
			userID, change.LineID,
		); err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}
		return nil

	case ChangeClear:
		if _, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil

	case ChangeReplace:
		return s.replace(ctx, userID, change.Snapshot)

	default:
		return fmt.Errorf("unknown cart change %d", change.Kind)
	}
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *RemoteStore) upsert(ctx context.Context, q execer, userID string, l Line) error {
	// lines whose dish has been deleted are skipped, so a replace never trips
	// the menu_items foreign key
	_, err := q.Exec(ctx, `
		INSERT INTO cart_items (id, user_id, menu_item_id, quantity, added_at)
		SELECT $1, $2, $3, $4, clock_timestamp()
		WHERE EXISTS (SELECT 1 FROM menu_items WHERE id = $3)
		ON CONFLICT (user_id, menu_item_id) DO UPDATE
		SET quantity = EXCLUDED.quantity
	`, uuid.New().String(), userID, l.ID, l.Quantity)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

func (s *RemoteStore) replace(ctx context.Context, userID string, lines []Line) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cart replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	for _, l := range lines {
		if err := s.upsert(ctx, tx, userID, l); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cart replace: %w", err)
	}
	return nil
}

package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

// Columns is the select list scanned by ScanItem. Other packages that join
// menu_items (cart, orders) reuse it with a table alias.
const Columns = `id, name, description, price, image_url, category, vegetarian,
	popular, rating, cooking_time, calories, ingredients, available, created_at, updated_at`

// QualifiedColumns prefixes every column with alias.
func QualifiedColumns(alias string) string {
	parts := strings.Split(Columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// ScanItem reads one row in Columns order. Extra destinations are scanned
// from any columns selected after them.
func ScanItem(row pgx.Row, extra ...any) (*MenuItem, error) {
	var (
		item        MenuItem
		description *string
		imageURL    *string
		cookingTime *string
	)

	dest := []any{
		&item.ID,
		&item.Name,
		&description,
		&item.Price,
		&imageURL,
		&item.Category,
		&item.Vegetarian,
		&item.Popular,
		&item.Rating,
		&cookingTime,
		&item.Calories,
		&item.Ingredients,
		&item.Available,
		&item.CreatedAt,
		&item.UpdatedAt,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if description != nil {
		item.Description = *description
	}
	if imageURL != nil {
		item.ImageURL = *imageURL
	}
	if cookingTime != nil {
		item.CookingTime = *cookingTime
	}

	return &item, nil
}

// --------------------------------------------------
// LIST AVAILABLE (storefront catalog)
// --------------------------------------------------
func (r *PostgresRepository) ListAvailable(ctx context.Context, filter Filter) ([]MenuItem, error) {
	where := []string{"available = true"}
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Vegetarian != nil {
		args = append(args, *filter.Vegetarian)
		where = append(where, fmt.Sprintf("vegetarian = $%d", len(args)))
	}
	if filter.Popular != nil {
		args = append(args, *filter.Popular)
		where = append(where, fmt.Sprintf("popular = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + Columns + ` FROM menu_items WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	items := []MenuItem{}
	for rows.Next() {
		item, err := ScanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}

	return items, nil
}

// --------------------------------------------------
// GET ONE
// --------------------------------------------------
func (r *PostgresRepository) Get(ctx context.Context, id string) (*MenuItem, error) {
	row := r.db.QueryRow(ctx, `SELECT `+Columns+` FROM menu_items WHERE id = $1`, id)

	item, err := ScanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return item, nil
}

// --------------------------------------------------
// CATEGORIES
// --------------------------------------------------
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*)
		FROM menu_items
		WHERE available = true
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.ItemCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// --------------------------------------------------
// ADMIN: CREATE / UPDATE / DELETE
// --------------------------------------------------
func (r *PostgresRepository) Create(ctx context.Context, item *MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO menu_items (
			id, name, description, price, image_url, category, vegetarian,
			popular, rating, cooking_time, calories, ingredients, available,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		item.ID, item.Name, nullable(item.Description), item.Price, nullable(item.ImageURL),
		item.Category, item.Vegetarian, item.Popular, item.Rating, nullable(item.CookingTime),
		item.Calories, item.Ingredients, item.Available, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, item *MenuItem) error {
	item.UpdatedAt = time.Now().UTC()

	cmd, err := r.db.Exec(ctx, `
		UPDATE menu_items
		SET name = $2,
		    description = $3,
		    price = $4,
		    image_url = $5,
		    category = $6,
		    vegetarian = $7,
		    popular = $8,
		    rating = $9,
		    cooking_time = $10,
		    calories = $11,
		    ingredients = $12,
		    available = $13,
		    updated_at = $14
		WHERE id = $1
	`,
		item.ID, item.Name, nullable(item.Description), item.Price, nullable(item.ImageURL),
		item.Category, item.Vegetarian, item.Popular, item.Rating, nullable(item.CookingTime),
		item.Calories, item.Ingredients, item.Available, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SetImageURL(ctx context.Context, id string, url string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE menu_items
		SET image_url = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, url)
	if err != nil {
		return fmt.Errorf("set image url: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemColumns = []string{
	"id", "name", "description", "price", "image_url", "category", "vegetarian",
	"popular", "rating", "cooking_time", "calories", "ingredients", "available", "created_at", "updated_at",
}

func strPtr(s string) *string { return &s }

func addItemRow(rows *pgxmock.Rows, id, name string, price int64, created time.Time) *pgxmock.Rows {
	calories := 320
	return rows.AddRow(
		id, name, strPtr("house special"), decimal.NewFromInt(price), (*string)(nil),
		"Mains", true, false, 4.2, strPtr("20 min"), &calories, []string{"rice", "dal"},
		true, created, created,
	)
}

func TestPostgresRepository_ListAvailable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	rows := mock.NewRows(itemColumns)
	addItemRow(rows, "a1", "Veg Thali", 120, now)
	addItemRow(rows, "b2", "Dal Khichdi", 180, now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .* FROM menu_items WHERE available = true ORDER BY created_at DESC`).
		WillReturnRows(rows)

	repo := NewPostgresRepository(mock)
	items, err := repo.ListAvailable(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Veg Thali", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "house special", items[0].Description)
	assert.Empty(t, items[0].ImageURL)
	require.NotNil(t, items[0].Calories)
	assert.Equal(t, 320, *items[0].Calories)
	assert.Equal(t, []string{"rice", "dal"}, items[0].Ingredients)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListAvailable_Filters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	veg := true
	mock.ExpectQuery(`WHERE available = true AND category = \$1 AND vegetarian = \$2 AND \(name ILIKE \$3 OR description ILIKE \$3\)`).
		WithArgs("Mains", true, "%paneer%").
		WillReturnRows(mock.NewRows(itemColumns))

	repo := NewPostgresRepository(mock)
	items, err := repo.ListAvailable(context.Background(), Filter{Category: "Mains", Vegetarian: &veg, Query: " paneer "})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListAvailable_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM menu_items`).WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresRepository(mock).ListAvailable(context.Background(), Filter{})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM menu_items WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresRepository(mock).Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListCategories(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT category, COUNT\(\*\) FROM menu_items WHERE available = true GROUP BY category`).
		WillReturnRows(mock.NewRows([]string{"category", "count"}).
			AddRow("Desserts", 3).
			AddRow("Mains", 7))

	categories, err := NewPostgresRepository(mock).ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Category{{Name: "Desserts", ItemCount: 3}, {Name: "Mains", ItemCount: 7}}, categories)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateAssignsTimestamps(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO menu_items`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	item := &MenuItem{ID: "c3", Name: "Gulab Jamun", Category: "Desserts", Price: decimal.NewFromInt(60)}
	require.NoError(t, NewPostgresRepository(mock).Create(context.Background(), item))
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_MissingRowsAreNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE menu_items`).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM menu_items WHERE id = \$1`).
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`UPDATE menu_items SET image_url = \$2`).
		WithArgs("gone", "https://cdn/x.png").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	ctx := context.Background()

	require.ErrorIs(t, repo.Update(ctx, &MenuItem{ID: "gone"}), ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "gone"), ErrNotFound)
	require.ErrorIs(t, repo.SetImageURL(ctx, "gone", "https://cdn/x.png"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQualifiedColumns(t *testing.T) {
	cols := QualifiedColumns("m")
	assert.Contains(t, cols, "m.id, m.name, m.description")
	assert.Contains(t, cols, "m.updated_at")
}

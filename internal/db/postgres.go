package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool matches the methods of *pgxpool.Pool the repositories use,
// so tests can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ Pool = (*pgxpool.Pool)(nil)

// ConnectPostgres opens a pool for dsn, pings it and applies the schema.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	slog.Info("Connected to PostgreSQL", "host", config.ConnConfig.Host, "database", config.ConnConfig.Database)

	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return pool, nil
}

// InitSchema creates or updates the database schema. Every statement is idempotent.
func InitSchema(ctx context.Context, db Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("%s: %w", stmt.name, err)
		}
	}

	slog.Info("Schema initialized", "statements", len(schema))
	return nil
}

type statement struct {
	name string
	sql  string
}

var schema = []statement{
	// -------------------------------
	// USERS
	// -------------------------------
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'CUSTOMER',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`},

	// -------------------------------
	// PROFILES (one per user)
	// -------------------------------
	{"profiles", `
		CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			full_name VARCHAR(255),
			email VARCHAR(255),
			phone VARCHAR(50),
			address TEXT,
			location_address TEXT,
			location_lat DOUBLE PRECISION,
			location_lng DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`},

	// -------------------------------
	// MENU ITEMS (catalog)
	// -------------------------------
	{"menu_items", `
		CREATE TABLE IF NOT EXISTS menu_items (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
			image_url TEXT,
			category VARCHAR(100) NOT NULL,
			vegetarian BOOLEAN NOT NULL DEFAULT false,
			popular BOOLEAN NOT NULL DEFAULT false,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			cooking_time VARCHAR(50),
			calories INTEGER,
			ingredients TEXT[],
			available BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`},
	{"menu_items_available_idx", `
		CREATE INDEX IF NOT EXISTS idx_menu_items_available_created
		ON menu_items (available, created_at DESC)
	`},

	// -------------------------------
	// CART ITEMS (per-user remote cart)
	// -------------------------------
	{"cart_items", `
		CREATE TABLE IF NOT EXISTS cart_items (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			menu_item_id UUID NOT NULL REFERENCES menu_items(id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, menu_item_id)
		)
	`},

	// -------------------------------
	// ORDERS
	// -------------------------------
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			status VARCHAR(50) NOT NULL DEFAULT 'pending',
			subtotal NUMERIC(10,2) NOT NULL,
			delivery_fee NUMERIC(10,2) NOT NULL,
			tax NUMERIC(10,2) NOT NULL,
			total NUMERIC(10,2) NOT NULL,
			delivery_address TEXT,
			payment_method VARCHAR(20),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`},
	{"order_items", `
		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			menu_item_id UUID REFERENCES menu_items(id) ON DELETE SET NULL,
			name VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			price_at_order NUMERIC(10,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`},
	{"orders_user_idx", `
		CREATE INDEX IF NOT EXISTS idx_orders_user_created
		ON orders (user_id, created_at DESC)
	`},
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"upahar/internal/auth"
	"upahar/internal/cart"
	"upahar/internal/db"
	"upahar/internal/events"
	"upahar/internal/logging"
	"upahar/internal/menu"
	"upahar/internal/metrics"
	"upahar/internal/orders"
	"upahar/internal/pricing"
	"upahar/internal/profile"
	"upahar/internal/router"
	"upahar/internal/storage"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	logger := logging.Setup()

	for _, k := range []string{"JWT_SECRET", "DATABASE_URL"} {
		if os.Getenv(k) == "" {
			fatal("missing env var", "name", k)
		}
	}

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── DB ─────────────────────────
	pool, err := db.ConnectPostgres(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		fatal("postgres connect failed", "error", err)
	}
	defer pool.Close()

	guests, err := cart.NewLocalStore(envOr("GUEST_CART_DB", "./data/guest_carts.db"))
	if err != nil {
		fatal("guest cart store failed", "error", err)
	}
	defer guests.Close()

	// ───────────────────────── STORAGE ─────────────────────────
	var images menu.Storage
	if rc, err := storage.R2ConfigFromEnv(); err == nil {
		r2Client, err := storage.NewR2Client(ctx, rc)
		if err != nil {
			fatal("R2 init failed", "error", err)
		}
		images = r2Client
	} else {
		slog.Warn("R2 not configured, menu image upload disabled")
	}

	// ───────────────────────── EVENTS ─────────────────────────
	var publisher events.Publisher = events.NopPublisher{}
	if url := os.Getenv("AMQP_URL"); url != "" {
		rabbit, err := events.Dial(url)
		if err != nil {
			fatal("rabbitmq connect failed", "error", err)
		}
		publisher = rabbit
	}
	defer publisher.Close()

	// ───────────────────────── SERVICES (ORDER MATTERS) ─────────────────────────
	m := metrics.New()

	calc, err := pricing.NewCalculator(envPercent("TAX_PERCENT", 5), envDecimal("DELIVERY_FEE", 20))
	if err != nil {
		fatal("invalid pricing config", "error", err)
	}

	menuService := menu.NewService(menu.NewPostgresRepository(pool), images)
	profileService := profile.NewService(profile.NewPostgresRepository(pool))

	cartService, err := cart.NewService(menuService, guests, cart.NewRemoteStore(pool), cart.Config{
		CacheSize:  envInt("CART_CACHE_SIZE", cart.DefaultCacheSize),
		Calculator: calc,
		Metrics:    m,
	})
	if err != nil {
		fatal("cart service init failed", "error", err)
	}

	go cart.RunReconciler(ctx, cartService, envDuration("CART_RECONCILE_INTERVAL", cart.DefaultReconcileInterval))

	authService := auth.NewService(
		auth.NewPostgresUserRepository(pool),
		profileService,
		splitList(os.Getenv("ADMIN_EMAILS"))...,
	)

	orderService := orders.NewService(
		orders.NewPostgresRepository(pool),
		cartService,
		profileService,
		publisher,
		m,
	)

	// ───────────────────────── HANDLERS ─────────────────────────
	r := router.New(router.Deps{
		Logger:      logger,
		Metrics:     m,
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		Auth:        auth.NewHandler(authService, cartService),
		Menu:        menu.NewHandler(menuService),
		MenuAdmin:   menu.NewAdminHandler(menuService),
		Cart:        cart.NewHandler(cartService),
		Orders:      orders.NewHandler(orderService),
		OrderAdmin:  orders.NewAdminHandler(orderService),
		Profile:     profile.NewHandler(profileService),
	})

	// ───────────────────────── START ─────────────────────────
	srv := &http.Server{
		Addr:              ":" + envOr("PORT", "8000"),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("API running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// --------------------------------------------------
func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fatal("invalid integer env var", "name", key, "value", raw)
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		fatal("invalid duration env var", "name", key, "value", raw)
	}
	return v
}

func envDecimal(key string, fallback int64) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return decimal.NewFromInt(fallback)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		fatal("invalid decimal env var", "name", key, "value", raw)
	}
	return v
}

// envPercent reads a percentage such as "5" and returns it as a rate (0.05).
func envPercent(key string, fallback int64) decimal.Decimal {
	return envDecimal(key, fallback).Div(decimal.NewFromInt(100))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

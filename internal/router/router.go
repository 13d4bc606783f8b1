package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"upahar/internal/auth"
	"upahar/internal/cart"
	"upahar/internal/menu"
	"upahar/internal/metrics"
	"upahar/internal/middleware"
	"upahar/internal/orders"
	"upahar/internal/profile"
)

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Deps is everything the HTTP surface needs. Nil handlers leave their routes out.
type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string

	Auth       *auth.Handler
	Menu       *menu.Handler
	MenuAdmin  *menu.AdminHandler
	Cart       *cart.Handler
	Orders     *orders.Handler
	OrderAdmin *orders.AdminHandler
	Profile    *profile.Handler
}

func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger, d.Metrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", cart.GuestHeader},
		ExposeHeaders:    []string{cart.GuestHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ───────────────────────── HEALTH ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// ───────────────────────── AUTH ─────────────────────────
	if d.Auth != nil {
		authGroup := r.Group("/auth")
		{
			authGroup.POST("/register", d.Auth.Register)
			authGroup.POST("/login", d.Auth.Login)

			protected := authGroup.Group("")
			protected.Use(middleware.AuthMiddleware())
			{
				protected.POST("/logout", d.Auth.Logout)
				protected.GET("/me", d.Auth.Me)
			}
		}
	}

	// ───────────────────────── MENU (public) ─────────────────────────
	if d.Menu != nil {
		menus := r.Group("/menu")
		{
			menus.GET("", d.Menu.List)
			menus.GET("/categories", d.Menu.Categories)
			menus.GET("/:id", d.Menu.Get)
		}
	}

	// ───────────────────────── CART (guest or user) ─────────────────────────
	if d.Cart != nil {
		carts := r.Group("/cart")
		carts.Use(middleware.OptionalAuth(), middleware.GuestSession())
		{
			carts.GET("", d.Cart.Get)
			carts.GET("/totals", d.Cart.Totals)
			carts.POST("/items", d.Cart.Add)
			carts.PUT("/items/:id", d.Cart.SetQuantity)
			carts.DELETE("/items/:id", d.Cart.Remove)
			carts.DELETE("", d.Cart.Clear)
			carts.POST("/sync", d.Cart.Sync)
		}
	}

	// ───────────────────────── ORDERS ─────────────────────────
	if d.Orders != nil {
		orderGroup := r.Group("/orders")
		orderGroup.Use(middleware.AuthMiddleware())
		{
			orderGroup.POST("", d.Orders.Place)
			orderGroup.GET("", d.Orders.List)
			orderGroup.GET("/:id", d.Orders.Get)
			orderGroup.POST("/:id/reorder", d.Orders.Reorder)
		}
	}

	// ───────────────────────── PROFILE ─────────────────────────
	if d.Profile != nil {
		profiles := r.Group("/profile")
		profiles.Use(middleware.AuthMiddleware())
		{
			profiles.GET("", d.Profile.Get)
			profiles.PUT("", d.Profile.Update)
			profiles.PUT("/location", d.Profile.SetLocation)
			profiles.DELETE("/location", d.Profile.ClearLocation)
		}
	}

	// ───────────────────────── ADMIN ROUTES ─────────────────────────
	admin := r.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(),
		middleware.RequireRole(auth.RoleAdmin),
	)
	{
		if d.MenuAdmin != nil {
			admin.POST("/menu", d.MenuAdmin.Create)
			admin.PUT("/menu/:id", d.MenuAdmin.Update)
			admin.DELETE("/menu/:id", d.MenuAdmin.Delete)
			admin.POST("/menu/:id/image", d.MenuAdmin.UploadImage)
		}
		if d.OrderAdmin != nil {
			admin.PUT("/orders/:id/status", d.OrderAdmin.UpdateStatus)
		}
	}

	return r
}

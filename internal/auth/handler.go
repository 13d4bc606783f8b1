package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"upahar/internal/cart"
)

// CartSessions is the cart side of signing in and out.
type CartSessions interface {
	Login(ctx context.Context, guestID, userID string) (cart.LoginResult, error)
	Logout(userID string)
}

type Handler struct {
	service *Service
	carts   CartSessions
}

func NewHandler(service *Service, carts CartSessions) *Handler {
	return &Handler{service: service, carts: carts}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login issues a token and switches the caller from their guest cart to the
// account cart. The guest cart is dropped; the response says how many lines.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		slog.Error("token generation failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	resp := gin.H{
		"token": token,
		"user":  user,
	}

	if h.carts != nil {
		res, err := h.carts.Login(c.Request.Context(), cart.GuestIDFromRequest(c.Request), user.ID)
		if err != nil {
			slog.Warn("account cart not hydrated at login", "user_id", user.ID, "error", err)
		}
		resp["cart"] = res
	}

	// The guest id is spent; the storefront gets a fresh one after logout.
	c.SetCookie(cart.GuestCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	if h.carts != nil {
		h.carts.Logout(c.GetString("userID"))
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("auth request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

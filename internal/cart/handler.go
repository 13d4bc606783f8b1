package cart

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"upahar/internal/menu"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SessionFrom reads the session the auth and guest middlewares attached.
func SessionFrom(c *gin.Context) Session {
	return Session{
		GuestID: c.GetString("guestID"),
		UserID:  c.GetString("userID"),
	}
}

func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), SessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) Totals(c *gin.Context) {
	totals, err := h.service.Totals(c.Request.Context(), SessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// --------------------------------------------------
// Add dish
// --------------------------------------------------
type addRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   *int   `json:"quantity"`
}

func (h *Handler) Add(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "menu_item_id is required"})
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.service.Add(c.Request.Context(), SessionFrom(c), req.MenuItemID, quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --------------------------------------------------
// Change quantity (below 1 removes)
// --------------------------------------------------
type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *Handler) SetQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	view, err := h.service.SetQuantity(c.Request.Context(), SessionFrom(c), c.Param("id"), *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) Remove(c *gin.Context) {
	view, err := h.service.Remove(c.Request.Context(), SessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) Clear(c *gin.Context) {
	view, err := h.service.Clear(c.Request.Context(), SessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) Sync(c *gin.Context) {
	view, err := h.service.Sync(c.Request.Context(), SessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, menu.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrItemUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		slog.Error("cart request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load cart"})
	}
}

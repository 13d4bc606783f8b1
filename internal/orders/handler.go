package orders

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"upahar/internal/cart"
)

type Handler struct {
	service *Service
}

type AdminHandler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// --------------------------------------------------
// Customer: place / list / view / reorder
// --------------------------------------------------
func (h *Handler) Place(c *gin.Context) {
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	order, err := h.service.Place(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) List(c *gin.Context) {
	orders, err := h.service.List(c.Request.Context(), c.GetString("userID"), Status(c.Query("status")))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) Reorder(c *gin.Context) {
	res, err := h.service.Reorder(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// --------------------------------------------------
// Admin: move an order through its statuses
// --------------------------------------------------
type statusRequest struct {
	Status Status `json:"status" binding:"required"`
}

func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func writeError(c *gin.Context, err error) {
	var unavailable *cart.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "some dishes are no longer available and were removed from your cart",
			"removed": unavailable.Names,
		})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrDeliveryAddressNeeded),
		errors.Is(err, cart.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		slog.Error("order request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

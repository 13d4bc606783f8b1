package menu

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
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
// Storefront: list available dishes
// --------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	filter := Filter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	var err error
	if filter.Vegetarian, err = boolQuery(c, "vegetarian"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vegetarian must be true or false"})
		return
	}
	if filter.Popular, err = boolQuery(c, "popular"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "popular must be true or false"})
		return
	}

	items, err := h.service.ListAvailable(c.Request.Context(), filter)
	if err != nil {
		slog.Error("catalog fetch failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"items": []MenuItem{},
			"error": "could not load the menu, please try again",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		slog.Error("category fetch failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"categories": []Category{},
			"error":      "could not load categories",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// --------------------------------------------------
// Admin: create / update / delete dishes
// --------------------------------------------------
type createRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category" binding:"required"`
	Vegetarian  bool            `json:"vegetarian"`
	Popular     bool            `json:"popular"`
	Rating      float64         `json:"rating"`
	CookingTime string          `json:"cooking_time"`
	Calories    *int            `json:"calories"`
	Ingredients []string        `json:"ingredients"`
	Available   *bool           `json:"available"`
}

func (h *AdminHandler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	item, err := h.service.Create(c.Request.Context(), MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Vegetarian:  req.Vegetarian,
		Popular:     req.Popular,
		Rating:      req.Rating,
		CookingTime: req.CookingTime,
		Calories:    req.Calories,
		Ingredients: req.Ingredients,
		Available:   available,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *AdminHandler) Update(c *gin.Context) {
	var req Update
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Admin: upload dish photo
// --------------------------------------------------
func (h *AdminHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	defer file.Close()

	url, err := h.service.UploadImage(
		c.Request.Context(),
		c.Param("id"),
		file,
		header.Filename,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        c.Param("id"),
		"image_url": url,
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case IsValidationError(err), errors.Is(err, ErrBadImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		slog.Error("menu request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func boolQuery(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

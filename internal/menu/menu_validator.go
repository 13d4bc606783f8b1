package menu

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrCategoryRequired = errors.New("category is required")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrInvalidRating    = errors.New("rating must be between 0 and 5")
	ErrInvalidCalories  = errors.New("calories must not be negative")
	ErrBadImage         = errors.New("image must be .jpg, .jpeg, .png or .webp")
)

var allowedImageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ValidateImageExtension returns the content type for an allowed image filename.
func ValidateImageExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	contentType, ok := allowedImageExt[ext]
	if !ok {
		return "", ErrBadImage
	}

	return contentType, nil
}

// Validate checks the catalog invariants of a menu item.
func Validate(item *MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(item.Category) == "" {
		return ErrCategoryRequired
	}
	if item.Price.IsNegative() {
		return ErrNegativePrice
	}
	if item.Rating < 0 || item.Rating > 5 {
		return ErrInvalidRating
	}
	if item.Calories != nil && *item.Calories < 0 {
		return ErrInvalidCalories
	}
	return nil
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrCategoryRequired) ||
		errors.Is(err, ErrNegativePrice) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrInvalidCalories)
}

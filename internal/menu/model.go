package menu

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is one orderable dish in the catalog.
// Carts hold copies of it; only the catalog mutates it.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Vegetarian  bool            `json:"vegetarian"`
	Popular     bool            `json:"popular"`
	Rating      float64         `json:"rating"`
	CookingTime string          `json:"cooking_time,omitempty"`
	Calories    *int            `json:"calories,omitempty"`
	Ingredients []string        `json:"ingredients,omitempty"`
	Available   bool            `json:"available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Filter narrows a catalog listing. Zero values mean "any".
type Filter struct {
	Category   string
	Vegetarian *bool
	Popular    *bool
	Query      string
}

// Category is a catalog section with the number of available dishes in it.
type Category struct {
	Name      string `json:"name"`
	ItemCount int    `json:"item_count"`
}

// Update is a partial edit from the admin page; nil fields are left alone.
type Update struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url"`
	Category    *string          `json:"category"`
	Vegetarian  *bool            `json:"vegetarian"`
	Popular     *bool            `json:"popular"`
	Rating      *float64         `json:"rating"`
	CookingTime *string          `json:"cooking_time"`
	Calories    *int             `json:"calories"`
	Ingredients []string         `json:"ingredients"`
	Available   *bool            `json:"available"`
}

// Apply copies the set fields of u onto item.
func (u Update) Apply(item *MenuItem) {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Description != nil {
		item.Description = *u.Description
	}
	if u.Price != nil {
		item.Price = *u.Price
	}
	if u.ImageURL != nil {
		item.ImageURL = *u.ImageURL
	}
	if u.Category != nil {
		item.Category = *u.Category
	}
	if u.Vegetarian != nil {
		item.Vegetarian = *u.Vegetarian
	}
	if u.Popular != nil {
		item.Popular = *u.Popular
	}
	if u.Rating != nil {
		item.Rating = *u.Rating
	}
	if u.CookingTime != nil {
		item.CookingTime = *u.CookingTime
	}
	if u.Calories != nil {
		c := *u.Calories
		item.Calories = &c
	}
	if u.Ingredients != nil {
		item.Ingredients = append([]string(nil), u.Ingredients...)
	}
	if u.Available != nil {
		item.Available = *u.Available
	}
}

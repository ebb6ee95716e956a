package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuCategory groups menu items for a restaurant.
type MenuCategory struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	SortOrder    int       `json:"sort_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MenuItem is a single dish on a restaurant's menu.
type MenuItem struct {
	ID           uuid.UUID  `json:"id"`
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	PriceCents   int        `json:"price_cents"`
	Currency     string     `json:"currency"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	IsAvailable  bool       `json:"is_available"`
	IsVegetarian bool       `json:"is_vegetarian"`
	IsVegan      bool       `json:"is_vegan"`
	IsGlutenFree bool       `json:"is_gluten_free"`
	Allergens    []string   `json:"allergens"`
	SortOrder    int        `json:"sort_order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicCategory is a category with its available items nested, as served on
// the public menu page.
type PublicCategory struct {
	MenuCategory
	Items []MenuItem `json:"items"`
}

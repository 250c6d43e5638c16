package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Restaurant is a venue that serves a declared set of postal codes.
type Restaurant struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	OwnerID              uuid.UUID `json:"ownerId" db:"owner_id"`
	Name                 string    `json:"name" db:"name"`
	Address              string    `json:"address" db:"address"`
	Contact              string    `json:"contact" db:"contact"`
	PostalCodes          []string  `json:"postalCodes" db:"postal_codes"`
	EstimatedPrepMinutes int       `json:"estimatedPrepMinutes" db:"estimated_prep_minutes"`
	Cuisine              string    `json:"cuisine" db:"cuisine"`
	IsOpen               bool      `json:"isOpen" db:"is_open"`
	IsFeatured           bool      `json:"isFeatured" db:"is_featured"`
	Rating               float64   `json:"rating" db:"rating"`
	NumReviews           int       `json:"numReviews" db:"num_reviews"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time `json:"updatedAt" db:"updated_at"`
}

// MenuItem is an entry in a restaurant's catalog.
type MenuItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	RestaurantID uuid.UUID       `json:"restaurantId" db:"restaurant_id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description" db:"description"`
	Category     string          `json:"category" db:"category"`
	Price        decimal.Decimal `json:"price" db:"price"`
	IsVeg        bool            `json:"isVeg" db:"is_veg"`
	IsAvailable  bool            `json:"isAvailable" db:"is_available"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// RestaurantRequest creates a restaurant profile.
type RestaurantRequest struct {
	Name                 string   `json:"name" validate:"required"`
	Address              string   `json:"address" validate:"required"`
	Contact              string   `json:"contact" validate:"required"`
	PostalCodes          []string `json:"postalCodes" validate:"required,min=1,dive,required"`
	EstimatedPrepMinutes int      `json:"estimatedPrepMinutes" validate:"min=1"`
	Cuisine              string   `json:"cuisine"`
}

// RestaurantUpdate is a partial profile update; nil fields are left unchanged.
type RestaurantUpdate struct {
	Name                 *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Address              *string  `json:"address,omitempty" validate:"omitempty,min=1"`
	Contact              *string  `json:"contact,omitempty" validate:"omitempty,min=1"`
	PostalCodes          []string `json:"postalCodes,omitempty" validate:"omitempty,min=1,dive,required"`
	EstimatedPrepMinutes *int     `json:"estimatedPrepMinutes,omitempty" validate:"omitempty,min=1"`
	Cuisine              *string  `json:"cuisine,omitempty"`
}

// Apply merges the update into r.
func (u *RestaurantUpdate) Apply(r *Restaurant) {
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.Address != nil {
		r.Address = *u.Address
	}
	if u.Contact != nil {
		r.Contact = *u.Contact
	}
	if len(u.PostalCodes) > 0 {
		r.PostalCodes = u.PostalCodes
	}
	if u.EstimatedPrepMinutes != nil {
		r.EstimatedPrepMinutes = *u.EstimatedPrepMinutes
	}
	if u.Cuisine != nil {
		r.Cuisine = *u.Cuisine
	}
}

// MenuItemRequest creates a menu item.
type MenuItemRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	IsVeg       bool            `json:"isVeg"`
}

// MenuItemUpdate is a partial menu item update.
type MenuItemUpdate struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	IsVeg       *bool            `json:"isVeg,omitempty"`
	IsAvailable *bool            `json:"isAvailable,omitempty"`
}

// Apply merges the update into m.
func (u *MenuItemUpdate) Apply(m *MenuItem) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Description != nil {
		m.Description = *u.Description
	}
	if u.Category != nil {
		m.Category = *u.Category
	}
	if u.Price != nil {
		m.Price = *u.Price
	}
	if u.IsVeg != nil {
		m.IsVeg = *u.IsVeg
	}
	if u.IsAvailable != nil {
		m.IsAvailable = *u.IsAvailable
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer's rating of a delivered order's restaurant.
type Review struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"orderId" db:"order_id"`
	CustomerID   uuid.UUID `json:"customerId" db:"customer_id"`
	RestaurantID uuid.UUID `json:"restaurantId" db:"restaurant_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ReviewRequest is the payload for submitting a review. RestaurantID is
// optional; when present it must match the order's restaurant.
type ReviewRequest struct {
	OrderID      uuid.UUID  `json:"orderId" validate:"required"`
	RestaurantID *uuid.UUID `json:"restaurantId,omitempty"`
	Rating       int        `json:"rating" validate:"min=1,max=5"`
	Comment      string     `json:"comment" validate:"max=1000"`
}

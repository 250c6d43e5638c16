package model

import (
	"time"

	"github.com/google/uuid"
)

// Role determines which operations a caller may perform.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
	RoleDelivery   Role = "delivery"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurant, RoleDelivery, RoleAdmin:
		return true
	}
	return false
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID   uuid.UUID
	Role Role
}

// User is a marketplace account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        string    `json:"phone" db:"phone"`
	Role         Role      `json:"role" db:"role"`
	IsBlocked    bool      `json:"isBlocked" db:"is_blocked"`
	IsOnline     bool      `json:"isOnline" db:"is_online"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// RegisterRequest is the sign-up payload. Admin accounts cannot self-register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"required"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=customer restaurant delivery"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// DeliveryProfile is a delivery partner's own view.
type DeliveryProfile struct {
	User           *User `json:"profile"`
	TotalDelivered int64 `json:"totalDelivered"`
}

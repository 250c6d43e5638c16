package service

import (
	"context"

	"foodmart/internal/model"

	"github.com/google/uuid"
)

// AuthService defines account registration, sign-in and role applications.
type AuthService interface {
	// Register creates an account. Restaurant accounts start blocked and
	// receive no token until an admin unblocks them.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login verifies credentials. Blocked accounts are rejected.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)

	// ApplyDelivery turns a customer into an offline delivery partner.
	ApplyDelivery(ctx context.Context, caller model.Caller) (*model.AuthResponse, error)

	// ApplyRestaurant turns a customer into a restaurant owner pending approval.
	ApplyRestaurant(ctx context.Context, caller model.Caller) (*model.User, error)
}

// RestaurantService defines browsing and owner management of restaurants.
type RestaurantService interface {
	ListByPostalCode(ctx context.Context, postalCode string) ([]model.Restaurant, error)
	Featured(ctx context.Context) ([]model.Restaurant, error)
	Search(ctx context.Context, query string) ([]model.Restaurant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)

	Create(ctx context.Context, caller model.Caller, req *model.RestaurantRequest) (*model.Restaurant, error)
	Mine(ctx context.Context, caller model.Caller) (*model.Restaurant, error)
	UpdateMine(ctx context.Context, caller model.Caller, update *model.RestaurantUpdate) (*model.Restaurant, error)
	ToggleOpen(ctx context.Context, caller model.Caller) (*model.Restaurant, error)
}

// MenuService defines menu browsing and owner edits.
type MenuService interface {
	List(ctx context.Context, restaurantID uuid.UUID) ([]model.MenuItem, error)
	Add(ctx context.Context, caller model.Caller, restaurantID uuid.UUID, req *model.MenuItemRequest) (*model.MenuItem, error)
	Update(ctx context.Context, caller model.Caller, itemID uuid.UUID, update *model.MenuItemUpdate) (*model.MenuItem, error)
	Delete(ctx context.Context, caller model.Caller, itemID uuid.UUID) error
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder prices the request from the catalog, applies an optional
	// coupon and stores the order as placed.
	CreateOrder(ctx context.Context, caller model.Caller, req *model.OrderRequest) (*model.Order, error)

	// UpdateStatus advances the order one step along the fulfilment sequence.
	UpdateStatus(ctx context.Context, caller model.Caller, id uuid.UUID, req *model.StatusUpdateRequest) (*model.Order, error)

	// Cancel cancels a placed order on behalf of its customer.
	Cancel(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Order, error)

	GetByID(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Order, error)
	ListMine(ctx context.Context, caller model.Caller) ([]model.Order, error)
	ListIncoming(ctx context.Context, caller model.Caller) ([]model.Order, error)
	ListForDelivery(ctx context.Context, caller model.Caller) ([]model.Order, error)

	// CheckCoupon previews the discount a coupon would grant on amount.
	CheckCoupon(ctx context.Context, req *model.CouponCheckRequest) (*model.CouponCheckResponse, error)
}

// ReviewService defines review submission and listing.
type ReviewService interface {
	Submit(ctx context.Context, caller model.Caller, req *model.ReviewRequest) (*model.Review, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Review, error)
}

// DeliveryService defines the delivery partner's own operations.
type DeliveryService interface {
	ToggleAvailability(ctx context.Context, caller model.Caller) (*model.User, error)
	Profile(ctx context.Context, caller model.Caller) (*model.DeliveryProfile, error)
}

// AdminService defines marketplace administration.
type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]model.User, error)
	ListOrders(ctx context.Context, limit, offset int) ([]model.Order, error)
	ToggleBlock(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ToggleFeatured(ctx context.Context, restaurantID uuid.UUID) (*model.Restaurant, error)
	AssignPartner(ctx context.Context, orderID, partnerID uuid.UUID) (*model.Order, error)
	Analytics(ctx context.Context) (*model.Analytics, error)
}

// PaymentService defines the payment gateway callback.
type PaymentService interface {
	// Confirm verifies the gateway signature and marks the order paid.
	Confirm(ctx context.Context, req *model.PaymentConfirmation) (*model.Order, error)
}

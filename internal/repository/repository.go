package repository

import (
	"context"

	"foodmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Lookups return (nil, nil) when the record does not exist.

// UserRepository defines data access for marketplace accounts.
type UserRepository interface {
	// Create inserts a user. A taken email yields ErrDuplicate.
	Create(ctx context.Context, user *model.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)

	// UpdateRole switches the account role. The partner starts offline.
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role, blocked bool) (*model.User, error)

	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*model.User, error)
	SetOnline(ctx context.Context, id uuid.UUID, online bool) (*model.User, error)
}

// RestaurantRepository defines data access for restaurants.
type RestaurantRepository interface {
	// Create inserts a restaurant. An owner with a restaurant yields ErrDuplicate.
	Create(ctx context.Context, restaurant *model.Restaurant) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Restaurant, error)

	// Update writes the owner-editable profile fields.
	Update(ctx context.Context, restaurant *model.Restaurant) error

	ListOpenByPostalCode(ctx context.Context, postalCode string) ([]model.Restaurant, error)
	ListFeatured(ctx context.Context) ([]model.Restaurant, error)
	Search(ctx context.Context, query string) ([]model.Restaurant, error)

	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*model.Restaurant, error)

	// UpdateRating stores a recomputed review aggregate.
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error

	// OwnsRestaurant reports whether userID owns restaurantID.
	OwnsRestaurant(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
}

// MenuRepository defines data access for menu items.
type MenuRepository interface {
	Create(ctx context.Context, item *model.MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.MenuItem, error)

	// GetByIDs fetches every listed item in one query. Missing ids are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.MenuItem, error)

	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.MenuItem, error)
	Update(ctx context.Context, item *model.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository defines data access for orders and their line items.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the line items of an order within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.LineItem) error

	// GetByID retrieves an order along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// UpdateFulfillment applies change only if the order is still in
	// expected. Otherwise it returns ErrStatusMismatch and writes nothing.
	UpdateFulfillment(ctx context.Context, id uuid.UUID, expected model.FulfillmentState, change model.StatusChange) (*model.Order, error)

	// AssignPartner binds a partner to a non-terminal order. A terminal
	// order yields ErrStatusMismatch.
	AssignPartner(ctx context.Context, id, partnerID uuid.UUID) (*model.Order, error)

	// MarkPaid records a confirmed payment for the order carrying providerOrderID.
	MarkPaid(ctx context.Context, providerOrderID, providerPaymentID string) (*model.Order, error)

	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, states []model.FulfillmentState) ([]model.Order, error)

	// ListForDelivery returns ready orders plus those bound to partnerID.
	ListForDelivery(ctx context.Context, partnerID uuid.UUID) ([]model.Order, error)

	ListAll(ctx context.Context, limit, offset int) ([]model.Order, error)
	Analytics(ctx context.Context) (*model.Analytics, error)
	CountDelivered(ctx context.Context, partnerID uuid.UUID) (int64, error)
}

// CouponRepository defines data access for discount coupons.
type CouponRepository interface {
	// GetActiveByCode returns the active coupon with the normalized code.
	GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error)

	// Upsert inserts or replaces coupons by code and returns how many were written.
	Upsert(ctx context.Context, coupons []model.Coupon) (int, error)
}

// ReviewRepository defines data access for reviews.
type ReviewRepository interface {
	// Create inserts a review. A second review of the same order yields ErrDuplicate.
	Create(ctx context.Context, review *model.Review) error

	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Review, error)

	// Stats returns the mean rating and review count of a restaurant.
	Stats(ctx context.Context, restaurantID uuid.UUID) (decimal.Decimal, int, error)
}

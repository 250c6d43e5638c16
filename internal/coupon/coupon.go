package coupon

import (
	"context"

	"foodmart/internal/model"

	"github.com/shopspring/decimal"
)

// Validator defines the interface for coupon validation.
type Validator interface {
	// Validate checks a coupon against an order subtotal and returns the
	// discount it grants. A coupon is valid when it:
	// - exists and is active (inactive coupons are reported as not found)
	// - has not expired
	// - has a minimum order amount no greater than the subtotal
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Result, error)
}

// Result is the outcome of a successful validation.
type Result struct {
	Code     string
	Discount decimal.Decimal
}

// Store reads and writes coupon definitions.
type Store interface {
	// GetActiveByCode returns the active coupon with the given normalised
	// code, or nil when there is none.
	GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error)

	// Upsert inserts or replaces coupon definitions keyed by code.
	Upsert(ctx context.Context, coupons []model.Coupon) (int, error)
}

// Loader defines the interface for loading coupon files.
type Loader interface {
	// Load reads a gzipped JSON-lines coupon file and returns its definitions.
	Load(ctx context.Context, filePath string) (*Set, error)
}

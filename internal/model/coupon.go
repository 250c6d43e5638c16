package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a promotional code. Codes are stored uppercase.
type Coupon struct {
	Code              string          `json:"code" db:"code"`
	DiscountPercent   int             `json:"discountPercent" db:"discount_percent"`
	MaxDiscountAmount decimal.Decimal `json:"maxDiscountAmount" db:"max_discount_amount"`
	MinOrderAmount    decimal.Decimal `json:"minOrderAmount" db:"min_order_amount"`
	ExpiresAt         time.Time       `json:"expiresAt" db:"expires_at"`
	IsActive          bool            `json:"isActive" db:"is_active"`
}

// NormalizeCouponCode returns the canonical form used for lookups.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponCheckRequest is the pre-check payload.
type CouponCheckRequest struct {
	Code   string          `json:"code" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// CouponCheckResponse reports the discount a coupon would give.
type CouponCheckResponse struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
}

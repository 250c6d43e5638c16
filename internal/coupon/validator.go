package coupon

import (
	"context"
	"fmt"
	"time"

	"foodmart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// validator implements Validator on top of a coupon Store.
type validator struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewValidator creates a new coupon validator. A nil clock defaults to time.Now.
func NewValidator(store Store, now func() time.Time, logger zerolog.Logger) Validator {
	if now == nil {
		now = time.Now
	}
	return &validator{
		store:  store,
		now:    now,
		logger: logger.With().Str("component", "coupon-validator").Logger(),
	}
}

// Validate checks a coupon against an order subtotal.
func (v *validator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Result, error) {
	normalised := model.NormalizeCouponCode(code)
	if normalised == "" {
		return nil, model.ErrCouponNotFound
	}

	c, err := v.store.GetActiveByCode(ctx, normalised)
	if err != nil {
		v.logger.Error().Err(err).Str("coupon_code", normalised).Msg("failed to look up coupon")
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if c == nil {
		v.logger.Debug().Str("coupon_code", normalised).Msg("coupon not found or inactive")
		return nil, model.ErrCouponNotFound
	}

	discount, err := Apply(c, subtotal, v.now())
	if err != nil {
		v.logger.Debug().
			Str("coupon_code", normalised).
			Str("subtotal", subtotal.String()).
			Err(err).
			Msg("coupon rejected")
		return nil, err
	}

	v.logger.Debug().
		Str("coupon_code", normalised).
		Str("discount", discount.String()).
		Msg("coupon validated successfully")

	return &Result{Code: normalised, Discount: discount}, nil
}

// Apply checks the expiry and minimum order rules of c and returns the
// discount for subtotal. The discount never exceeds subtotal.
func Apply(c *model.Coupon, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if now.After(c.ExpiresAt) {
		return decimal.Zero, model.ErrCouponExpired.With(
			fmt.Sprintf("Coupon %s has expired", c.Code),
			map[string]any{"expiresAt": c.ExpiresAt},
		)
	}

	if subtotal.LessThan(c.MinOrderAmount) {
		return decimal.Zero, model.ErrMinOrderNotMet.With(
			fmt.Sprintf("Minimum order amount is %s", c.MinOrderAmount.StringFixed(2)),
			map[string]any{"minOrderAmount": c.MinOrderAmount.StringFixed(2)},
		)
	}

	raw := subtotal.Mul(decimal.NewFromInt(int64(c.DiscountPercent))).Div(hundred)
	discount := decimal.Min(raw, c.MaxDiscountAmount).Round(2)

	// 0 <= discount <= subtotal
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	return discount, nil
}

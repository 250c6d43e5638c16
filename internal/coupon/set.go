package coupon

import (
	"fmt"
	"time"

	"foodmart/internal/model"

	"github.com/shopspring/decimal"
)

// Set is an ordered collection of coupon definitions keyed by normalised
// code. Adding a code twice replaces the earlier definition.
type Set struct {
	index   map[string]int
	coupons []model.Coupon
}

// NewSet creates an empty set.
func NewSet(capacity int) *Set {
	return &Set{
		index:   make(map[string]int, capacity),
		coupons: make([]model.Coupon, 0, capacity),
	}
}

// Add normalises c's code and stores it.
func (s *Set) Add(c model.Coupon) {
	c.Code = model.NormalizeCouponCode(c.Code)
	if i, ok := s.index[c.Code]; ok {
		s.coupons[i] = c
		return
	}
	s.index[c.Code] = len(s.coupons)
	s.coupons = append(s.coupons, c)
}

// Merge adds every coupon of other, in order, and returns the codes whose
// earlier definition was replaced.
func (s *Set) Merge(other *Set) []string {
	var replaced []string
	for _, c := range other.coupons {
		if s.Contains(c.Code) {
			replaced = append(replaced, c.Code)
		}
		s.Add(c)
	}
	return replaced
}

// Contains checks if a coupon code exists in the set.
func (s *Set) Contains(code string) bool {
	_, ok := s.index[model.NormalizeCouponCode(code)]
	return ok
}

// Get returns the definition stored for code.
func (s *Set) Get(code string) (model.Coupon, bool) {
	i, ok := s.index[model.NormalizeCouponCode(code)]
	if !ok {
		return model.Coupon{}, false
	}
	return s.coupons[i], true
}

// Size returns the number of coupons in the set.
func (s *Set) Size() int {
	return len(s.coupons)
}

// Coupons returns the definitions in insertion order.
func (s *Set) Coupons() []model.Coupon {
	out := make([]model.Coupon, len(s.coupons))
	copy(out, s.coupons)
	return out
}

// record is the JSON-lines file format of a coupon definition.
type record struct {
	Code              string          `json:"code"`
	DiscountPercent   int             `json:"discountPercent"`
	MaxDiscountAmount decimal.Decimal `json:"maxDiscountAmount"`
	MinOrderAmount    decimal.Decimal `json:"minOrderAmount"`
	ExpiresAt         time.Time       `json:"expiresAt"`
	IsActive          *bool           `json:"isActive,omitempty"`
}

// toCoupon checks the bounds of r and converts it. Missing isActive means active.
func (r record) toCoupon() (model.Coupon, error) {
	code := model.NormalizeCouponCode(r.Code)
	switch {
	case code == "":
		return model.Coupon{}, fmt.Errorf("code is required")
	case r.DiscountPercent < 1 || r.DiscountPercent > 100:
		return model.Coupon{}, fmt.Errorf("coupon %s: discountPercent must be between 1 and 100", code)
	case r.MaxDiscountAmount.IsNegative():
		return model.Coupon{}, fmt.Errorf("coupon %s: maxDiscountAmount must not be negative", code)
	case r.MinOrderAmount.IsNegative():
		return model.Coupon{}, fmt.Errorf("coupon %s: minOrderAmount must not be negative", code)
	case r.ExpiresAt.IsZero():
		return model.Coupon{}, fmt.Errorf("coupon %s: expiresAt is required", code)
	}

	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return model.Coupon{
		Code:              code,
		DiscountPercent:   r.DiscountPercent,
		MaxDiscountAmount: r.MaxDiscountAmount,
		MinOrderAmount:    r.MinOrderAmount,
		ExpiresAt:         r.ExpiresAt.UTC(),
		IsActive:          active,
	}, nil
}

package coupon

import (
	"testing"
	"time"

	"foodmart/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Add_And_Contains(t *testing.T) {
	set := NewSet(10)

	set.Add(model.Coupon{Code: "testcode1", DiscountPercent: 10})
	assert.True(t, set.Contains("TESTCODE1"))
	assert.True(t, set.Contains("testcode1"))
	assert.False(t, set.Contains("NOTEXIST"))

	set.Add(model.Coupon{Code: "TESTCODE2"})
	set.Add(model.Coupon{Code: "TESTCODE3"})
	assert.Equal(t, 3, set.Size())

	// Duplicate addition replaces the definition without growing the set
	set.Add(model.Coupon{Code: "TestCode1", DiscountPercent: 25})
	assert.Equal(t, 3, set.Size())

	c, ok := set.Get("TESTCODE1")
	require.True(t, ok)
	assert.Equal(t, 25, c.DiscountPercent)
	assert.Equal(t, "TESTCODE1", c.Code)
}

func TestSet_CouponsKeepsInsertionOrder(t *testing.T) {
	set := NewSet(0)
	for _, code := range []string{"B", "A", "C", "a"} {
		set.Add(model.Coupon{Code: code})
	}

	var codes []string
	for _, c := range set.Coupons() {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"B", "A", "C"}, codes)
}

func TestSet_Merge(t *testing.T) {
	first := NewSet(2)
	first.Add(model.Coupon{Code: "ONE", DiscountPercent: 5})
	first.Add(model.Coupon{Code: "TWO", DiscountPercent: 5})

	second := NewSet(2)
	second.Add(model.Coupon{Code: "TWO", DiscountPercent: 50})
	second.Add(model.Coupon{Code: "THREE", DiscountPercent: 5})

	replaced := first.Merge(second)

	assert.Equal(t, []string{"TWO"}, replaced)
	assert.Equal(t, 3, first.Size())
	two, _ := first.Get("TWO")
	assert.Equal(t, 50, two.DiscountPercent)
}

func TestRecord_ToCoupon(t *testing.T) {
	expires := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	inactive := false

	tests := []struct {
		name    string
		rec     record
		wantErr string
		active  bool
	}{
		{
			name:   "valid and active by default",
			rec:    record{Code: "save10", DiscountPercent: 10, ExpiresAt: expires},
			active: true,
		},
		{
			name:   "explicitly inactive",
			rec:    record{Code: "OLD", DiscountPercent: 10, ExpiresAt: expires, IsActive: &inactive},
			active: false,
		},
		{name: "missing code", rec: record{DiscountPercent: 10, ExpiresAt: expires}, wantErr: "code is required"},
		{name: "zero percent", rec: record{Code: "X", ExpiresAt: expires}, wantErr: "discountPercent"},
		{name: "over one hundred percent", rec: record{Code: "X", DiscountPercent: 101, ExpiresAt: expires}, wantErr: "discountPercent"},
		{
			name:    "negative cap",
			rec:     record{Code: "X", DiscountPercent: 10, MaxDiscountAmount: decimal.NewFromInt(-1), ExpiresAt: expires},
			wantErr: "maxDiscountAmount",
		},
		{
			name:    "negative minimum",
			rec:     record{Code: "X", DiscountPercent: 10, MinOrderAmount: decimal.NewFromInt(-1), ExpiresAt: expires},
			wantErr: "minOrderAmount",
		},
		{name: "missing expiry", rec: record{Code: "X", DiscountPercent: 10}, wantErr: "expiresAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.rec.toCoupon()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.NormalizeCouponCode(tt.rec.Code), c.Code)
			assert.Equal(t, tt.active, c.IsActive)
		})
	}
}

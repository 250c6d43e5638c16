package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodmart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockStore) Upsert(ctx context.Context, coupons []model.Coupon) (int, error) {
	args := m.Called(ctx, coupons)
	return args.Int(0), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func save20() *model.Coupon {
	return &model.Coupon{
		Code:              "SAVE20",
		DiscountPercent:   20,
		MaxDiscountAmount: decimal.NewFromInt(100),
		MinOrderAmount:    decimal.NewFromInt(200),
		ExpiresAt:         fixedNow.Add(24 * time.Hour),
		IsActive:          true,
	}
}

func TestValidator_Validate_CappedDiscount(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("GetActiveByCode", ctx, "SAVE20").Return(save20(), nil)

	v := NewValidator(store, clock, zerolog.Nop())

	subtotal := decimal.NewFromInt(1000)
	res, err := v.Validate(ctx, "save20", subtotal)
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", res.Code)
	assert.True(t, res.Discount.Equal(decimal.NewFromInt(100)), res.Discount.String())
	assert.True(t, subtotal.Sub(res.Discount).Equal(decimal.NewFromInt(900)))
	store.AssertExpectations(t)
}

func TestValidator_Validate_NormalisesCode(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("GetActiveByCode", ctx, "SAVE20").Return(save20(), nil)

	v := NewValidator(store, clock, zerolog.Nop())

	_, err := v.Validate(ctx, "  Save20 ", decimal.NewFromInt(300))
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestValidator_Validate_NotFound(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("GetActiveByCode", ctx, "NOPE").Return(nil, nil)

	v := NewValidator(store, clock, zerolog.Nop())

	_, err := v.Validate(ctx, "nope", decimal.NewFromInt(300))
	assert.ErrorIs(t, err, model.ErrCouponNotFound)

	_, err = v.Validate(ctx, "   ", decimal.NewFromInt(300))
	assert.ErrorIs(t, err, model.ErrCouponNotFound)
}

func TestValidator_Validate_StoreError(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("GetActiveByCode", ctx, "SAVE20").Return(nil, errors.New("connection refused"))

	v := NewValidator(store, clock, zerolog.Nop())

	_, err := v.Validate(ctx, "SAVE20", decimal.NewFromInt(300))
	require.Error(t, err)
	_, isDomain := model.AsDomainError(err)
	assert.False(t, isDomain)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *model.Coupon)
		subtotal string
		now      time.Time
		want     string
		wantErr  error
	}{
		{name: "cap applies", subtotal: "1000", now: fixedNow, want: "100"},
		{name: "percentage below cap", subtotal: "300", now: fixedNow, want: "60"},
		{name: "exactly the minimum", subtotal: "200", now: fixedNow, want: "40"},
		{name: "below minimum", subtotal: "150", now: fixedNow, wantErr: model.ErrMinOrderNotMet},
		{name: "expired", subtotal: "1000", now: fixedNow.Add(48 * time.Hour), wantErr: model.ErrCouponExpired},
		{name: "expiry instant is still valid", subtotal: "1000", now: fixedNow.Add(24 * time.Hour), want: "100"},
		{
			name:     "rounds half up to two places",
			mutate:   func(c *model.Coupon) { c.DiscountPercent = 15; c.MinOrderAmount = decimal.Zero },
			subtotal: "10.10",
			now:      fixedNow,
			want:     "1.52",
		},
		{
			name: "full discount never exceeds subtotal",
			mutate: func(c *model.Coupon) {
				c.DiscountPercent = 100
				c.MaxDiscountAmount = decimal.NewFromInt(10000)
				c.MinOrderAmount = decimal.Zero
			},
			subtotal: "42.42",
			now:      fixedNow,
			want:     "42.42",
		},
		{
			name:     "zero cap",
			mutate:   func(c *model.Coupon) { c.MaxDiscountAmount = decimal.Zero },
			subtotal: "500",
			now:      fixedNow,
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := save20()
			if tt.mutate != nil {
				tt.mutate(c)
			}
			subtotal := decimal.RequireFromString(tt.subtotal)

			got, err := Apply(c, subtotal, tt.now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
			assert.True(t, got.LessThanOrEqual(subtotal))
		})
	}
}

func TestApply_MinOrderNotMetReportsMinimum(t *testing.T) {
	_, err := Apply(save20(), decimal.NewFromInt(150), fixedNow)
	require.Error(t, err)

	de, ok := model.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "200.00", de.Details["minOrderAmount"])
}

func TestApply_DiscountBoundedBySubtotal(t *testing.T) {
	c := &model.Coupon{
		Code:              "ANY",
		MinOrderAmount:    decimal.Zero,
		MaxDiscountAmount: decimal.NewFromInt(250),
		ExpiresAt:         fixedNow.Add(time.Hour),
	}

	for pct := 1; pct <= 100; pct += 7 {
		for _, s := range []string{"0.01", "0.99", "7.77", "199.99", "1000", "12345.67"} {
			c.DiscountPercent = pct
			subtotal := decimal.RequireFromString(s)

			d, err := Apply(c, subtotal, fixedNow)
			require.NoError(t, err)
			assert.False(t, d.IsNegative())
			assert.True(t, d.LessThanOrEqual(subtotal), "pct=%d subtotal=%s discount=%s", pct, s, d)
			assert.True(t, d.LessThanOrEqual(c.MaxDiscountAmount))
		}
	}
}

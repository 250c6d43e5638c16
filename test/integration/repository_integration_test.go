package integration

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"foodmart/internal/coupon"
	"foodmart/internal/model"
	"foodmart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCouponFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return path
}

func TestCouponImport_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	store := repository.NewCouponRepository(testDB.Pool, logger)
	importer := coupon.NewImporter(coupon.NewFileLoader(logger), store, logger)
	expiry := time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339)

	t.Run("later files override earlier ones", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		dir := t.TempDir()

		first := writeCouponFile(t, dir, "week1.gz",
			`{"code":"save20","discountPercent":20,"maxDiscountAmount":"100","minOrderAmount":"200","expiresAt":"`+expiry+`"}`,
			`{"code":"flat50","discountPercent":50,"maxDiscountAmount":"50","minOrderAmount":"0","expiresAt":"`+expiry+`"}`,
		)
		second := writeCouponFile(t, dir, "week2.gz",
			`{"code":"FLAT50","discountPercent":50,"maxDiscountAmount":"50","minOrderAmount":"0","expiresAt":"`+expiry+`","isActive":false}`,
		)

		n, err := importer.Import(ctx, []string{first, second})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		got, err := store.GetActiveByCode(ctx, "SAVE20")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 20, got.DiscountPercent)
		assert.True(t, got.MaxDiscountAmount.Equal(decimal.NewFromInt(100)))

		got, err = store.GetActiveByCode(ctx, "FLAT50")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("imported coupon prices an order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		dir := t.TempDir()

		file := writeCouponFile(t, dir, "promo.gz",
			`{"code":"save20","discountPercent":20,"maxDiscountAmount":"100","minOrderAmount":"200","expiresAt":"`+expiry+`"}`,
		)
		_, err := importer.Import(ctx, []string{file})
		require.NoError(t, err)

		validator := coupon.NewValidator(store, time.Now, logger)

		result, err := validator.Validate(ctx, "SAVE20", decimal.NewFromInt(1000))
		require.NoError(t, err)
		assert.True(t, result.Discount.Equal(decimal.NewFromInt(100)))

		_, err = validator.Validate(ctx, "SAVE20", decimal.NewFromInt(150))
		assert.ErrorIs(t, err, model.ErrMinOrderNotMet)
	})

	t.Run("a broken file writes nothing", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		dir := t.TempDir()

		good := writeCouponFile(t, dir, "good.gz",
			`{"code":"good10","discountPercent":10,"maxDiscountAmount":"20","minOrderAmount":"0","expiresAt":"`+expiry+`"}`,
		)

		_, err := importer.Import(ctx, []string{good, filepath.Join(dir, "missing.gz")})
		require.Error(t, err)

		got, err := store.GetActiveByCode(ctx, "GOOD10")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

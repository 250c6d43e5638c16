package repository

import (
	"context"
	"errors"

	"foodmart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

func (r *couponRepository) GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		SELECT code, discount_percent, max_discount_amount, min_order_amount, expires_at, is_active
		FROM coupons
		WHERE code = $1 AND is_active
	`

	var c model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(&c.Code, &c.DiscountPercent, &c.MaxDiscountAmount,
		&c.MinOrderAmount, &c.ExpiresAt, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to query coupon")
		return nil, storeError("query coupon", err)
	}
	return &c, nil
}

// Upsert writes all coupons in one transaction.
func (r *couponRepository) Upsert(ctx context.Context, coupons []model.Coupon) (n int, err error) {
	if len(coupons) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return 0, storeError("begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback coupon upsert")
			}
		}
	}()

	query := `
		INSERT INTO coupons (code, discount_percent, max_discount_amount, min_order_amount, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO UPDATE
		SET discount_percent = EXCLUDED.discount_percent,
			max_discount_amount = EXCLUDED.max_discount_amount,
			min_order_amount = EXCLUDED.min_order_amount,
			expires_at = EXCLUDED.expires_at,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, c := range coupons {
		batch.Queue(query, c.Code, c.DiscountPercent, c.MaxDiscountAmount, c.MinOrderAmount, c.ExpiresAt, c.IsActive)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range coupons {
		if _, err = results.Exec(); err != nil {
			_ = results.Close()
			r.logger.Error().Err(err).Str("coupon_code", coupons[i].Code).Msg("failed to upsert coupon")
			return 0, storeError("upsert coupon", err)
		}
	}
	if err = results.Close(); err != nil {
		return 0, storeError("upsert coupons", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit coupon upsert")
		return 0, storeError("commit coupons", err)
	}

	r.logger.Info().Int("count", len(coupons)).Msg("coupons upserted")
	return len(coupons), nil
}

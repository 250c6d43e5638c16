package repository

import (
	"context"

	"foodmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// reviewRepository implements the ReviewRepository interface using PostgreSQL.
type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, order_id, customer_id, restaurant_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query, review.ID, review.OrderID, review.CustomerID, review.RestaurantID,
		review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug().Str("order_id", review.OrderID.String()).Msg("order already reviewed")
		} else {
			r.logger.Error().Err(err).Str("order_id", review.OrderID.String()).Msg("failed to create review")
		}
		return storeError("create review", err)
	}
	return nil
}

func (r *reviewRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Review, error) {
	query := `
		SELECT id, order_id, customer_id, restaurant_id, rating, comment, created_at
		FROM reviews
		WHERE restaurant_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to query reviews")
		return nil, storeError("query reviews", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.OrderID, &rv.CustomerID, &rv.RestaurantID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan review row")
			return nil, storeError("scan review", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating review rows")
		return nil, storeError("iterate reviews", err)
	}

	return reviews, nil
}

func (r *reviewRepository) Stats(ctx context.Context, restaurantID uuid.UUID) (decimal.Decimal, int, error) {
	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE restaurant_id = $1`

	var mean decimal.Decimal
	var count int
	if err := r.pool.QueryRow(ctx, query, restaurantID).Scan(&mean, &count); err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to query review stats")
		return decimal.Zero, 0, storeError("query review stats", err)
	}
	return mean, count, nil
}

package repository

import (
	"context"
	"errors"

	"foodmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const restaurantColumns = `id, owner_id, name, address, contact, postal_codes, estimated_prep_minutes,
	cuisine, is_open, is_featured, rating::float8, num_reviews, created_at, updated_at`

// restaurantRepository implements the RestaurantRepository interface using PostgreSQL.
type restaurantRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRestaurantRepository creates a new PostgreSQL-backed restaurant repository.
func NewRestaurantRepository(pool *pgxpool.Pool, logger zerolog.Logger) RestaurantRepository {
	return &restaurantRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "restaurant").Logger(),
	}
}

func scanRestaurant(row pgx.Row) (*model.Restaurant, error) {
	var r model.Restaurant
	err := row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Address, &r.Contact, &r.PostalCodes,
		&r.EstimatedPrepMinutes, &r.Cuisine, &r.IsOpen, &r.IsFeatured, &r.Rating, &r.NumReviews,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *restaurantRepository) Create(ctx context.Context, rest *model.Restaurant) error {
	query := `
		INSERT INTO restaurants (id, owner_id, name, address, contact, postal_codes, estimated_prep_minutes,
			cuisine, is_open, is_featured, rating, num_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query, rest.ID, rest.OwnerID, rest.Name, rest.Address, rest.Contact,
		rest.PostalCodes, rest.EstimatedPrepMinutes, rest.Cuisine, rest.IsOpen, rest.IsFeatured,
		rest.Rating, rest.NumReviews, rest.CreatedAt, rest.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", rest.ID.String()).Msg("failed to create restaurant")
		return storeError("create restaurant", err)
	}

	r.logger.Debug().Str("restaurant_id", rest.ID.String()).Msg("restaurant created")
	return nil
}

func (r *restaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	return r.getOne(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
}

func (r *restaurantRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Restaurant, error) {
	return r.getOne(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE owner_id = $1`, ownerID)
}

func (r *restaurantRepository) getOne(ctx context.Context, query string, args ...any) (*model.Restaurant, error) {
	rest, err := scanRestaurant(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query restaurant")
		return nil, storeError("query restaurant", err)
	}
	return rest, nil
}

func (r *restaurantRepository) Update(ctx context.Context, rest *model.Restaurant) error {
	query := `
		UPDATE restaurants
		SET name = $2, address = $3, contact = $4, postal_codes = $5, estimated_prep_minutes = $6,
			cuisine = $7, is_open = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, rest.ID, rest.Name, rest.Address, rest.Contact, rest.PostalCodes,
		rest.EstimatedPrepMinutes, rest.Cuisine, rest.IsOpen).Scan(&rest.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", rest.ID.String()).Msg("failed to update restaurant")
		return storeError("update restaurant", err)
	}
	return nil
}

func (r *restaurantRepository) ListOpenByPostalCode(ctx context.Context, postalCode string) ([]model.Restaurant, error) {
	query := `
		SELECT ` + restaurantColumns + `
		FROM restaurants
		WHERE is_open AND $1 = ANY(postal_codes)
		ORDER BY rating DESC, name
	`
	return r.list(ctx, query, postalCode)
}

func (r *restaurantRepository) ListFeatured(ctx context.Context) ([]model.Restaurant, error) {
	query := `
		SELECT ` + restaurantColumns + `
		FROM restaurants
		WHERE is_featured AND is_open
		ORDER BY rating DESC, name
	`
	return r.list(ctx, query)
}

func (r *restaurantRepository) Search(ctx context.Context, q string) ([]model.Restaurant, error) {
	query := `
		SELECT ` + restaurantColumns + `
		FROM restaurants
		WHERE name ILIKE '%' || $1 || '%' OR cuisine ILIKE '%' || $1 || '%'
		ORDER BY rating DESC, name
		LIMIT 50
	`
	return r.list(ctx, query, q)
}

func (r *restaurantRepository) list(ctx context.Context, query string, args ...any) ([]model.Restaurant, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query restaurants")
		return nil, storeError("query restaurants", err)
	}
	defer rows.Close()

	restaurants := []model.Restaurant{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan restaurant row")
			return nil, storeError("scan restaurant", err)
		}
		restaurants = append(restaurants, *rest)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating restaurant rows")
		return nil, storeError("iterate restaurants", err)
	}

	return restaurants, nil
}

func (r *restaurantRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*model.Restaurant, error) {
	query := `UPDATE restaurants SET is_featured = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + restaurantColumns

	rest, err := scanRestaurant(r.pool.QueryRow(ctx, query, id, featured))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("restaurant_id", id.String()).Msg("failed to set featured")
		return nil, storeError("set featured", err)
	}
	return rest, nil
}

func (r *restaurantRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error {
	query := `UPDATE restaurants SET rating = $2, num_reviews = $3, updated_at = NOW() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, rating, numReviews); err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", id.String()).Msg("failed to update rating")
		return storeError("update rating", err)
	}
	return nil
}

func (r *restaurantRepository) OwnsRestaurant(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	var owns bool
	query := `SELECT EXISTS (SELECT 1 FROM restaurants WHERE id = $1 AND owner_id = $2)`

	if err := r.pool.QueryRow(ctx, query, restaurantID, userID).Scan(&owns); err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to check ownership")
		return false, storeError("check ownership", err)
	}
	return owns, nil
}

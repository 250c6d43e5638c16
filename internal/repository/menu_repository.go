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

const menuItemColumns = `id, restaurant_id, name, description, category, price, is_veg, is_available, created_at, updated_at`

// menuRepository implements the MenuRepository interface using PostgreSQL.
type menuRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMenuRepository creates a new PostgreSQL-backed menu repository.
func NewMenuRepository(pool *pgxpool.Pool, logger zerolog.Logger) MenuRepository {
	return &menuRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "menu").Logger(),
	}
}

func scanMenuItem(row pgx.Row) (*model.MenuItem, error) {
	var m model.MenuItem
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Category, &m.Price,
		&m.IsVeg, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *menuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	query := `
		INSERT INTO menu_items (` + menuItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query, item.ID, item.RestaurantID, item.Name, item.Description,
		item.Category, item.Price, item.IsVeg, item.IsAvailable, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("menu_item_id", item.ID.String()).Msg("failed to create menu item")
		return storeError("create menu item", err)
	}
	return nil
}

func (r *menuRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

	item, err := scanMenuItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("menu_item_id", id.String()).Msg("menu item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("menu_item_id", id.String()).Msg("failed to query menu item")
		return nil, storeError("query menu item", err)
	}
	return item, nil
}

func (r *menuRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.MenuItem, error) {
	if len(ids) == 0 {
		return []model.MenuItem{}, nil
	}
	return r.list(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = ANY($1)`, ids)
}

func (r *menuRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY category, name
	`
	return r.list(ctx, query, restaurantID)
}

func (r *menuRepository) list(ctx context.Context, query string, args ...any) ([]model.MenuItem, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query menu items")
		return nil, storeError("query menu items", err)
	}
	defer rows.Close()

	items := []model.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu item row")
			return nil, storeError("scan menu item", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu item rows")
		return nil, storeError("iterate menu items", err)
	}

	return items, nil
}

func (r *menuRepository) Update(ctx context.Context, item *model.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $2, description = $3, category = $4, price = $5, is_veg = $6, is_available = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, item.ID, item.Name, item.Description, item.Category,
		item.Price, item.IsVeg, item.IsAvailable).Scan(&item.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("menu_item_id", item.ID.String()).Msg("failed to update menu item")
		return storeError("update menu item", err)
	}
	return nil
}

func (r *menuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("menu_item_id", id.String()).Msg("failed to delete menu item")
		return storeError("delete menu item", err)
	}
	return nil
}

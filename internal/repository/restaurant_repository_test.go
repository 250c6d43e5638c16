package repository

import (
	"context"
	"testing"
	"time"

	"foodmart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestaurantRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixture(t, pool)
	repo := NewRestaurantRepository(pool, zerolog.Nop())

	t.Run("get by id and owner", func(t *testing.T) {
		got, err := repo.GetByID(ctx, f.restaurant.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []string{"110001", "110003"}, got.PostalCodes)
		assert.Equal(t, 25, got.EstimatedPrepMinutes)
		assert.True(t, got.IsOpen)

		mine, err := repo.GetByOwner(ctx, f.owner.ID)
		require.NoError(t, err)
		require.NotNil(t, mine)
		assert.Equal(t, f.restaurant.ID, mine.ID)

		none, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("one restaurant per owner", func(t *testing.T) {
		dup := *f.restaurant
		dup.ID = uuid.New()
		assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicate)
	})

	t.Run("ownership", func(t *testing.T) {
		owns, err := repo.OwnsRestaurant(ctx, f.owner.ID, f.restaurant.ID)
		require.NoError(t, err)
		assert.True(t, owns)

		owns, err = repo.OwnsRestaurant(ctx, f.customer.ID, f.restaurant.ID)
		require.NoError(t, err)
		assert.False(t, owns)
	})

	t.Run("postal code listing", func(t *testing.T) {
		list, err := repo.ListOpenByPostalCode(ctx, "110001")
		require.NoError(t, err)
		require.Len(t, list, 1)

		list, err = repo.ListOpenByPostalCode(ctx, "110002")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("search", func(t *testing.T) {
		list, err := repo.Search(ctx, "spice")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = repo.Search(ctx, "north ind")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = repo.Search(ctx, "sushi")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("featured", func(t *testing.T) {
		list, err := repo.ListFeatured(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		updated, err := repo.SetFeatured(ctx, f.restaurant.ID, true)
		require.NoError(t, err)
		assert.True(t, updated.IsFeatured)

		list, err = repo.ListFeatured(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("update and close", func(t *testing.T) {
		rest, err := repo.GetByID(ctx, f.restaurant.ID)
		require.NoError(t, err)
		rest.Name = "Spice Route Express"
		rest.PostalCodes = []string{"110002"}
		rest.IsOpen = false
		require.NoError(t, repo.Update(ctx, rest))

		got, err := repo.GetByID(ctx, f.restaurant.ID)
		require.NoError(t, err)
		assert.Equal(t, "Spice Route Express", got.Name)
		assert.Equal(t, []string{"110002"}, got.PostalCodes)
		assert.False(t, got.IsOpen)

		list, err := repo.ListOpenByPostalCode(ctx, "110002")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("rating", func(t *testing.T) {
		require.NoError(t, repo.UpdateRating(ctx, f.restaurant.ID, 4.3, 3))
		got, err := repo.GetByID(ctx, f.restaurant.ID)
		require.NoError(t, err)
		assert.InDelta(t, 4.3, got.Rating, 0.001)
		assert.Equal(t, 3, got.NumReviews)
	})
}

func TestMenuRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixture(t, pool)
	repo := NewMenuRepository(pool, zerolog.Nop())

	t.Run("list by restaurant", func(t *testing.T) {
		items, err := repo.ListByRestaurant(ctx, f.restaurant.ID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		// ordered by category then name
		assert.Equal(t, "Dal Makhani", items[0].Name)
	})

	t.Run("get by ids skips unknown", func(t *testing.T) {
		items, err := repo.GetByIDs(ctx, []uuid.UUID{f.items[0].ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].Price.Equal(decimal.NewFromInt(150)))

		items, err = repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("update", func(t *testing.T) {
		item, err := repo.GetByID(ctx, f.items[1].ID)
		require.NoError(t, err)
		item.Price = decimal.RequireFromString("99.50")
		item.IsAvailable = false
		require.NoError(t, repo.Update(ctx, item))

		got, err := repo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "99.50", got.Price.StringFixed(2))
		assert.False(t, got.IsAvailable)
	})

	t.Run("create and delete", func(t *testing.T) {
		now := time.Now()
		item := &model.MenuItem{
			ID: uuid.New(), RestaurantID: f.restaurant.ID, Name: "Lassi", Category: "Drinks",
			Price: decimal.RequireFromString("40"), IsAvailable: true, CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, repo.Create(ctx, item))
		require.NoError(t, repo.Delete(ctx, item.ID))

		got, err := repo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

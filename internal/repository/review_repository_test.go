package repository

import (
	"context"
	"testing"
	"time"

	"foodmart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixture(t, pool)
	orders := NewOrderRepository(pool, zerolog.Nop())
	repo := NewReviewRepository(pool, zerolog.Nop())

	review := func(rating int) *model.Review {
		order := newTestOrder(f, nil)
		order.FulfillmentState = model.StateDelivered
		insertOrder(t, orders, order)
		return &model.Review{
			ID:           uuid.New(),
			OrderID:      order.ID,
			CustomerID:   f.customer.ID,
			RestaurantID: f.restaurant.ID,
			Rating:       rating,
			Comment:      "good",
			CreatedAt:    time.Now(),
		}
	}

	mean, count, err := repo.Stats(ctx, f.restaurant.ID)
	require.NoError(t, err)
	assert.True(t, mean.IsZero())
	assert.Zero(t, count)

	first := review(5)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, review(4)))
	require.NoError(t, repo.Create(ctx, review(4)))

	t.Run("one review per order", func(t *testing.T) {
		dup := *first
		dup.ID = uuid.New()
		assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicate)
	})

	t.Run("stats", func(t *testing.T) {
		mean, count, err := repo.Stats(ctx, f.restaurant.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.Equal(t, "4.3", mean.Round(1).String())
	})

	t.Run("list", func(t *testing.T) {
		list, err := repo.ListByRestaurant(ctx, f.restaurant.ID)
		require.NoError(t, err)
		assert.Len(t, list, 3)

		list, err = repo.ListByRestaurant(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

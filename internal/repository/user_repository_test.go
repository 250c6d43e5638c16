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

func TestUserRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool, zerolog.Nop())

	customer := seedUser(t, repo, model.RoleCustomer)

	t.Run("get by id and email", func(t *testing.T) {
		byID, err := repo.GetByID(ctx, customer.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, customer.Email, byID.Email)
		assert.Equal(t, "hash", byID.PasswordHash)
		assert.Equal(t, model.RoleCustomer, byID.Role)

		byEmail, err := repo.GetByEmail(ctx, customer.Email)
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, customer.ID, byEmail.ID)
	})

	t.Run("missing", func(t *testing.T) {
		u, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, u)

		u, err = repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("duplicate email", func(t *testing.T) {
		now := time.Now()
		dup := &model.User{
			ID: uuid.New(), Name: "x", Email: customer.Email, PasswordHash: "h",
			Role: model.RoleCustomer, CreatedAt: now, UpdatedAt: now,
		}
		assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)
	})

	t.Run("role change", func(t *testing.T) {
		u := seedUser(t, repo, model.RoleCustomer)
		_, err := repo.SetOnline(ctx, u.ID, true)
		require.NoError(t, err)

		updated, err := repo.UpdateRole(ctx, u.ID, model.RoleDelivery, false)
		require.NoError(t, err)
		assert.Equal(t, model.RoleDelivery, updated.Role)
		assert.False(t, updated.IsOnline)
		assert.False(t, updated.IsBlocked)

		updated, err = repo.UpdateRole(ctx, u.ID, model.RoleRestaurant, true)
		require.NoError(t, err)
		assert.True(t, updated.IsBlocked)
	})

	t.Run("block and online toggles", func(t *testing.T) {
		u, err := repo.SetBlocked(ctx, customer.ID, true)
		require.NoError(t, err)
		assert.True(t, u.IsBlocked)

		u, err = repo.SetOnline(ctx, customer.ID, true)
		require.NoError(t, err)
		assert.True(t, u.IsOnline)
		assert.True(t, u.IsBlocked)

		u, err = repo.SetBlocked(ctx, uuid.New(), true)
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("list", func(t *testing.T) {
		users, err := repo.List(ctx, 100, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(users), 2)

		users, err = repo.List(ctx, 1, 0)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

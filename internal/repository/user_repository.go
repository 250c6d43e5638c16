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

const userColumns = `id, name, email, password_hash, phone, role, is_blocked, is_online, created_at, updated_at`

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role,
		&u.IsBlocked, &u.IsOnline, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, phone, role, is_blocked, is_online, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.Phone,
		user.Role, user.IsBlocked, user.IsOnline, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to create user")
		return storeError("create user", err)
	}

	r.logger.Debug().Str("user_id", user.ID.String()).Msg("user created")
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user")
		return nil, storeError("query user", err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query users")
		return nil, storeError("query users", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan user row")
			return nil, storeError("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating user rows")
		return nil, storeError("iterate users", err)
	}

	return users, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role, blocked bool) (*model.User, error) {
	query := `
		UPDATE users SET role = $2, is_blocked = $3, is_online = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.updateOne(ctx, "update role", query, id, role, blocked)
}

func (r *userRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*model.User, error) {
	query := `UPDATE users SET is_blocked = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	return r.updateOne(ctx, "set blocked", query, id, blocked)
}

func (r *userRepository) SetOnline(ctx context.Context, id uuid.UUID, online bool) (*model.User, error) {
	query := `UPDATE users SET is_online = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	return r.updateOne(ctx, "set online", query, id, online)
}

func (r *userRepository) updateOne(ctx context.Context, op, query string, id uuid.UUID, args ...any) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id.String()).Msgf("failed to %s", op)
		return nil, storeError(op, err)
	}
	return user, nil
}

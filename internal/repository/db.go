package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"foodmart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"
)

var (
	// ErrStatusMismatch is returned by conditional order updates when the
	// stored state no longer equals the expected one.
	ErrStatusMismatch = errors.New("order state changed")

	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// storeError wraps err with the failed operation. Connection failures are
// tagged with model.ErrStoreUnavailable and unique violations with
// ErrDuplicate so callers can branch on them with errors.Is.
func storeError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("failed to %s: %w: %w", op, ErrDuplicate, err)
	case isConnectionError(err):
		return fmt.Errorf("failed to %s: %w: %w", op, model.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if errors.Is(err, puddle.ErrClosedPool) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

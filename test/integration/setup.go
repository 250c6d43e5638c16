package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"foodmart/internal/auth"
	"foodmart/internal/coupon"
	"foodmart/internal/database"
	"foodmart/internal/events"
	"foodmart/internal/handler"
	"foodmart/internal/model"
	"foodmart/internal/payment"
	"foodmart/internal/repository"
	"foodmart/internal/router"
	"foodmart/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testJWTSecret     = "integration-secret-0123456789"
	testWebhookSecret = "whsec_integration"
)

// TestDB represents a migrated test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the embedded
// migrations and opens a pool on it.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.MigrateUp(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := database.Open(ctx, poolConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	ch chan events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	select {
	case p.ch <- e:
	default:
	}
	return nil
}

// Server is the full HTTP stack on a test database.
type Server struct {
	Handler   http.Handler
	Pool      *pgxpool.Pool
	Signer    *payment.Signer
	Published *recordingPublisher
}

// NewServer wires repositories, services and handlers the way serve does.
func NewServer(t *testing.T, testDB *TestDB) *Server {
	t.Helper()

	logger := zerolog.Nop()
	pool := testDB.Pool

	userRepo := repository.NewUserRepository(pool, logger)
	restaurantRepo := repository.NewRestaurantRepository(pool, logger)
	menuRepo := repository.NewMenuRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)

	tokens := auth.NewTokenManager(testJWTSecret, time.Hour)
	signer := payment.NewSigner(testWebhookSecret)
	publisher := &recordingPublisher{ch: make(chan events.OrderEvent, 256)}

	couponValidator := coupon.NewValidator(couponRepo, time.Now, logger)

	validate := handler.NewValidator()
	handlers := router.Handlers{
		Health: handler.NewHealthHandler(pool, logger),
		Auth:   handler.NewAuthHandler(service.NewAuthService(userRepo, tokens, logger), validate, logger),
		Restaurant: handler.NewRestaurantHandler(
			service.NewRestaurantService(restaurantRepo, logger), validate, logger),
		Menu: handler.NewMenuHandler(
			service.NewMenuService(menuRepo, restaurantRepo, logger), validate, logger),
		Order: handler.NewOrderHandler(
			service.NewOrderService(orderRepo, restaurantRepo, menuRepo, couponValidator, publisher, true, logger),
			validate, logger),
		Review: handler.NewReviewHandler(
			service.NewReviewService(reviewRepo, orderRepo, restaurantRepo, logger), validate, logger),
		Delivery: handler.NewDeliveryHandler(service.NewDeliveryService(userRepo, orderRepo, logger), logger),
		Admin: handler.NewAdminHandler(
			service.NewAdminService(userRepo, restaurantRepo, orderRepo, publisher, logger), validate, logger),
		Payment: handler.NewPaymentHandler(
			service.NewPaymentService(orderRepo, signer, publisher, logger), validate, logger),
	}

	return &Server{
		Handler:   router.New(handlers, tokens, userRepo, []string{"*"}, logger),
		Pool:      pool,
		Signer:    signer,
		Published: publisher,
	}
}

// SeedAdmin inserts an admin account directly, since admins cannot register.
func SeedAdmin(t *testing.T, pool *pgxpool.Pool, email, password string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	err = repository.NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), &model.User{
		ID:           uuid.New(),
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Phone:        "7000000000",
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
}

// SeedCoupon stores an active coupon.
func SeedCoupon(t *testing.T, pool *pgxpool.Pool, c model.Coupon) {
	t.Helper()

	n, err := repository.NewCouponRepository(pool, zerolog.Nop()).Upsert(context.Background(), []model.Coupon{c})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

// CleanupDB removes every row, children first.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"reviews", "order_items", "orders", "menu_items", "restaurants", "coupons", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

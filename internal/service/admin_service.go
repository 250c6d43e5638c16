package service

import (
	"context"
	"errors"
	"fmt"

	"foodmart/internal/events"
	"foodmart/internal/model"
	"foodmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// adminService implements AdminService.
type adminService struct {
	users       repository.UserRepository
	restaurants repository.RestaurantRepository
	orders      repository.OrderRepository
	publisher   events.Publisher
	logger      zerolog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	users repository.UserRepository,
	restaurants repository.RestaurantRepository,
	orders repository.OrderRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) AdminService {
	return &adminService{
		users:       users,
		restaurants: restaurants,
		orders:      orders,
		publisher:   publisher,
		logger:      logger.With().Str("service", "admin").Logger(),
	}
}

func (s *adminService) ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *adminService) ListOrders(ctx context.Context, limit, offset int) ([]model.Order, error) {
	orders, err := s.orders.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ToggleBlock flips the blocked flag. Unblocking a restaurant account is
// how its application is approved.
func (s *adminService) ToggleBlock(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleAdmin {
		return nil, model.ErrInvalidState.With("Admin accounts cannot be blocked", map[string]any{"userId": userID})
	}

	updated, err := s.users.SetBlocked(ctx, userID, !user.IsBlocked)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle block: %w", err)
	}
	if updated == nil {
		return nil, model.ErrUserNotFound
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Bool("blocked", updated.IsBlocked).
		Msg("user block toggled")
	return updated, nil
}

func (s *adminService) ToggleFeatured(ctx context.Context, restaurantID uuid.UUID) (*model.Restaurant, error) {
	r, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if r == nil {
		return nil, model.ErrRestaurantNotFound
	}

	updated, err := s.restaurants.SetFeatured(ctx, restaurantID, !r.IsFeatured)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle featured: %w", err)
	}
	if updated == nil {
		return nil, model.ErrRestaurantNotFound
	}
	return updated, nil
}

// AssignPartner binds a delivery partner to an order that has not finished.
func (s *adminService) AssignPartner(ctx context.Context, orderID, partnerID uuid.UUID) (*model.Order, error) {
	partner, err := loadUser(ctx, s.users, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.Role != model.RoleDelivery {
		return nil, model.ErrInvalidState.With(
			"User is not a delivery partner",
			map[string]any{"userId": partnerID, "role": partner.Role},
		)
	}

	existing, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if existing == nil {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orders.AssignPartner(ctx, orderID, partnerID)
	if errors.Is(err, repository.ErrStatusMismatch) {
		return nil, model.ErrInvalidState.With(
			"Cannot assign a partner to a finished order",
			map[string]any{"orderId": orderID, "current": existing.FulfillmentState},
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to assign partner: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("partner_id", partnerID.String()).
		Msg("delivery partner assigned")
	publish(ctx, s.publisher, s.logger, events.OrderPartnerAssigned, order)
	return order, nil
}

func (s *adminService) Analytics(ctx context.Context) (*model.Analytics, error) {
	a, err := s.orders.Analytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute analytics: %w", err)
	}
	return a, nil
}

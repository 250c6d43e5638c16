package service

import (
	"context"
	"fmt"

	"foodmart/internal/model"
	"foodmart/internal/repository"

	"github.com/rs/zerolog"
)

// deliveryService implements DeliveryService.
type deliveryService struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	logger zerolog.Logger
}

// NewDeliveryService creates a new delivery service.
func NewDeliveryService(users repository.UserRepository, orders repository.OrderRepository, logger zerolog.Logger) DeliveryService {
	return &deliveryService{
		users:  users,
		orders: orders,
		logger: logger.With().Str("service", "delivery").Logger(),
	}
}

func (s *deliveryService) ToggleAvailability(ctx context.Context, caller model.Caller) (*model.User, error) {
	user, err := loadUser(ctx, s.users, caller.ID)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.SetOnline(ctx, caller.ID, !user.IsOnline)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle availability: %w", err)
	}
	if updated == nil {
		return nil, model.ErrUserNotFound
	}

	s.logger.Info().
		Str("user_id", caller.ID.String()).
		Bool("online", updated.IsOnline).
		Msg("availability changed")
	return updated, nil
}

func (s *deliveryService) Profile(ctx context.Context, caller model.Caller) (*model.DeliveryProfile, error) {
	user, err := loadUser(ctx, s.users, caller.ID)
	if err != nil {
		return nil, err
	}

	delivered, err := s.orders.CountDelivered(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count deliveries: %w", err)
	}

	return &model.DeliveryProfile{User: user, TotalDelivered: delivered}, nil
}

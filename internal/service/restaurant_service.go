package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodmart/internal/model"
	"foodmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// restaurantService implements RestaurantService.
type restaurantService struct {
	restaurants repository.RestaurantRepository
	logger      zerolog.Logger
}

// NewRestaurantService creates a new restaurant service.
func NewRestaurantService(restaurants repository.RestaurantRepository, logger zerolog.Logger) RestaurantService {
	return &restaurantService{
		restaurants: restaurants,
		logger:      logger.With().Str("service", "restaurant").Logger(),
	}
}

func (s *restaurantService) ListByPostalCode(ctx context.Context, postalCode string) ([]model.Restaurant, error) {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		return nil, model.ErrInvalidInput.With("postalCode is required", nil)
	}

	list, err := s.restaurants.ListOpenByPostalCode(ctx, postalCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return list, nil
}

func (s *restaurantService) Featured(ctx context.Context) ([]model.Restaurant, error) {
	list, err := s.restaurants.ListFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured restaurants: %w", err)
	}
	return list, nil
}

func (s *restaurantService) Search(ctx context.Context, query string) ([]model.Restaurant, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Restaurant{}, nil
	}

	list, err := s.restaurants.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}
	return list, nil
}

func (s *restaurantService) GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	r, err := s.restaurants.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if r == nil {
		return nil, model.ErrRestaurantNotFound
	}
	return r, nil
}

func (s *restaurantService) Create(ctx context.Context, caller model.Caller, req *model.RestaurantRequest) (*model.Restaurant, error) {
	now := time.Now().UTC()
	r := &model.Restaurant{
		ID:                   uuid.New(),
		OwnerID:              caller.ID,
		Name:                 req.Name,
		Address:              req.Address,
		Contact:              req.Contact,
		PostalCodes:          req.PostalCodes,
		EstimatedPrepMinutes: req.EstimatedPrepMinutes,
		Cuisine:              req.Cuisine,
		IsOpen:               true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.restaurants.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.ErrConflict.With("You already own a restaurant", nil)
		}
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}

	s.logger.Info().
		Str("restaurant_id", r.ID.String()).
		Str("owner_id", caller.ID.String()).
		Msg("restaurant created")
	return r, nil
}

func (s *restaurantService) Mine(ctx context.Context, caller model.Caller) (*model.Restaurant, error) {
	r, err := s.restaurants.GetByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if r == nil {
		return nil, model.ErrRestaurantNotFound.With("Restaurant not found for this user", nil)
	}
	return r, nil
}

func (s *restaurantService) UpdateMine(ctx context.Context, caller model.Caller, update *model.RestaurantUpdate) (*model.Restaurant, error) {
	r, err := s.Mine(ctx, caller)
	if err != nil {
		return nil, err
	}

	update.Apply(r)
	if err := s.restaurants.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update restaurant: %w", err)
	}
	return r, nil
}

func (s *restaurantService) ToggleOpen(ctx context.Context, caller model.Caller) (*model.Restaurant, error) {
	r, err := s.Mine(ctx, caller)
	if err != nil {
		return nil, err
	}

	r.IsOpen = !r.IsOpen
	if err := s.restaurants.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update restaurant: %w", err)
	}

	s.logger.Info().
		Str("restaurant_id", r.ID.String()).
		Bool("open", r.IsOpen).
		Msg("restaurant availability changed")
	return r, nil
}

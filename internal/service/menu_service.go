package service

import (
	"context"
	"fmt"
	"time"

	"foodmart/internal/model"
	"foodmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// menuService implements MenuService.
type menuService struct {
	menu        repository.MenuRepository
	restaurants repository.RestaurantRepository
	logger      zerolog.Logger
}

// NewMenuService creates a new menu service.
func NewMenuService(menu repository.MenuRepository, restaurants repository.RestaurantRepository, logger zerolog.Logger) MenuService {
	return &menuService{
		menu:        menu,
		restaurants: restaurants,
		logger:      logger.With().Str("service", "menu").Logger(),
	}
}

func (s *menuService) List(ctx context.Context, restaurantID uuid.UUID) ([]model.MenuItem, error) {
	items, err := s.menu.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	return items, nil
}

func (s *menuService) Add(ctx context.Context, caller model.Caller, restaurantID uuid.UUID, req *model.MenuItemRequest) (*model.MenuItem, error) {
	r, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if r == nil {
		return nil, model.ErrRestaurantNotFound
	}
	if r.OwnerID != caller.ID {
		return nil, model.ErrForbidden.With("Not authorized to add menu items to this restaurant", nil)
	}

	now := time.Now().UTC()
	item := &model.MenuItem{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price.Round(2),
		IsVeg:        req.IsVeg,
		IsAvailable:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.menu.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add menu item: %w", err)
	}

	s.logger.Info().
		Str("menu_item_id", item.ID.String()).
		Str("restaurant_id", restaurantID.String()).
		Msg("menu item added")
	return item, nil
}

func (s *menuService) Update(ctx context.Context, caller model.Caller, itemID uuid.UUID, update *model.MenuItemUpdate) (*model.MenuItem, error) {
	item, err := s.owned(ctx, caller, itemID)
	if err != nil {
		return nil, err
	}

	update.Apply(item)
	item.Price = item.Price.Round(2)
	if err := s.menu.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	return item, nil
}

func (s *menuService) Delete(ctx context.Context, caller model.Caller, itemID uuid.UUID) error {
	if _, err := s.owned(ctx, caller, itemID); err != nil {
		return err
	}

	if err := s.menu.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	s.logger.Info().Str("menu_item_id", itemID.String()).Msg("menu item removed")
	return nil
}

// owned loads a menu item that belongs to a restaurant owned by caller.
func (s *menuService) owned(ctx context.Context, caller model.Caller, itemID uuid.UUID) (*model.MenuItem, error) {
	item, err := s.menu.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return nil, model.ErrMenuItemNotFound
	}

	owns, err := s.restaurants.OwnsRestaurant(ctx, caller.ID, item.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check restaurant ownership: %w", err)
	}
	if !owns {
		return nil, model.ErrForbidden.With("Not authorized to change this menu item", nil)
	}
	return item, nil
}

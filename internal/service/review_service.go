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

// reviewService implements ReviewService.
type reviewService struct {
	reviews     repository.ReviewRepository
	orders      repository.OrderRepository
	restaurants repository.RestaurantRepository
	logger      zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	orders repository.OrderRepository,
	restaurants repository.RestaurantRepository,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		reviews:     reviews,
		orders:      orders,
		restaurants: restaurants,
		logger:      logger.With().Str("service", "review").Logger(),
	}
}

// Submit records a review of a delivered order and refreshes the
// restaurant's rating aggregate.
func (s *reviewService) Submit(ctx context.Context, caller model.Caller, req *model.ReviewRequest) (*model.Review, error) {
	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.CustomerID != caller.ID {
		return nil, model.ErrForbidden.With("Not authorized to review this order", nil)
	}
	if order.FulfillmentState != model.StateDelivered {
		return nil, model.ErrInvalidState.With(
			"You can only review delivered orders",
			map[string]any{"current": order.FulfillmentState},
		)
	}
	if req.RestaurantID != nil && *req.RestaurantID != order.RestaurantID {
		return nil, model.ErrInvalidInput.With(
			"restaurantId does not match the order",
			map[string]any{"restaurantId": *req.RestaurantID},
		)
	}

	review := &model.Review{
		ID:           uuid.New(),
		OrderID:      order.ID,
		CustomerID:   caller.ID,
		RestaurantID: order.RestaurantID,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.ErrConflict.With("Order has already been reviewed", map[string]any{"orderId": order.ID})
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	// The aggregate is recomputed from all reviews after the insert. Two
	// reviews landing together can each write a count that misses the
	// other; the next review corrects it. The stored review stands even
	// when the recompute fails.
	if err := s.refreshRating(ctx, order.RestaurantID); err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", order.RestaurantID.String()).Msg("failed to refresh rating")
	}

	s.logger.Info().
		Str("review_id", review.ID.String()).
		Str("order_id", order.ID.String()).
		Int("rating", review.Rating).
		Msg("review recorded")
	return review, nil
}

func (s *reviewService) refreshRating(ctx context.Context, restaurantID uuid.UUID) error {
	mean, count, err := s.reviews.Stats(ctx, restaurantID)
	if err != nil {
		return fmt.Errorf("failed to compute rating: %w", err)
	}

	rating, _ := mean.Round(1).Float64()
	if err := s.restaurants.UpdateRating(ctx, restaurantID, rating, count); err != nil {
		return fmt.Errorf("failed to store rating: %w", err)
	}
	return nil
}

func (s *reviewService) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Review, error) {
	reviews, err := s.reviews.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

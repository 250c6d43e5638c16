package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodmart/internal/coupon"
	"foodmart/internal/events"
	"foodmart/internal/lifecycle"
	"foodmart/internal/model"
	"foodmart/internal/pricing"
	"foodmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// incomingStates are the states a restaurant still has to act on.
var incomingStates = []model.FulfillmentState{
	model.StatePlaced,
	model.StateAccepted,
	model.StatePreparing,
	model.StateReady,
}

// orderService implements OrderService.
type orderService struct {
	orders         repository.OrderRepository
	restaurants    repository.RestaurantRepository
	catalog        pricing.Catalog
	validator      coupon.Validator
	publisher      events.Publisher
	onlinePayments bool
	logger         zerolog.Logger
}

// NewOrderService creates a new order service. With onlinePayments set,
// every new order gets a provider order id the payment gateway confirms
// against.
func NewOrderService(
	orders repository.OrderRepository,
	restaurants repository.RestaurantRepository,
	catalog pricing.Catalog,
	validator coupon.Validator,
	publisher events.Publisher,
	onlinePayments bool,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orders:         orders,
		restaurants:    restaurants,
		catalog:        catalog,
		validator:      validator,
		publisher:      publisher,
		onlinePayments: onlinePayments,
		logger:         logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder creates a new order. A coupon that fails validation fails
// the whole order.
func (s *orderService) CreateOrder(ctx context.Context, caller model.Caller, req *model.OrderRequest) (order *model.Order, err error) {
	if len(req.Items) == 0 {
		return nil, model.ErrNoItems
	}

	restaurant, err := s.restaurants.GetByID(ctx, req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, model.ErrRestaurantNotFound
	}
	if !restaurant.IsOpen {
		return nil, model.ErrInvalidState.With(
			"Restaurant is currently closed",
			map[string]any{"restaurantId": restaurant.ID},
		)
	}
	if !pricing.CanServe(restaurant, req.DeliveryPostalCode) {
		return nil, model.ErrUnservicedArea.With(
			fmt.Sprintf("Restaurant does not serve postal code %s", req.DeliveryPostalCode),
			map[string]any{"postalCode": req.DeliveryPostalCode},
		)
	}

	subtotal, lines, err := pricing.PriceOrder(ctx, restaurant.ID, req.Items, s.catalog)
	if err != nil {
		s.logger.Warn().Err(err).Str("restaurant_id", restaurant.ID.String()).Msg("pricing failed")
		return nil, err
	}

	discount := decimal.Zero
	var couponCode *string
	if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
		result, err := s.validator.Validate(ctx, *req.CouponCode, subtotal)
		if err != nil {
			s.logger.Warn().
				Str("coupon_code", *req.CouponCode).
				Err(err).
				Msg("invalid coupon code")
			return nil, err
		}
		discount = result.Discount
		code := result.Code
		couponCode = &code
	}

	now := time.Now().UTC()
	order = &model.Order{
		ID:                 uuid.New(),
		CustomerID:         caller.ID,
		RestaurantID:       restaurant.ID,
		Items:              lines,
		Subtotal:           subtotal,
		Discount:           discount,
		CouponCode:         couponCode,
		DeliveryPostalCode: req.DeliveryPostalCode,
		PaymentState:       model.PaymentPending,
		FulfillmentState:   model.StatePlaced,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if s.onlinePayments {
		providerOrderID := "order_" + uuid.NewString()
		order.ProviderOrderID = &providerOrderID
	}

	tx, err := s.orders.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orders.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orders.CreateOrderItems(ctx, tx, order.ID, lines); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("subtotal", subtotal.StringFixed(2)).
		Str("discount", discount.StringFixed(2)).
		Int("item_count", len(lines)).
		Msg("order created successfully")

	publish(ctx, s.publisher, s.logger, events.OrderCreated, order)
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, caller model.Caller, id uuid.UUID, req *model.StatusUpdateRequest) (*model.Order, error) {
	// customers are refused before the order is even looked up
	if !lifecycle.Drives(caller.Role) {
		return nil, lifecycle.ErrRoleCannotDrive
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	change, err := lifecycle.Plan(ctx, order, req.Status, caller, req.EstimatedPrepMinutes, s.restaurants)
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.UpdateFulfillment(ctx, id, order.FulfillmentState, *change)
	if errors.Is(err, repository.ErrStatusMismatch) {
		fresh, _ := s.orders.GetByID(ctx, id)
		if fresh != nil && change.Partner != nil &&
			fresh.DeliveryPartnerID != nil && *fresh.DeliveryPartnerID != *change.Partner {
			s.logger.Info().
				Str("order_id", id.String()).
				Str("partner_id", fresh.DeliveryPartnerID.String()).
				Msg("order assigned to another partner before update")
			return nil, model.ErrForbidden.With("Not assigned to this order", nil)
		}
		current := order.FulfillmentState
		if fresh != nil {
			current = fresh.FulfillmentState
		}
		s.logger.Info().
			Str("order_id", id.String()).
			Str("requested", string(change.To)).
			Msg("lost concurrent status update")
		return nil, model.InvalidTransitionError(current, change.To)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(order.FulfillmentState)).
		Str("to", string(updated.FulfillmentState)).
		Str("role", string(caller.Role)).
		Msg("order status updated")

	publish(ctx, s.publisher, s.logger, events.OrderStatusChanged, updated)
	return updated, nil
}

func (s *orderService) Cancel(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := lifecycle.CheckCancel(order, caller.ID); err != nil {
		return nil, err
	}

	updated, err := s.orders.UpdateFulfillment(ctx, id, model.StatePlaced, model.StatusChange{To: model.StateCancelled})
	if errors.Is(err, repository.ErrStatusMismatch) {
		return nil, model.ErrInvalidState.With(
			"Order can only be cancelled while it is placed",
			map[string]any{"current": s.currentState(ctx, id, order.FulfillmentState)},
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order cancelled")
	publish(ctx, s.publisher, s.logger, events.OrderCancelled, updated)
	return updated, nil
}

// GetByID returns an order visible to caller. Customers see their own
// orders, restaurants the orders of the restaurant they own, and delivery
// partners and admins any order.
func (s *orderService) GetByID(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case model.RoleAdmin, model.RoleDelivery:
		return order, nil
	case model.RoleRestaurant:
		owns, err := s.restaurants.OwnsRestaurant(ctx, caller.ID, order.RestaurantID)
		if err != nil {
			return nil, fmt.Errorf("failed to check restaurant ownership: %w", err)
		}
		if owns {
			return order, nil
		}
	default:
		if order.CustomerID == caller.ID {
			return order, nil
		}
	}
	return nil, model.ErrForbidden.With("Not authorized to view this order", nil)
}

func (s *orderService) ListMine(ctx context.Context, caller model.Caller) ([]model.Order, error) {
	orders, err := s.orders.ListByCustomer(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListIncoming(ctx context.Context, caller model.Caller) ([]model.Order, error) {
	restaurant, err := s.restaurants.GetByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, model.ErrRestaurantNotFound.With("Restaurant not found for this user", nil)
	}

	orders, err := s.orders.ListByRestaurant(ctx, restaurant.ID, incomingStates)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListForDelivery(ctx context.Context, caller model.Caller) ([]model.Order, error) {
	orders, err := s.orders.ListForDelivery(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) CheckCoupon(ctx context.Context, req *model.CouponCheckRequest) (*model.CouponCheckResponse, error) {
	result, err := s.validator.Validate(ctx, req.Code, req.Amount)
	if err != nil {
		return nil, err
	}
	return &model.CouponCheckResponse{
		Code:        result.Code,
		Discount:    result.Discount,
		FinalAmount: req.Amount.Sub(result.Discount),
	}, nil
}

func (s *orderService) load(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// currentState re-reads the state after a lost conditional update.
func (s *orderService) currentState(ctx context.Context, id uuid.UUID, fallback model.FulfillmentState) model.FulfillmentState {
	if fresh, err := s.orders.GetByID(ctx, id); err == nil && fresh != nil {
		return fresh.FulfillmentState
	}
	return fallback
}

// publish emits an order event. Delivery failures are logged and never
// fail the operation that produced the event.
func publish(ctx context.Context, p events.Publisher, logger zerolog.Logger, eventType string, order *model.Order) {
	if err := p.Publish(ctx, events.NewOrderEvent(eventType, order, time.Now())); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("order_id", order.ID.String()).
			Msg("failed to publish order event")
	}
}

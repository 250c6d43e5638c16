package service

import (
	"context"
	"fmt"

	"foodmart/internal/events"
	"foodmart/internal/model"
	"foodmart/internal/payment"
	"foodmart/internal/repository"

	"github.com/rs/zerolog"
)

// paymentService implements PaymentService.
type paymentService struct {
	orders    repository.OrderRepository
	signer    *payment.Signer
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewPaymentService creates a new payment service. A nil signer disables
// confirmations.
func NewPaymentService(orders repository.OrderRepository, signer *payment.Signer, publisher events.Publisher, logger zerolog.Logger) PaymentService {
	return &paymentService{
		orders:    orders,
		signer:    signer,
		publisher: publisher,
		logger:    logger.With().Str("service", "payment").Logger(),
	}
}

func (s *paymentService) Confirm(ctx context.Context, req *model.PaymentConfirmation) (*model.Order, error) {
	if s.signer == nil {
		return nil, model.ErrPaymentsDisabled
	}
	if !s.signer.Verify(req.ProviderOrderID, req.ProviderPaymentID, req.Signature) {
		s.logger.Warn().
			Str("provider_order_id", req.ProviderOrderID).
			Msg("payment signature mismatch")
		return nil, model.ErrSignatureMismatch
	}

	order, err := s.orders.MarkPaid(ctx, req.ProviderOrderID, req.ProviderPaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound.With(
			"No order for this payment",
			map[string]any{"providerOrderId": req.ProviderOrderID},
		)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("provider_payment_id", req.ProviderPaymentID).
		Msg("payment confirmed")
	publish(ctx, s.publisher, s.logger, events.OrderPaid, order)
	return order, nil
}

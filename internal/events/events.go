// Package events publishes order lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodmart/internal/awsclient"
	"foodmart/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event types.
const (
	OrderCreated         = "order.created"
	OrderStatusChanged   = "order.status_changed"
	OrderCancelled       = "order.cancelled"
	OrderPartnerAssigned = "order.partner_assigned"
	OrderPaid            = "order.paid"
)

// OrderEvent is the message body published for an order change.
type OrderEvent struct {
	Type              string                 `json:"type"`
	OrderID           uuid.UUID              `json:"orderId"`
	RestaurantID      uuid.UUID              `json:"restaurantId"`
	CustomerID        uuid.UUID              `json:"customerId"`
	DeliveryPartnerID *uuid.UUID             `json:"deliveryPartnerId,omitempty"`
	FulfillmentState  model.FulfillmentState `json:"fulfillmentState"`
	PaymentState      model.PaymentState     `json:"paymentState"`
	At                time.Time              `json:"at"`
}

// NewOrderEvent builds an event from the current order snapshot.
func NewOrderEvent(eventType string, o *model.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:              eventType,
		OrderID:           o.ID,
		RestaurantID:      o.RestaurantID,
		CustomerID:        o.CustomerID,
		DeliveryPartnerID: o.DeliveryPartnerID,
		FulfillmentState:  o.FulfillmentState,
		PaymentState:      o.PaymentState,
		At:                at.UTC(),
	}
}

// Publisher delivers order events.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// sqsPublisher sends events to an SQS queue.
type sqsPublisher struct {
	client   awsclient.SQSAPI
	queueURL string
	logger   zerolog.Logger
}

// NewSQSPublisher returns a Publisher bound to a queue URL.
func NewSQSPublisher(client awsclient.SQSAPI, queueURL string, logger zerolog.Logger) Publisher {
	return &sqsPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger.With().Str("component", "sqs-publisher").Logger(),
	}
}

// Publish sends the event as JSON with event_type and order_id attributes.
func (p *sqsPublisher) Publish(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(event.Type)},
			"order_id":   {DataType: aws.String("String"), StringValue: aws.String(event.OrderID.String())},
		},
	}

	out, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	p.logger.Debug().
		Str("event_type", event.Type).
		Str("order_id", event.OrderID.String()).
		Str("message_id", aws.ToString(out.MessageId)).
		Msg("order event published")

	return nil
}

// Nop discards every event. It is used when no queue is configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, OrderEvent) error { return nil }

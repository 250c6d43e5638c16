package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FulfillmentState is the delivery pipeline position of an order.
type FulfillmentState string

const (
	StatePlaced         FulfillmentState = "placed"
	StateAccepted       FulfillmentState = "accepted"
	StatePreparing      FulfillmentState = "preparing"
	StateReady          FulfillmentState = "ready"
	StateOutForDelivery FulfillmentState = "out-for-delivery"
	StateDelivered      FulfillmentState = "delivered"
	StateCancelled      FulfillmentState = "cancelled"
)

var fulfillmentStates = map[FulfillmentState]struct{}{
	StatePlaced:         {},
	StateAccepted:       {},
	StatePreparing:      {},
	StateReady:          {},
	StateOutForDelivery: {},
	StateDelivered:      {},
	StateCancelled:      {},
}

// ParseFulfillmentState converts s into a known state.
func ParseFulfillmentState(s string) (FulfillmentState, bool) {
	state := FulfillmentState(s)
	_, ok := fulfillmentStates[state]
	return state, ok
}

// Terminal reports whether no further state change is permitted.
func (s FulfillmentState) Terminal() bool {
	return s == StateDelivered || s == StateCancelled
}

// PaymentState is independent of fulfilment.
type PaymentState string

const (
	PaymentPending PaymentState = "pending"
	PaymentPaid    PaymentState = "paid"
	PaymentFailed  PaymentState = "failed"
)

// Order represents a placed customer order.
type Order struct {
	ID                   uuid.UUID        `json:"id" db:"id"`
	CustomerID           uuid.UUID        `json:"customerId" db:"customer_id"`
	RestaurantID         uuid.UUID        `json:"restaurantId" db:"restaurant_id"`
	DeliveryPartnerID    *uuid.UUID       `json:"deliveryPartnerId,omitempty" db:"delivery_partner_id"`
	Items                []LineItem       `json:"items"`
	Subtotal             decimal.Decimal  `json:"subtotal" db:"subtotal"`
	Discount             decimal.Decimal  `json:"discount" db:"discount"`
	CouponCode           *string          `json:"couponCode,omitempty" db:"coupon_code"`
	DeliveryPostalCode   string           `json:"deliveryPostalCode" db:"delivery_postal_code"`
	PaymentState         PaymentState     `json:"paymentState" db:"payment_state"`
	ProviderOrderID      *string          `json:"providerOrderId,omitempty" db:"provider_order_id"`
	ProviderPaymentID    *string          `json:"providerPaymentId,omitempty" db:"provider_payment_id"`
	FulfillmentState     FulfillmentState `json:"fulfillmentState" db:"fulfillment_state"`
	EstimatedPrepMinutes *int             `json:"estimatedPrepMinutes,omitempty" db:"estimated_prep_minutes"`
	CreatedAt            time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time        `json:"updatedAt" db:"updated_at"`
}

// Total is the amount payable after discount.
func (o *Order) Total() decimal.Decimal {
	return o.Subtotal.Sub(o.Discount)
}

// LineItem is one priced entry of an order. UnitPrice is the catalog price
// at the time the order was placed.
type LineItem struct {
	MenuItemID uuid.UUID       `json:"menuItemId" db:"menu_item_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// StatusChange describes the fields a lifecycle transition may write.
type StatusChange struct {
	To                   FulfillmentState
	BindPartner          *uuid.UUID
	EstimatedPrepMinutes *int
	// Partner, when set, must be the bound delivery partner or no partner
	// may be bound yet. An existing binding is never replaced.
	Partner *uuid.UUID
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	RestaurantID       uuid.UUID          `json:"restaurantId" validate:"required"`
	Items              []OrderItemRequest `json:"items" validate:"dive"`
	DeliveryPostalCode string             `json:"deliveryPostalCode" validate:"required"`
	CouponCode         *string            `json:"couponCode,omitempty"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	MenuItemID uuid.UUID `json:"menuItemId" validate:"required"`
	Quantity   int       `json:"quantity" validate:"min=1,max=1000"`
}

// StatusUpdateRequest is the payload for a lifecycle transition.
type StatusUpdateRequest struct {
	Status               string `json:"status" validate:"required"`
	EstimatedPrepMinutes *int   `json:"estimatedPrepMinutes,omitempty" validate:"omitempty,min=1"`
}

// AssignPartnerRequest is the admin payload for manual partner assignment.
type AssignPartnerRequest struct {
	DeliveryPartnerID uuid.UUID `json:"deliveryPartnerId" validate:"required"`
}

// PaymentConfirmation is the signed callback from the payment gateway.
type PaymentConfirmation struct {
	ProviderOrderID   string `json:"providerOrderId" validate:"required"`
	ProviderPaymentID string `json:"providerPaymentId" validate:"required"`
	Signature         string `json:"signature" validate:"required"`
}

// Analytics is the admin dashboard aggregate.
type Analytics struct {
	TotalOrders     int64           `json:"totalOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	DeliveredOrders int64           `json:"deliveredOrders"`
	CancelledOrders int64           `json:"cancelledOrders"`
}

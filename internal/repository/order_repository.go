package repository

import (
	"context"
	"errors"

	"foodmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, customer_id, restaurant_id, delivery_partner_id, subtotal, discount, coupon_code,
	delivery_postal_code, payment_state, provider_order_id, provider_payment_id, fulfillment_state,
	estimated_prep_minutes, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.RestaurantID, &o.DeliveryPartnerID, &o.Subtotal, &o.Discount,
		&o.CouponCode, &o.DeliveryPostalCode, &o.PaymentState, &o.ProviderOrderID, &o.ProviderPaymentID,
		&o.FulfillmentState, &o.EstimatedPrepMinutes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, storeError("begin transaction", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.Exec(ctx, query, order.ID, order.CustomerID, order.RestaurantID, order.DeliveryPartnerID,
		order.Subtotal, order.Discount, order.CouponCode, order.DeliveryPostalCode, order.PaymentState,
		order.ProviderOrderID, order.ProviderPaymentID, order.FulfillmentState, order.EstimatedPrepMinutes,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return storeError("create order", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts the line items of an order within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (order_id, position, menu_item_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query, orderID, i, item.MenuItemID, item.Quantity, item.UnitPrice)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", orderID.String()).
				Str("menu_item_id", items[i].MenuItemID.String()).
				Msg("failed to create order item")
			return storeError("create order item", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, storeError("query order", err)
	}

	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateFulfillment is a compare-and-set on fulfillment_state. Of two
// concurrent writers expecting the same state exactly one matches a row.
// When change.Partner is set the row must also be unbound or bound to that
// partner, so an assignment made after the caller's read is never overwritten.
func (r *orderRepository) UpdateFulfillment(ctx context.Context, id uuid.UUID, expected model.FulfillmentState, change model.StatusChange) (*model.Order, error) {
	query := `
		UPDATE orders
		SET fulfillment_state = $3,
			delivery_partner_id = COALESCE(delivery_partner_id, $4),
			estimated_prep_minutes = COALESCE($5, estimated_prep_minutes),
			updated_at = NOW()
		WHERE id = $1 AND fulfillment_state = $2
			AND ($6::uuid IS NULL OR delivery_partner_id IS NULL OR delivery_partner_id = $6)
		RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query,
		id, expected, change.To, change.BindPartner, change.EstimatedPrepMinutes, change.Partner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Str("order_id", id.String()).
				Str("expected", string(expected)).
				Str("to", string(change.To)).
				Msg("order state changed before update")
			return nil, ErrStatusMismatch
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order state")
		return nil, storeError("update order state", err)
	}

	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) AssignPartner(ctx context.Context, id, partnerID uuid.UUID) (*model.Order, error) {
	query := `
		UPDATE orders
		SET delivery_partner_id = $2, updated_at = NOW()
		WHERE id = $1 AND fulfillment_state NOT IN ('delivered', 'cancelled')
		RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, partnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusMismatch
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to assign partner")
		return nil, storeError("assign partner", err)
	}

	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, providerOrderID, providerPaymentID string) (*model.Order, error) {
	query := `
		UPDATE orders
		SET payment_state = 'paid', provider_payment_id = $2, updated_at = NOW()
		WHERE provider_order_id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query, providerOrderID, providerPaymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("provider_order_id", providerOrderID).Msg("failed to mark order paid")
		return nil, storeError("mark order paid", err)
	}

	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, customerID)
}

func (r *orderRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, states []model.FulfillmentState) ([]model.Order, error) {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE restaurant_id = $1 AND fulfillment_state = ANY($2)
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, restaurantID, names)
}

func (r *orderRepository) ListForDelivery(ctx context.Context, partnerID uuid.UUID) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE (fulfillment_state = 'ready' AND (delivery_partner_id IS NULL OR delivery_partner_id = $1))
			OR (delivery_partner_id = $1 AND fulfillment_state IN ('out-for-delivery', 'delivered'))
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, partnerID)
}

func (r *orderRepository) ListAll(ctx context.Context, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, storeError("query orders", err)
	}
	defer rows.Close()

	var ptrs []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, storeError("scan order", err)
		}
		ptrs = append(ptrs, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, storeError("iterate orders", err)
	}
	rows.Close()

	if err := r.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}

	orders := make([]model.Order, len(ptrs))
	for i, o := range ptrs {
		orders[i] = *o
	}
	return orders, nil
}

// attachItems loads the line items of all orders in a single query.
func (r *orderRepository) attachItems(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*model.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		o.Items = []model.LineItem{}
		byID[o.ID] = o
	}

	query := `
		SELECT order_id, menu_item_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return storeError("query order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var item model.LineItem
		if err := rows.Scan(&orderID, &item.MenuItemID, &item.Quantity, &item.UnitPrice); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return storeError("scan order item", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return storeError("iterate order items", err)
	}

	return nil
}

func (r *orderRepository) Analytics(ctx context.Context) (*model.Analytics, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(subtotal - discount) FILTER (WHERE fulfillment_state <> 'cancelled'), 0),
			COUNT(*) FILTER (WHERE fulfillment_state = 'delivered'),
			COUNT(*) FILTER (WHERE fulfillment_state = 'cancelled')
		FROM orders
	`

	var a model.Analytics
	err := r.pool.QueryRow(ctx, query).Scan(&a.TotalOrders, &a.TotalRevenue, &a.DeliveredOrders, &a.CancelledOrders)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query analytics")
		return nil, storeError("query analytics", err)
	}
	return &a, nil
}

func (r *orderRepository) CountDelivered(ctx context.Context, partnerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM orders WHERE delivery_partner_id = $1 AND fulfillment_state = 'delivered'`

	var n int64
	if err := r.pool.QueryRow(ctx, query, partnerID).Scan(&n); err != nil {
		r.logger.Error().Err(err).Str("partner_id", partnerID.String()).Msg("failed to count deliveries")
		return 0, storeError("count deliveries", err)
	}
	return n, nil
}

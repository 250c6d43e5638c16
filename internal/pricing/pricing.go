// Package pricing computes order amounts from authoritative catalog data.
package pricing

import (
	"context"
	"fmt"

	"foodmart/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog resolves menu items by id. Missing ids are simply absent from the
// result.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.MenuItem, error)
}

// PriceOrder prices the requested items against the catalog of restaurantID.
// Client supplied prices are never consulted; the returned line items carry
// the catalog price used.
func PriceOrder(
	ctx context.Context,
	restaurantID uuid.UUID,
	items []model.OrderItemRequest,
	catalog Catalog,
) (decimal.Decimal, []model.LineItem, error) {
	if len(items) == 0 {
		return decimal.Zero, nil, model.ErrNoItems
	}

	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.MenuItemID]; ok {
			continue
		}
		seen[it.MenuItemID] = struct{}{}
		ids = append(ids, it.MenuItemID)
	}

	found, err := catalog.GetByIDs(ctx, ids)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("failed to load menu items: %w", err)
	}

	byID := make(map[uuid.UUID]model.MenuItem, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	subtotal := decimal.Zero
	lines := make([]model.LineItem, 0, len(items))
	for _, it := range items {
		m, ok := byID[it.MenuItemID]
		switch {
		case !ok:
			return decimal.Zero, nil, model.InvalidLineItemError(it.MenuItemID.String(), "not found")
		case m.RestaurantID != restaurantID:
			return decimal.Zero, nil, model.InvalidLineItemError(it.MenuItemID.String(), "belongs to another restaurant")
		case !m.IsAvailable:
			return decimal.Zero, nil, model.InvalidLineItemError(it.MenuItemID.String(), "unavailable")
		}

		subtotal = subtotal.Add(m.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		lines = append(lines, model.LineItem{
			MenuItemID: m.ID,
			Quantity:   it.Quantity,
			UnitPrice:  m.Price,
		})
	}

	return subtotal, lines, nil
}

// CanServe reports whether the restaurant delivers to postalCode. Matching is
// exact; no normalisation or prefix matching is applied.
func CanServe(r *model.Restaurant, postalCode string) bool {
	for _, pc := range r.PostalCodes {
		if pc == postalCode {
			return true
		}
	}
	return false
}

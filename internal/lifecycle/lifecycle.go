// Package lifecycle holds the order fulfilment state machine. The forward
// sequence and the roles allowed to drive each step live in a static table;
// callers persist the returned change with a conditional update.
package lifecycle

import (
	"context"
	"fmt"

	"foodmart/internal/model"

	"github.com/google/uuid"
)

// Transition is one edge of the fulfilment graph.
type Transition struct {
	From  model.FulfillmentState
	To    model.FulfillmentState
	Roles []model.Role
}

// Sequence is the forward order of fulfilment states. Cancelled is not part
// of it and is only reachable through Cancel.
var Sequence = []model.FulfillmentState{
	model.StatePlaced,
	model.StateAccepted,
	model.StatePreparing,
	model.StateReady,
	model.StateOutForDelivery,
	model.StateDelivered,
}

// Transitions lists every permitted forward move.
var Transitions = []Transition{
	{From: model.StatePlaced, To: model.StateAccepted, Roles: []model.Role{model.RoleRestaurant}},
	{From: model.StateAccepted, To: model.StatePreparing, Roles: []model.Role{model.RoleRestaurant}},
	{From: model.StatePreparing, To: model.StateReady, Roles: []model.Role{model.RoleRestaurant}},
	{From: model.StateReady, To: model.StateOutForDelivery, Roles: []model.Role{model.RoleDelivery}},
	{From: model.StateOutForDelivery, To: model.StateDelivered, Roles: []model.Role{model.RoleDelivery}},
}

var byTarget = func() map[model.FulfillmentState]Transition {
	m := make(map[model.FulfillmentState]Transition, len(Transitions))
	for _, t := range Transitions {
		m[t.To] = t
	}
	return m
}()

// OwnershipChecker reports whether a user owns a restaurant.
type OwnershipChecker interface {
	OwnsRestaurant(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error)
}

// ErrRoleCannotDrive is returned to roles that take part in no transition.
var ErrRoleCannotDrive = model.ErrForbidden.With("Only restaurant and delivery accounts may update order status", nil)

// Drives reports whether role may perform at least one transition.
func Drives(role model.Role) bool {
	for _, t := range Transitions {
		if allows(t, role) {
			return true
		}
	}
	return false
}

// Index returns the position of s in Sequence, or -1.
func Index(s model.FulfillmentState) int {
	for i, st := range Sequence {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the state following s in the forward sequence.
func Next(s model.FulfillmentState) (model.FulfillmentState, bool) {
	i := Index(s)
	if i < 0 || i+1 >= len(Sequence) {
		return "", false
	}
	return Sequence[i+1], true
}

// Plan decides whether caller may move order to the requested status and
// returns the change to persist. Only the status, the partner binding and
// the preparation estimate are ever part of the change.
func Plan(
	ctx context.Context,
	order *model.Order,
	requested string,
	caller model.Caller,
	eta *int,
	owners OwnershipChecker,
) (*model.StatusChange, error) {
	if !Drives(caller.Role) {
		return nil, ErrRoleCannotDrive
	}

	target, ok := model.ParseFulfillmentState(requested)
	if !ok {
		return nil, model.ErrInvalidStatus.With(
			fmt.Sprintf("Invalid status: %s", requested),
			map[string]any{"requested": requested},
		)
	}

	current := order.FulfillmentState
	cur, req := Index(current), Index(target)
	if cur < 0 || req < 0 || req != cur+1 {
		return nil, model.InvalidTransitionError(current, target)
	}

	step := byTarget[target]
	if !allows(step, caller.Role) {
		return nil, model.ErrForbidden.With(
			fmt.Sprintf("Role %s cannot set status %s", caller.Role, target),
			map[string]any{"role": caller.Role, "requested": target},
		)
	}

	change := &model.StatusChange{To: target}

	switch caller.Role {
	case model.RoleRestaurant:
		owns, err := owners.OwnsRestaurant(ctx, caller.ID, order.RestaurantID)
		if err != nil {
			return nil, fmt.Errorf("failed to check restaurant ownership: %w", err)
		}
		if !owns {
			return nil, model.ErrForbidden.With("Not your restaurant's order", nil)
		}
		if target == model.StateAccepted && eta != nil {
			change.EstimatedPrepMinutes = eta
		}

	case model.RoleDelivery:
		if order.DeliveryPartnerID != nil && *order.DeliveryPartnerID != caller.ID {
			return nil, model.ErrForbidden.With("Not assigned to this order", nil)
		}
		id := caller.ID
		change.Partner = &id
		if order.DeliveryPartnerID == nil {
			change.BindPartner = &id
		}
	}

	return change, nil
}

// CheckCancel verifies that customerID may cancel order.
func CheckCancel(order *model.Order, customerID uuid.UUID) error {
	if order.CustomerID != customerID {
		return model.ErrForbidden.With("Only the customer who placed the order can cancel it", nil)
	}
	if order.FulfillmentState != model.StatePlaced {
		return model.ErrInvalidState.With(
			"Order can only be cancelled while it is placed",
			map[string]any{"current": order.FulfillmentState},
		)
	}
	return nil
}

func allows(t Transition, role model.Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

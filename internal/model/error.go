package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindForbidden         ErrorKind = "forbidden"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindInvalidInput      ErrorKind = "invalid_input"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindInvalidState      ErrorKind = "invalid_state"
	KindConflict          ErrorKind = "conflict"
	KindUnavailable       ErrorKind = "external_dependency_unavailable"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	ErrCodeNoItems            = "NO_ITEMS"
	ErrCodeRestaurantNotFound = "RESTAURANT_NOT_FOUND"
	ErrCodeUnservicedArea     = "UNSERVICED_AREA"
	ErrCodeInvalidLineItem    = "INVALID_LINE_ITEM"
	ErrCodeCouponNotFound     = "COUPON_NOT_FOUND"
	ErrCodeCouponExpired      = "COUPON_EXPIRED"
	ErrCodeMinOrderNotMet     = "MIN_ORDER_NOT_MET"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeInvalidState       = "INVALID_STATE"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeMenuItemNotFound   = "MENU_ITEM_NOT_FOUND"
	ErrCodeSignatureMismatch  = "SIGNATURE_MISMATCH"
	ErrCodePaymentsDisabled   = "PAYMENTS_NOT_CONFIGURED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountBlocked     = "ACCOUNT_BLOCKED"
)

// DomainError is a business rule failure. Two domain errors match under
// errors.Is when their codes are equal, so sentinels below can be compared
// against errors that carry request-specific details.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// With returns a copy of e carrying the given message and details.
func (e *DomainError) With(message string, details map[string]any) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: message,
		Details: details,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// AsDomainError extracts a DomainError from err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrForbidden          = NewDomainError(KindForbidden, ErrCodeForbidden, "Not permitted")
	ErrUnauthorised       = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Authentication required")
	ErrInvalidInput       = NewDomainError(KindInvalidInput, ErrCodeValidation, "Invalid request")
	ErrConflict           = NewDomainError(KindConflict, ErrCodeConflict, "Resource already exists")
	ErrStoreUnavailable   = NewDomainError(KindUnavailable, ErrCodeStoreUnavailable, "Data store is unavailable")
	ErrNoItems            = NewDomainError(KindInvalidInput, ErrCodeNoItems, "Order must contain at least one item")
	ErrRestaurantNotFound = NewDomainError(KindNotFound, ErrCodeRestaurantNotFound, "Restaurant not found")
	ErrUnservicedArea     = NewDomainError(KindInvalidInput, ErrCodeUnservicedArea, "Restaurant does not serve this postal code")
	ErrInvalidLineItem    = NewDomainError(KindInvalidInput, ErrCodeInvalidLineItem, "Invalid menu item")
	ErrCouponNotFound     = NewDomainError(KindNotFound, ErrCodeCouponNotFound, "Coupon not found or inactive")
	ErrCouponExpired      = NewDomainError(KindInvalidInput, ErrCodeCouponExpired, "Coupon has expired")
	ErrMinOrderNotMet     = NewDomainError(KindInvalidInput, ErrCodeMinOrderNotMet, "Minimum order amount not met")
	ErrInvalidStatus      = NewDomainError(KindInvalidInput, ErrCodeInvalidStatus, "Invalid status")
	ErrInvalidTransition  = NewDomainError(KindInvalidTransition, ErrCodeInvalidTransition, "Invalid status transition")
	ErrInvalidState       = NewDomainError(KindInvalidState, ErrCodeInvalidState, "Operation not valid in the current state")
	ErrOrderNotFound      = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound       = NewDomainError(KindNotFound, ErrCodeUserNotFound, "User not found")
	ErrMenuItemNotFound   = NewDomainError(KindNotFound, ErrCodeMenuItemNotFound, "Menu item not found")
	ErrSignatureMismatch  = NewDomainError(KindInvalidInput, ErrCodeSignatureMismatch, "Payment signature mismatch")
	ErrPaymentsDisabled   = NewDomainError(KindNotFound, ErrCodePaymentsDisabled, "Payment gateway is not configured")
	ErrInvalidCredentials = NewDomainError(KindUnauthorized, ErrCodeInvalidCredentials, "Invalid email or password")
	ErrAccountBlocked     = NewDomainError(KindUnauthorized, ErrCodeAccountBlocked, "Your account is blocked. Please contact admin.")
)

// InvalidTransitionError reports a rejected status change.
func InvalidTransitionError(current, requested FulfillmentState) *DomainError {
	return ErrInvalidTransition.With(
		fmt.Sprintf("Invalid status transition. Cannot go from %s to %s", current, requested),
		map[string]any{"current": current, "requested": requested},
	)
}

// InvalidLineItemError names the offending catalog item.
func InvalidLineItemError(itemID, reason string) *DomainError {
	return ErrInvalidLineItem.With(
		fmt.Sprintf("Invalid menu item: %s (%s)", itemID, reason),
		map[string]any{"menuItemId": itemID, "reason": reason},
	)
}

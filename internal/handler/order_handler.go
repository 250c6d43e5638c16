package handler

import (
	"context"
	"net/http"

	"foodmart/internal/model"
	"foodmart/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service  service.OrderService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, validate *validator.Validate, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.OrderRequest
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), c, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// UpdateStatus handles PATCH /api/orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), c, id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles PATCH /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.Cancel(r.Context(), c, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), c, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Mine handles GET /api/orders/mine requests.
func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListMine)
}

// Incoming handles GET /api/orders/incoming requests.
func (h *OrderHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListIncoming)
}

// Delivery handles GET /api/orders/delivery requests.
func (h *OrderHandler) Delivery(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListForDelivery)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, c model.Caller) ([]model.Order, error)) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := fetch(r.Context(), c)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// ValidateCoupon handles POST /api/coupons/validate requests.
func (h *OrderHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req model.CouponCheckRequest
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	resp, err := h.service.CheckCoupon(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

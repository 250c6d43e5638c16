package handler

import (
	"net/http"

	"foodmart/internal/model"
	"foodmart/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// DeliveryHandler handles the delivery partner's own requests.
type DeliveryHandler struct {
	service service.DeliveryService
	logger  zerolog.Logger
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(service service.DeliveryService, logger zerolog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		service: service,
		logger:  logger.With().Str("handler", "delivery").Logger(),
	}
}

// ToggleAvailability handles PATCH /api/delivery/availability requests.
func (h *DeliveryHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	user, err := h.service.ToggleAvailability(r.Context(), c)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Profile handles GET /api/delivery/profile requests.
func (h *DeliveryHandler) Profile(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	profile, err := h.service.Profile(r.Context(), c)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// AdminHandler handles marketplace administration requests.
type AdminHandler struct {
	service  service.AdminService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.AdminService, validate *validator.Validate, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

// Users handles GET /api/admin/users requests.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Orders handles GET /api/admin/orders requests.
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// Analytics handles GET /api/admin/analytics requests.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Analytics(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ToggleBlock handles PATCH /api/admin/users/{id}/block requests.
func (h *AdminHandler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	user, err := h.service.ToggleBlock(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ToggleFeatured handles PATCH /api/admin/restaurants/{id}/featured requests.
func (h *AdminHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	restaurant, err := h.service.ToggleFeatured(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

// AssignPartner handles PATCH /api/admin/orders/{id}/assign requests.
func (h *AdminHandler) AssignPartner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.AssignPartnerRequest
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.AssignPartner(r.Context(), id, req.DeliveryPartnerID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

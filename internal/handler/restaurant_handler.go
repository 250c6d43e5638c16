package handler

import (
	"net/http"

	"foodmart/internal/model"
	"foodmart/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// RestaurantHandler handles restaurant HTTP requests.
type RestaurantHandler struct {
	service  service.RestaurantService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewRestaurantHandler creates a new restaurant handler.
func NewRestaurantHandler(service service.RestaurantService, validate *validator.Validate, logger zerolog.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("handler", "restaurant").Logger(),
	}
}

// ListByPostalCode handles GET /api/restaurants?postalCode= requests.
func (h *RestaurantHandler) ListByPostalCode(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByPostalCode(r.Context(), r.URL.Query().Get("postalCode"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Featured handles GET /api/restaurants/featured requests.
func (h *RestaurantHandler) Featured(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Featured(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Search handles GET /api/restaurants/search?q= requests.
func (h *RestaurantHandler) Search(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetByID handles GET /api/restaurants/{id} requests.
func (h *RestaurantHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	restaurant, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

// Create handles POST /api/restaurants requests.
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.RestaurantRequest
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	restaurant, err := h.service.Create(r.Context(), c, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, restaurant)
}

// Mine handles GET /api/restaurants/mine requests.
func (h *RestaurantHandler) Mine(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	restaurant, err := h.service.Mine(r.Context(), c)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

// UpdateMine handles PUT /api/restaurants/mine requests.
func (h *RestaurantHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.RestaurantUpdate
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	restaurant, err := h.service.UpdateMine(r.Context(), c, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

// ToggleOpen handles PATCH /api/restaurants/mine/open requests.
func (h *RestaurantHandler) ToggleOpen(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	restaurant, err := h.service.ToggleOpen(r.Context(), c)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

// MenuHandler handles menu HTTP requests.
type MenuHandler struct {
	service  service.MenuService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(service service.MenuService, validate *validator.Validate, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("handler", "menu").Logger(),
	}
}

// List handles GET /api/restaurants/{id}/menu requests.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	items, err := h.service.List(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Add handles POST /api/menu/{restaurantId} requests.
func (h *MenuHandler) Add(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	restaurantID, err := pathID(r, "restaurantId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.MenuItemRequest
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	item, err := h.service.Add(r.Context(), c, restaurantID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/menu/items/{id} requests.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req model.MenuItemUpdate
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	item, err := h.service.Update(r.Context(), c, id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/menu/items/{id} requests.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Delete(r.Context(), c, id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

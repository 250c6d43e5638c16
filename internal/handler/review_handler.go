package handler

import (
	"net/http"

	"foodmart/internal/model"
	"foodmart/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ReviewHandler handles review HTTP requests.
type ReviewHandler struct {
	service  service.ReviewService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(service service.ReviewService, validate *validator.Validate, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("handler", "review").Logger(),
	}
}

// Submit handles POST /api/reviews requests.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ReviewRequest
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	review, err := h.service.Submit(r.Context(), c, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// ListByRestaurant handles GET /api/reviews/restaurant/{id} requests.
func (h *ReviewHandler) ListByRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	reviews, err := h.service.ListByRestaurant(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

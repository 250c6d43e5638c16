package handler

import (
	"context"
	"net/http"

	"foodmart/internal/model"
	"foodmart/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// PaymentHandler handles payment gateway callbacks.
type PaymentHandler struct {
	service  service.PaymentService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, validate *validator.Validate, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("handler", "payment").Logger(),
	}
}

// Confirm handles POST /api/payments/confirm requests.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentConfirmation
	if err := decode(r, h.validate, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.Confirm(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Pinger reports whether the data store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	db     Pinger
	logger zerolog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger.With().Str("handler", "health").Logger(),
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "up"})
}

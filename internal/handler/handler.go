package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"foodmart/internal/middleware"
	"foodmart/internal/model"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError renders err as an ErrorResponse. Domain errors keep their
// code and details; anything else is reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	reqID := chimiddleware.GetReqID(r.Context())

	de, ok := model.AsDomainError(err)
	if !ok {
		logger.Error().
			Err(err).
			Str("request_id", reqID).
			Str("path", r.URL.Path).
			Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:         model.ErrCodeInternalError,
			Message:       "Internal server error",
			CorrelationID: reqID,
		})
		return
	}

	status := StatusFor(de.Kind)
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error().Err(err)
	}
	event.
		Str("request_id", reqID).
		Str("code", de.Code).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("request rejected")

	writeJSON(w, status, model.ErrorResponse{
		Error:         de.Code,
		Message:       de.Message,
		Details:       de.Details,
		CorrelationID: reqID,
	})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	case model.KindInvalidInput:
		return http.StatusBadRequest
	case model.KindInvalidTransition, model.KindInvalidState, model.KindConflict:
		return http.StatusConflict
	case model.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, v *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(model.KindInvalidInput, model.ErrCodeInvalidJSON, "Invalid request body")
	}
	if err := v.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.ErrInvalidInput.With(err.Error(), nil)
	}

	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return model.ErrInvalidInput.With("Validation failed", map[string]any{"fields": fields})
}

// pathID parses the named URL parameter as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.ErrInvalidInput.With("Invalid id", map[string]any{name: raw})
	}
	return id, nil
}

// caller returns the authenticated caller. Routes behind the
// authentication middleware always have one.
func caller(r *http.Request) (model.Caller, error) {
	c, ok := middleware.CallerFrom(r.Context())
	if !ok {
		return model.Caller{}, model.ErrUnauthorised
	}
	return c, nil
}

// page reads limit and offset query parameters.
func page(r *http.Request) (limit, offset int, err error) {
	limit, offset = defaultPageSize, 0
	q := r.URL.Query()

	if s := q.Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 1 {
			return 0, 0, model.ErrInvalidInput.With("limit must be a positive integer", map[string]any{"limit": s})
		}
		limit = min(n, maxPageSize)
	}
	if s := q.Get("offset"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 0 {
			return 0, 0, model.ErrInvalidInput.With("offset must be a non-negative integer", map[string]any{"offset": s})
		}
		offset = n
	}
	return limit, offset, nil
}

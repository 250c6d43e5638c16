package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"foodmart/internal/model"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type callerKey struct{}

// TokenParser validates a bearer token and returns the identity it carries.
type TokenParser interface {
	Parse(token string) (model.Caller, error)
}

// UserLookup loads the current state of an account.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c model.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the authenticated caller stored in ctx.
func CallerFrom(ctx context.Context) (model.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(model.Caller)
	return c, ok
}

// Authenticate validates the bearer token and reloads the account on every
// request, so role changes and blocks apply immediately. The role in the
// stored account wins over the one in the token.
func Authenticate(tokens TokenParser, users UserLookup, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("middleware", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimiddleware.GetReqID(r.Context())

			token, ok := bearerToken(r)
			if !ok {
				logger.Debug().Str("path", r.URL.Path).Msg("missing bearer token")
				writeDomainError(w, model.ErrUnauthorised, reqID)
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeDomainError(w, model.ErrUnauthorised.With("Invalid or expired token", nil), reqID)
				return
			}

			user, err := users.GetByID(r.Context(), claims.ID)
			if err != nil {
				logger.Error().Err(err).Str("user_id", claims.ID.String()).Msg("failed to load caller")
				if errors.Is(err, model.ErrStoreUnavailable) {
					writeDomainError(w, model.ErrStoreUnavailable, reqID)
					return
				}
				writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "Internal server error", reqID)
				return
			}
			if user == nil {
				writeDomainError(w, model.ErrUnauthorised.With("Account no longer exists", nil), reqID)
				return
			}
			if user.IsBlocked {
				writeDomainError(w, model.ErrAccountBlocked, reqID)
				return
			}

			ctx := WithCaller(r.Context(), model.Caller{ID: user.ID, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits only callers holding one of roles.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimiddleware.GetReqID(r.Context())

			c, ok := CallerFrom(r.Context())
			if !ok {
				writeDomainError(w, model.ErrUnauthorised, reqID)
				return
			}
			for _, role := range roles {
				if c.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeDomainError(w, model.ErrForbidden.With(
				"Role "+string(c.Role)+" is not allowed to access this resource",
				map[string]any{"role": c.Role},
			), reqID)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeDomainError(w http.ResponseWriter, de *model.DomainError, reqID string) {
	status := http.StatusUnauthorized
	switch de.Kind {
	case model.KindForbidden:
		status = http.StatusForbidden
	case model.KindUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, model.ErrorResponse{
		Error:         de.Code,
		Message:       de.Message,
		Details:       de.Details,
		CorrelationID: reqID,
	})
}

func writeError(w http.ResponseWriter, status int, code, message, reqID string) {
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message, CorrelationID: reqID})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package router

import (
	"net/http"
	"time"

	"foodmart/internal/handler"
	"foodmart/internal/middleware"
	"foodmart/internal/model"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Restaurant *handler.RestaurantHandler
	Menu       *handler.MenuHandler
	Order      *handler.OrderHandler
	Review     *handler.ReviewHandler
	Delivery   *handler.DeliveryHandler
	Admin      *handler.AdminHandler
	Payment    *handler.PaymentHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	h Handlers,
	tokens middleware.TokenParser,
	users middleware.UserLookup,
	allowedOrigins []string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.ServeHTTP)

	authenticate := middleware.Authenticate(tokens, users, logger)
	customer := middleware.RequireRole(model.RoleCustomer)
	restaurant := middleware.RequireRole(model.RoleRestaurant)
	delivery := middleware.RequireRole(model.RoleDelivery)
	admin := middleware.RequireRole(model.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/payments/confirm", h.Payment.Confirm)

		r.Get("/restaurants", h.Restaurant.ListByPostalCode)
		r.Get("/restaurants/featured", h.Restaurant.Featured)
		r.Get("/restaurants/search", h.Restaurant.Search)
		r.Get("/restaurants/{id}", h.Restaurant.GetByID)
		r.Get("/restaurants/{id}/menu", h.Menu.List)
		r.Get("/reviews/restaurant/{id}", h.Review.ListByRestaurant)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/auth/profile", h.Auth.Profile)
			r.Post("/coupons/validate", h.Order.ValidateCoupon)
			r.Get("/orders/{id}", h.Order.GetByID)

			r.With(customer).Post("/users/apply-delivery", h.Auth.ApplyDelivery)
			r.With(customer).Post("/users/apply-restaurant", h.Auth.ApplyRestaurant)

			r.Group(func(r chi.Router) {
				r.Use(restaurant)
				r.Get("/restaurants/mine", h.Restaurant.Mine)
				r.Post("/restaurants", h.Restaurant.Create)
				r.Put("/restaurants/mine", h.Restaurant.UpdateMine)
				r.Patch("/restaurants/mine/open", h.Restaurant.ToggleOpen)

				r.Post("/menu/{restaurantId}", h.Menu.Add)
				r.Put("/menu/items/{id}", h.Menu.Update)
				r.Delete("/menu/items/{id}", h.Menu.Delete)

				r.Get("/orders/incoming", h.Order.Incoming)
			})

			r.Group(func(r chi.Router) {
				r.Use(customer)
				r.Post("/orders", h.Order.Create)
				r.Get("/orders/mine", h.Order.Mine)
				r.Patch("/orders/{id}/cancel", h.Order.Cancel)
				r.Post("/reviews", h.Review.Submit)
			})

			// The lifecycle decides which of the two roles may take each step.
			r.With(middleware.RequireRole(model.RoleRestaurant, model.RoleDelivery)).
				Patch("/orders/{id}/status", h.Order.UpdateStatus)

			r.Group(func(r chi.Router) {
				r.Use(delivery)
				r.Get("/orders/delivery", h.Order.Delivery)
				r.Patch("/delivery/availability", h.Delivery.ToggleAvailability)
				r.Get("/delivery/profile", h.Delivery.Profile)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(admin)
				r.Get("/users", h.Admin.Users)
				r.Get("/orders", h.Admin.Orders)
				r.Get("/analytics", h.Admin.Analytics)
				r.Patch("/users/{id}/block", h.Admin.ToggleBlock)
				r.Patch("/restaurants/{id}/featured", h.Admin.ToggleFeatured)
				r.Patch("/orders/{id}/assign", h.Admin.AssignPartner)
			})
		})
	})

	return r
}

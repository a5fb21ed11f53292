package router

import (
	"net/http"

	"vinoteca/internal/handler"
	"vinoteca/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Health    *handler.HealthHandler
	Products  *handler.ProductHandler
	Orders    *handler.OrderHandler
	Customers *handler.CustomerHandler
	Documents *handler.DocumentHandler
	Chat      *handler.ChatHandler
	Admin     *handler.AdminHandler

	Reservations *handler.ReservationHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// Only /api/admin requires the API key.
func New(h Handlers, adminAPIKey string, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = handler.NotFound(logger)
	r.MethodNotAllowedHandler = handler.MethodNotAllowed(logger)

	r.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)

	// Admin routes live on their own subrouter so the API key applies to them
	// only. Public routes stay on r: a method mismatch inside a nested
	// subrouter would otherwise surface as 404.
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.MethodNotAllowedHandler = handler.MethodNotAllowed(logger)
	admin.Use(middleware.APIKeyAuth(adminAPIKey, logger))
	admin.HandleFunc("/products", h.Admin.ListProducts).Methods(http.MethodGet)
	admin.HandleFunc("/products", h.Admin.CreateProduct).Methods(http.MethodPost)
	admin.HandleFunc("/products/low-stock", h.Admin.LowStock).Methods(http.MethodGet)
	admin.HandleFunc("/products/{id}", h.Admin.UpdateProduct).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id}", h.Admin.DeactivateProduct).Methods(http.MethodDelete)
	admin.HandleFunc("/products/{id}/stock", h.Admin.SetStock).Methods(http.MethodPut)
	admin.HandleFunc("/orders", h.Admin.ListOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/expire", h.Admin.ExpireOrders).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/status", h.Admin.UpdateOrderStatus).Methods(http.MethodPut)
	admin.HandleFunc("/customers", h.Customers.List).Methods(http.MethodGet)
	admin.HandleFunc("/reservations", h.Reservations.List).Methods(http.MethodGet)
	admin.HandleFunc("/reservations/{id}/status", h.Reservations.UpdateStatus).Methods(http.MethodPut)

	// Static segments are registered before {id} so they win the match.
	r.HandleFunc("/api/products", h.Products.List).Methods(http.MethodGet)
	r.HandleFunc("/api/products/search", h.Products.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id}", h.Products.GetByID).Methods(http.MethodGet)

	r.HandleFunc("/api/orders", h.Orders.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/orders/{id}", h.Orders.GetByID).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}/receipt", h.Documents.Receipt).Methods(http.MethodGet)

	r.HandleFunc("/api/customers", h.Customers.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/customers/{id}", h.Customers.GetByID).Methods(http.MethodGet)
	r.HandleFunc("/api/customers/{id}/orders", h.Orders.ListByCustomer).Methods(http.MethodGet)
	r.HandleFunc("/api/customers/{id}/pending", h.Orders.Pending).Methods(http.MethodGet)
	r.HandleFunc("/api/customers/{id}/reservations", h.Reservations.ListByCustomer).Methods(http.MethodGet)

	r.HandleFunc("/api/reservations", h.Reservations.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/reservations/{id}", h.Reservations.GetByID).Methods(http.MethodGet)

	r.HandleFunc("/api/quotes", h.Documents.Quote).Methods(http.MethodPost)
	r.HandleFunc("/api/chat", h.Chat.Chat).Methods(http.MethodPost)

	// Apply middleware in order: Correlation -> Recovery -> Logging -> CORS.
	// CORS answers preflight requests before routing.
	var handler http.Handler = r
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Correlation(handler)

	return handler
}

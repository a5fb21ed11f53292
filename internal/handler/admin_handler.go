package handler

import (
	"net/http"
	"time"

	"vinoteca/internal/model"
	"vinoteca/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// AdminHandler serves the back-office views over inventory and orders.
type AdminHandler struct {
	products service.ProductService
	orders   service.OrderService
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(products service.ProductService, orders service.OrderService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		products: products,
		orders:   orders,
		logger:   logger.With().Str("handler", "admin").Logger(),
		now:      time.Now,
	}
}

// ListProducts handles GET /api/admin/products, inactive wines included.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// LowStock handles GET /api/admin/products/low-stock.
func (h *AdminHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.LowStock(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// CreateProduct handles POST /api/admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}

	product, err := h.products.Create(r.Context(), &in)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/admin/products/{id}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}

	product, err := h.products.Update(r.Context(), mux.Vars(r)["id"], &in)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeactivateProduct handles DELETE /api/admin/products/{id}. Wines are never deleted.
func (h *AdminHandler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Deactivate(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStock handles PUT /api/admin/products/{id}/stock.
func (h *AdminHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req model.StockUpdateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.products.SetStock(r.Context(), id, req.Quantity); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ListOrders handles GET /api/admin/orders?status=.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var filter *model.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			writeServiceError(w, r, err, h.logger)
			return
		}
		filter = &status
	}

	orders, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus handles PUT /api/admin/orders/{id}/status.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.StatusUpdateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Status == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "status is required", h.logger)
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), orderID, model.OrderStatus(req.Status), req.RestoreStock)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ExpireOrders handles POST /api/admin/orders/expire.
func (h *AdminHandler) ExpireOrders(w http.ResponseWriter, r *http.Request) {
	n, err := h.orders.ExpireOverdue(r.Context(), h.now())
	if err != nil {
		h.logger.Error().Err(err).Int("expired", n).Msg("expiry sweep finished with errors")
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.ExpireResponse{Expired: n})
}

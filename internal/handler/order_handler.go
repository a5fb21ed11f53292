package handler

import (
	"net/http"
	"time"

	"vinoteca/internal/cart"
	"vinoteca/internal/discount"
	"vinoteca/internal/model"
	"vinoteca/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderHandler handles checkout and the customer's view of orders.
type OrderHandler struct {
	orders    service.OrderService
	customers service.CustomerService
	policy    discount.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOrderHandler creates a new order handler. policy decides the birthday
// discount at checkout.
func NewOrderHandler(
	orders service.OrderService,
	customers service.CustomerService,
	policy discount.Policy,
	logger zerolog.Logger,
) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		customers: customers,
		policy:    policy,
		logger:    logger.With().Str("handler", "order").Logger(),
		now:       time.Now,
	}
}

// CheckoutResponse is the created order plus how its total was reached.
type CheckoutResponse struct {
	*model.Order
	Subtotal         decimal.Decimal `json:"subtotal"`
	BirthdayDiscount bool            `json:"birthdayDiscount"`
}

func subtotal(lines []cart.Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.CustomerID == uuid.Nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "customerId is required", h.logger)
		return
	}
	if err := checkItems(req.Items); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	customer, err := h.customers.GetByID(r.Context(), req.CustomerID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	lines := cartLines(req.Items)
	quote := h.policy.Evaluate(h.now(), customer.BirthDate, subtotal(lines))

	order, err := h.orders.CreateOrder(r.Context(), customer.ID, lines, quote.Total, quote.Discount, req.Notes)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		Order:            order,
		Subtotal:         quote.Subtotal,
		BirthdayDiscount: quote.Birthday,
	})
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	details, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// ListByCustomer handles GET /api/customers/{id}/orders requests.
func (h *OrderHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	orders, err := h.orders.ListCustomerOrders(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Pending handles GET /api/customers/{id}/pending requests.
func (h *OrderHandler) Pending(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	has, err := h.orders.CheckPendingOrder(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.PendingOrderResponse{CustomerID: customerID, HasPending: has})
}

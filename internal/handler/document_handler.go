package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vinoteca/internal/cart"
	"vinoteca/internal/discount"
	"vinoteca/internal/model"
	"vinoteca/internal/receipt"
	"vinoteca/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DocumentHandler renders order receipts and cart quotes on demand.
type DocumentHandler struct {
	orders    service.OrderService
	customers service.CustomerService
	policy    discount.Policy
	renderer  receipt.Renderer
	business  string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDocumentHandler creates a new document handler. business replaces the
// default header when not empty.
func NewDocumentHandler(
	orders service.OrderService,
	customers service.CustomerService,
	policy discount.Policy,
	renderer receipt.Renderer,
	business string,
	logger zerolog.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		orders:    orders,
		customers: customers,
		policy:    policy,
		renderer:  renderer,
		business:  business,
		logger:    logger.With().Str("handler", "document").Logger(),
		now:       time.Now,
	}
}

func (h *DocumentHandler) write(w http.ResponseWriter, r *http.Request, doc receipt.Document) {
	if h.business != "" {
		doc.Business = h.business
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, doc); err != nil {
		h.logger.Error().Err(err).Str("number", doc.Number).Msg("failed to render document")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to render document", h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", receipt.FileName(doc)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Receipt handles GET /api/orders/{id}/receipt requests.
func (h *DocumentHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	details, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.write(w, r, receipt.NewOrderDocument(details))
}

// Quote handles POST /api/quotes requests. The customer is optional; without
// one no birthday discount applies.
func (h *DocumentHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if err := checkItems(req.Items); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	var customer *model.Customer
	if req.CustomerID != uuid.Nil {
		c, err := h.customers.GetByID(r.Context(), req.CustomerID)
		if err != nil {
			writeServiceError(w, r, err, h.logger)
			return
		}
		customer = c
	}

	now := h.now()
	birthday := customer != nil && h.policy.Evaluate(now, customer.BirthDate, subtotal(cartLines(req.Items))).Birthday

	h.write(w, r, receipt.NewQuoteDocument(customer, cart.New(cartLines(req.Items)...), now, birthday))
}

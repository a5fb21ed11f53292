package handler

import (
	"net/http"

	"vinoteca/internal/model"
	"vinoteca/internal/service"

	"github.com/rs/zerolog"
)

// CustomerHandler handles customer registration and lookup.
type CustomerHandler struct {
	service service.CustomerService
	logger  zerolog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(service service.CustomerService, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With().Str("handler", "customer").Logger(),
	}
}

// Register handles POST /api/customers requests.
func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in model.CustomerInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}

	customer, err := h.service.Register(r.Context(), &in)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

// GetByID handles GET /api/customers/{id} requests.
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	customer, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// List handles GET /api/admin/customers requests.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

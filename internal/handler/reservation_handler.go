package handler

import (
	"net/http"

	"vinoteca/internal/model"
	"vinoteca/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReservationHandler handles table reservations for customers and the back office.
type ReservationHandler struct {
	service service.ReservationService
	logger  zerolog.Logger
}

// NewReservationHandler creates a new reservation handler.
func NewReservationHandler(service service.ReservationService, logger zerolog.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		logger:  logger.With().Str("handler", "reservation").Logger(),
	}
}

// Create handles POST /api/reservations requests.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ReservationInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	if in.CustomerID == uuid.Nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "customerId is required", h.logger)
		return
	}

	res, err := h.service.Book(r.Context(), &in)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// GetByID handles GET /api/reservations/{id} requests.
func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	res, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ListByCustomer handles GET /api/customers/{id}/reservations requests.
func (h *ReservationHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	reservations, err := h.service.ListCustomerReservations(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

// List handles GET /api/admin/reservations?status=.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter *model.ReservationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseReservationStatus(raw)
		if err != nil {
			writeServiceError(w, r, err, h.logger)
			return
		}
		filter = &status
	}

	reservations, err := h.service.ListReservations(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

// UpdateStatus handles PUT /api/admin/reservations/{id}/status.
func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.ReservationStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Status == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "status is required", h.logger)
		return
	}

	res, err := h.service.UpdateReservationStatus(r.Context(), id, model.ReservationStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

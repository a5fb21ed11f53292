package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"vinoteca/internal/cart"
	"vinoteca/internal/middleware"
	"vinoteca/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// errorStatus maps domain errors to HTTP status codes. The first match wins.
var errorStatus = []struct {
	err    error
	status int
}{
	{model.ErrEmptyCart, http.StatusBadRequest},
	{model.ErrInvalidQuantity, http.StatusBadRequest},
	{model.ErrInvalidAmount, http.StatusBadRequest},
	{model.ErrNegativeStock, http.StatusBadRequest},
	{model.ErrInvalidStatus, http.StatusBadRequest},
	{model.ErrInvalidProduct, http.StatusBadRequest},
	{model.ErrInvalidCustomer, http.StatusBadRequest},
	{model.ErrInvalidBirthDate, http.StatusBadRequest},
	{model.ErrInvalidReservation, http.StatusBadRequest},
	{model.ErrInvalidPartySize, http.StatusBadRequest},
	{model.ErrReservationInPast, http.StatusBadRequest},
	{model.ErrInvalidReservationStatus, http.StatusBadRequest},
	{model.ErrProductNotFound, http.StatusNotFound},
	{model.ErrCustomerNotFound, http.StatusNotFound},
	{model.ErrOrderNotFound, http.StatusNotFound},
	{model.ErrReservationNotFound, http.StatusNotFound},
	{model.ErrPendingOrderExists, http.StatusConflict},
	{model.ErrInsufficientStock, http.StatusConflict},
	{model.ErrPriceChanged, http.StatusConflict},
	{model.ErrTotalMismatch, http.StatusConflict},
	{model.ErrInvalidTransition, http.StatusConflict},
	{model.ErrReservationTransition, http.StatusConflict},
	{model.ErrProductExists, http.StatusConflict},
	{model.ErrCustomerExists, http.StatusConflict},
	{model.ErrOrderNumberClash, http.StatusServiceUnavailable},
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", code).Str("message", message).Int("status", status).Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.CorrelationID(r.Context()),
	})
}

// writeServiceError translates a service error into a response. Domain errors
// keep their code and message; anything else is reported generically.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	if errors.Is(err, model.ErrRollbackFailed) {
		logger.Error().Err(err).Msg("rollback failed, store needs attention")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			writeError(w, r, m.status, model.DomainCode(err), clientMessage(err), logger)
			return
		}
	}

	if errors.Is(err, cart.ErrExceedsStock) {
		writeError(w, r, http.StatusConflict, model.ErrCodeInsufficientStock, err.Error(), logger)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logger.Warn().Err(err).Msg("request aborted")
		writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeServiceUnavailable, "service temporarily unavailable", logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected service error")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

// clientMessage prefers the detailed text of typed errors over the sentinel message.
func clientMessage(err error) string {
	var (
		stock      *model.InsufficientStockError
		price      *model.PriceChangedError
		transition *model.InvalidTransitionError
		booking    *model.ReservationTransitionError
		domain     *model.DomainError
	)
	switch {
	case errors.As(err, &stock):
		return stock.Error()
	case errors.As(err, &price):
		return price.Error()
	case errors.As(err, &transition):
		return transition.Error()
	case errors.As(err, &booking):
		return booking.Error()
	case errors.As(err, &domain):
		return domain.Message
	}
	return err.Error()
}

// decodeJSON reads a bounded JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// pathUUID parses the named route variable as a UUID, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid "+name+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}

// NotFound answers requests no route matched.
func NotFound(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "resource not found", logger)
	}
}

// MethodNotAllowed answers requests whose path matched a route registered
// for other methods.
func MethodNotAllowed(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", logger)
	}
}

// checkItems rejects carts that cannot be ordered or quoted, without touching
// the store.
func checkItems(items []model.CheckoutItem) error {
	if len(items) == 0 {
		return model.ErrEmptyCart
	}
	for _, it := range items {
		if it.ProductID == "" {
			return model.ErrProductNotFound
		}
		if it.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
		if it.UnitPrice.IsNegative() {
			return model.ErrInvalidAmount
		}
	}
	return nil
}

// cartLines converts checkout items into cart lines.
func cartLines(items []model.CheckoutItem) []cart.Line {
	lines := make([]cart.Line, len(items))
	for i, it := range items {
		lines[i] = cart.Line{
			ProductID:    it.ProductID,
			Name:         it.Name,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
			StockCeiling: it.StockCeiling,
		}
	}
	return lines
}

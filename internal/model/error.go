package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeNegativeStock       = "NEGATIVE_STOCK"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodePendingOrderExists  = "PENDING_ORDER_EXISTS"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodePriceChanged        = "PRICE_CHANGED"
	ErrCodeTotalMismatch       = "TOTAL_MISMATCH"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeOrderNumberConflict = "ORDER_NUMBER_CONFLICT"
	ErrCodeProductExists       = "PRODUCT_EXISTS"
	ErrCodeCustomerExists      = "CUSTOMER_EXISTS"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeReservationNotFound = "RESERVATION_NOT_FOUND"
	ErrCodeReservationInPast   = "RESERVATION_IN_PAST"
	ErrCodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart must contain at least one item")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidAmount      = NewDomainError(ErrCodeInvalidAmount, "Amounts must not be negative")
	ErrNegativeStock      = NewDomainError(ErrCodeNegativeStock, "Stock cannot be negative")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrCustomerNotFound   = NewDomainError(ErrCodeCustomerNotFound, "Customer not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrPendingOrderExists = NewDomainError(ErrCodePendingOrderExists, "Customer already has a pending order")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrPriceChanged       = NewDomainError(ErrCodePriceChanged, "Product price changed since it was added to the cart")
	ErrTotalMismatch      = NewDomainError(ErrCodeTotalMismatch, "Order total does not match line subtotals minus discount")
	ErrInvalidTransition  = NewDomainError(ErrCodeInvalidTransition, "Order status transition not allowed")
	ErrInvalidStatus      = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrOrderNumberClash   = NewDomainError(ErrCodeOrderNumberConflict, "Could not allocate a unique order number")
	ErrProductExists      = NewDomainError(ErrCodeProductExists, "A product with this ID already exists")
	ErrCustomerExists     = NewDomainError(ErrCodeCustomerExists, "A customer with this email already exists")
	ErrInvalidProduct     = NewDomainError(ErrCodeInvalidInput, "Product ID and name are required")
	ErrInvalidCustomer    = NewDomainError(ErrCodeInvalidInput, "First name and a valid email are required")
	ErrInvalidBirthDate   = NewDomainError(ErrCodeInvalidInput, "Birth date must be formatted as YYYY-MM-DD")

	ErrReservationNotFound      = NewDomainError(ErrCodeReservationNotFound, "Reservation not found")
	ErrInvalidReservation       = NewDomainError(ErrCodeInvalidInput, "Reservation needs a date (YYYY-MM-DD), a time (HH:MM), a party size and a known experience")
	ErrInvalidPartySize         = NewDomainError(ErrCodeInvalidInput, "Party size must be between 1 and 40")
	ErrReservationInPast        = NewDomainError(ErrCodeReservationInPast, "Reservations must be booked for a future time")
	ErrInvalidReservationStatus = NewDomainError(ErrCodeInvalidStatus, "Unknown reservation status")
	ErrReservationTransition    = NewDomainError(ErrCodeInvalidTransition, "Reservation status transition not allowed")

	// ErrRollbackFailed marks a failed compensating rollback. The store may be in a
	// state the invariants forbid and an operator has to look at it.
	ErrRollbackFailed = errors.New("rollback failed")
)

// InsufficientStockError reports the product whose stock cannot cover the request.
type InsufficientStockError struct {
	ProductID string
	Requested int
	// Available is negative when the stock level was not observed, e.g. when a
	// concurrent order won the conditional decrement.
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.Available < 0 {
		return fmt.Sprintf("insufficient stock for product %s: requested %d", e.ProductID, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Unwrap lets callers match with errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// PriceChangedError reports a cart line whose price snapshot is stale.
type PriceChangedError struct {
	ProductID string
	CartPrice string
	LivePrice string
}

func (e *PriceChangedError) Error() string {
	return fmt.Sprintf("price of product %s changed from %s to %s", e.ProductID, e.CartPrice, e.LivePrice)
}

func (e *PriceChangedError) Unwrap() error {
	return ErrPriceChanged
}

// InvalidTransitionError reports an illegal order status change.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ReservationTransitionError reports an illegal reservation status change.
type ReservationTransitionError struct {
	From ReservationStatus
	To   ReservationStatus
}

func (e *ReservationTransitionError) Error() string {
	return fmt.Sprintf("cannot move reservation from %s to %s", e.From, e.To)
}

func (e *ReservationTransitionError) Unwrap() error {
	return ErrReservationTransition
}

// DomainCode returns the API error code carried by err, or ErrCodeInternalError.
func DomainCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusExpired   OrderStatus = "expired"
)

// ParseOrderStatus converts s into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled, OrderStatusExpired:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled || s == OrderStatusExpired
}

// CanTransitionTo reports whether s -> next is a legal move. Only pending orders move.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	return next == OrderStatusCompleted || next == OrderStatusCancelled || next == OrderStatusExpired
}

// ReleasesStock reports whether moving into s may hand reserved stock back.
func (s OrderStatus) ReleasesStock() bool {
	return s == OrderStatusCancelled || s == OrderStatusExpired
}

// Order is the immutable header of a customer order. Only Status and
// CompletedAt change after creation.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CustomerID      uuid.UUID       `json:"customerId" db:"customer_id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	Status          OrderStatus     `json:"status" db:"status"`
	Total           decimal.Decimal `json:"total" db:"total"`
	DiscountApplied decimal.Decimal `json:"discountApplied" db:"discount_applied"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	ExpiresAt       time.Time       `json:"expiresAt" db:"expires_at"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
}

// Overdue reports whether a pending order has outlived its pickup window.
func (o *Order) Overdue(now time.Time) bool {
	return o.Status == OrderStatusPending && now.After(o.ExpiresAt)
}

// OrderLine is a snapshot of one product inside an order.
type OrderLine struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// OrderDetails is an order header with its lines and owner.
type OrderDetails struct {
	Order
	Lines    []OrderLine `json:"lines"`
	Customer *Customer   `json:"customer,omitempty"`
}

// LinesTotal sums the line subtotals.
func LinesTotal(lines []OrderLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal)
	}
	return sum
}

// CheckoutRequest is the payload for POST /api/orders.
type CheckoutRequest struct {
	CustomerID uuid.UUID      `json:"customerId"`
	Notes      *string        `json:"notes,omitempty"`
	Items      []CheckoutItem `json:"items"`
}

// CheckoutItem mirrors a client-held cart line.
type CheckoutItem struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	StockCeiling int             `json:"stockCeiling"`
}

// StatusUpdateRequest is the admin payload for changing an order status.
type StatusUpdateRequest struct {
	Status       string `json:"status"`
	RestoreStock bool   `json:"restoreStock"`
}

// PendingOrderResponse answers GET /api/customers/{id}/pending.
type PendingOrderResponse struct {
	CustomerID uuid.UUID `json:"customerId"`
	HasPending bool      `json:"hasPending"`
}

// ExpireResponse reports how many orders a sweep expired.
type ExpireResponse struct {
	Expired int `json:"expired"`
}

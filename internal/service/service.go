package service

import (
	"context"
	"time"

	"vinoteca/internal/cart"
	"vinoteca/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines operations for catalogue and inventory management.
type ProductService interface {
	// ListActive retrieves active products with pagination.
	ListActive(ctx context.Context, limit, offset int) ([]model.Product, error)

	// ListAll retrieves every product, inactive ones included.
	ListAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Search matches active products by name, category or origin.
	Search(ctx context.Context, query string) ([]model.Product, error)

	Create(ctx context.Context, in *model.ProductInput) (*model.Product, error)
	Update(ctx context.Context, id string, in *model.ProductInput) (*model.Product, error)

	// Deactivate hides a product. Products are never deleted.
	Deactivate(ctx context.Context, id string) error

	// SetStock overwrites the quantity on hand.
	SetStock(ctx context.Context, id string, quantity int) error

	// LowStock lists active products at or below their reorder threshold.
	LowStock(ctx context.Context) ([]model.Product, error)
}

// CustomerService defines operations on shop customers.
type CustomerService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	Register(ctx context.Context, in *model.CustomerInput) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
}

// OrderService manages the order lifecycle and the stock reserved by orders.
type OrderService interface {
	// CreateOrder validates lines against the inventory, reserves stock and
	// records a pending order with the given total and discount.
	CreateOrder(ctx context.Context, customerID uuid.UUID, lines []cart.Line, total, discount decimal.Decimal, notes *string) (*model.Order, error)

	// UpdateOrderStatus moves a pending order to a terminal status, optionally
	// handing its stock back.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, restoreStock bool) (*model.Order, error)

	// CheckPendingOrder reports whether the customer has a pending order.
	CheckPendingOrder(ctx context.Context, customerID uuid.UUID) (bool, error)

	// GetOrder retrieves an order with its lines and customer.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error)

	// ListCustomerOrders lists a customer's orders, newest first.
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)

	// ListOrders lists all orders, optionally filtered by status.
	ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)

	// ExpireOverdue expires every pending order whose window closed before now.
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// ReservationService books table reservations and moves them through
// pending -> confirmed -> cancelled.
type ReservationService interface {
	// Book records a pending reservation for a future time.
	Book(ctx context.Context, in *model.ReservationInput) (*model.Reservation, error)

	GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)

	// ListCustomerReservations lists a customer's reservations, soonest first.
	ListCustomerReservations(ctx context.Context, customerID uuid.UUID) ([]model.Reservation, error)

	// ListReservations lists every reservation with its customer, optionally
	// filtered by status.
	ListReservations(ctx context.Context, status *model.ReservationStatus) ([]model.ReservationDetails, error)

	// UpdateReservationStatus confirms or cancels a reservation.
	UpdateReservationStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) (*model.Reservation, error)
}

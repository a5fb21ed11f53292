package repository

import (
	"context"
	"time"

	"vinoteca/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// ListActive retrieves active products with pagination support.
	ListActive(ctx context.Context, limit, offset int) ([]model.Product, error)

	// ListAll retrieves every product, inactive ones included.
	ListAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Search matches active products by name, category, country or region.
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)

	// LowStock lists active products at or below their reorder threshold.
	LowStock(ctx context.Context) ([]model.Product, error)

	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error

	// Upsert inserts the product or overwrites the row with the same ID.
	Upsert(ctx context.Context, p *model.Product) error

	// Deactivate hides a product from the catalogue. Products are never deleted.
	Deactivate(ctx context.Context, id string) error

	// SetStock overwrites quantity_on_hand.
	SetStock(ctx context.Context, id string, quantity int) error

	// DecrementStock reserves quantity units inside tx. It reports false when the
	// product does not hold enough stock; nothing is changed in that case.
	DecrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) (bool, error)

	// StockLevel reads the current quantity on hand inside tx, 0 when the
	// product is gone.
	StockLevel(ctx context.Context, tx pgx.Tx, id string) (int, error)

	// IncrementStock hands quantity units back inside tx.
	IncrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) error
}

// CustomerRepository defines the interface for customer data access operations.
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
	List(ctx context.Context) ([]model.Customer, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order header within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts the order lines within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetByID retrieves an order header. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetLines retrieves the lines of an order.
	GetLines(ctx context.Context, orderID uuid.UUID) ([]model.OrderLine, error)

	// FindPendingByCustomer returns the customer's pending order or nil.
	FindPendingByCustomer(ctx context.Context, customerID uuid.UUID) (*model.Order, error)

	// TransitionStatus moves the order from one status to another inside tx. It
	// reports false when the order was not in the from status.
	TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.OrderStatus, completedAt *time.Time) (bool, error)

	// ListByCustomer lists a customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)

	// List lists orders, newest first, optionally filtered by status.
	List(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)

	// ListOverdue lists pending orders whose pickup window ended before now.
	ListOverdue(ctx context.Context, now time.Time) ([]model.Order, error)
}

// ReservationRepository defines the interface for table reservation data access.
type ReservationRepository interface {
	Create(ctx context.Context, res *model.Reservation) error

	// GetByID retrieves a reservation. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)

	// ListByCustomer lists a customer's reservations, soonest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Reservation, error)

	// List lists reservations with their customers, latest first, optionally
	// filtered by status.
	List(ctx context.Context, status *model.ReservationStatus) ([]model.ReservationDetails, error)

	// TransitionStatus moves the reservation from one status to another. It
	// reports false when the reservation was not in the from status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ReservationStatus, at time.Time) (bool, error)
}

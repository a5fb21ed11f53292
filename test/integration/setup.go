package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"vinoteca/internal/chat"
	"vinoteca/internal/database/dbtest"
	"vinoteca/internal/discount"
	"vinoteca/internal/handler"
	"vinoteca/internal/model"
	"vinoteca/internal/receipt"
	"vinoteca/internal/repository"
	"vinoteca/internal/router"
	"vinoteca/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestAPIKey guards the admin routes of the test server.
const TestAPIKey = "test-api-key"

// Stack is the full service graph over a migrated test database.
type Stack struct {
	DB        *dbtest.DB
	Products  repository.ProductRepository
	Customers service.CustomerService
	Catalogue service.ProductService
	Orders    service.OrderService
	Bookings  service.ReservationService
	Server    http.Handler
}

// SetupStack starts a database container and wires repositories, services and
// the HTTP router on top of it.
func SetupStack(t *testing.T, policy service.OrderPolicy) *Stack {
	t.Helper()

	db := dbtest.Start(t)
	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	customerRepo := repository.NewCustomerRepository(db.Pool, logger)
	reservationRepo := repository.NewReservationRepository(db.Pool, logger)

	products := service.NewProductService(productRepo, logger)
	customers := service.NewCustomerService(customerRepo, logger)
	orders := service.NewOrderService(orderRepo, productRepo, customerRepo, policy, logger)
	bookings := service.NewReservationService(reservationRepo, customerRepo, time.UTC, logger)
	pricing := discount.NewPolicy(time.UTC)

	server := router.New(router.Handlers{
		Health:    handler.NewHealthHandler(db.Pool, logger),
		Products:  handler.NewProductHandler(products, logger),
		Orders:    handler.NewOrderHandler(orders, customers, pricing, logger),
		Customers: handler.NewCustomerHandler(customers, logger),
		Documents: handler.NewDocumentHandler(orders, customers, pricing, receipt.NewPDFRenderer(time.UTC), "", logger),
		Chat:      handler.NewChatHandler(chat.Disabled{}, logger),
		Admin:     handler.NewAdminHandler(products, orders, logger),

		Reservations: handler.NewReservationHandler(bookings, logger),
	}, TestAPIKey, logger)

	return &Stack{
		DB:        db,
		Products:  productRepo,
		Customers: customers,
		Catalogue: products,
		Orders:    orders,
		Bookings:  bookings,
		Server:    server,
	}
}

// SeedWine inserts an active wine with the given price and stock.
func (s *Stack) SeedWine(t *testing.T, id, price string, stock int) *model.Product {
	t.Helper()

	now := time.Now().UTC()
	p := &model.Product{
		ID:               id,
		Name:             "Wine " + id,
		Category:         "Red",
		Country:          "Spain",
		Price:            decimal.RequireFromString(price),
		QuantityOnHand:   stock,
		ReorderThreshold: 2,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, s.Products.Create(context.Background(), p))
	return p
}

// SeedCustomer registers a customer, optionally with a birth date (YYYY-MM-DD).
func (s *Stack) SeedCustomer(t *testing.T, email string, birthDate *string) *model.Customer {
	t.Helper()

	c, err := s.Customers.Register(context.Background(), &model.CustomerInput{
		FirstName: "Test",
		LastName:  "Customer",
		Email:     email,
		BirthDate: birthDate,
	})
	require.NoError(t, err)
	return c
}

// Stock reads the current quantity on hand of a wine.
func (s *Stack) Stock(t *testing.T, id string) int {
	t.Helper()

	p, err := s.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.QuantityOnHand
}

// CountOrders counts orders in status for a customer, or all customers when
// customerID is uuid.Nil.
func (s *Stack) CountOrders(t *testing.T, customerID uuid.UUID, status model.OrderStatus) int {
	t.Helper()

	query := `SELECT COUNT(*) FROM orders WHERE status = $1`
	args := []any{string(status)}
	if customerID != uuid.Nil {
		query += ` AND customer_id = $2`
		args = append(args, customerID)
	}

	var n int
	require.NoError(t, s.DB.Pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

// Line builds a cart line priced at the wine's current price.
func Line(p *model.Product, qty int) model.CheckoutItem {
	return model.CheckoutItem{
		ProductID:    p.ID,
		Name:         p.Name,
		UnitPrice:    p.Price,
		Quantity:     qty,
		StockCeiling: p.QuantityOnHand,
	}
}

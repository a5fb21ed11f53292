package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vinoteca/internal/cart"
	"vinoteca/internal/model"
	"vinoteca/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartLine(p *model.Product, qty int) cart.Line {
	return cart.Line{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: qty, StockCeiling: p.QuantityOnHand}
}

func place(ctx context.Context, orders service.OrderService, customerID uuid.UUID, lines ...cart.Line) (*model.Order, error) {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return orders.CreateOrder(ctx, customerID, lines, total, decimal.Zero, nil)
}

func TestConcurrentCheckout_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := SetupStack(t, service.OrderPolicy{ExpiryWindow: 48 * time.Hour, RestoreStockOnExpiry: true})
	ctx := context.Background()

	t.Run("stock is never oversold", func(t *testing.T) {
		s.DB.Truncate(t)
		const stock, buyers = 5, 12
		wine := s.SeedWine(t, "W001", "30.00", stock)

		customers := make([]*model.Customer, buyers)
		for i := range customers {
			customers[i] = s.SeedCustomer(t, fmt.Sprintf("buyer%d@example.com", i), nil)
		}

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			placed   int
			shortage int
			other    []error
		)
		for _, c := range customers {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				_, err := place(ctx, s.Orders, id, cartLine(wine, 1))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					placed++
				case errors.Is(err, model.ErrInsufficientStock):
					shortage++
				default:
					other = append(other, err)
				}
			}(c.ID)
		}
		wg.Wait()

		require.Empty(t, other)
		assert.Equal(t, stock, placed)
		assert.Equal(t, buyers-stock, shortage)
		assert.Equal(t, 0, s.Stock(t, "W001"))
		assert.Equal(t, stock, s.CountOrders(t, uuid.Nil, model.OrderStatusPending))
	})

	t.Run("one pending order per customer", func(t *testing.T) {
		s.DB.Truncate(t)
		wine := s.SeedWine(t, "W001", "30.00", 50)
		customer := s.SeedCustomer(t, "eager@example.com", nil)

		const attempts = 8
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = place(ctx, s.Orders, customer.ID, cartLine(wine, 2))
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, model.ErrPendingOrderExists)
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, s.CountOrders(t, customer.ID, model.OrderStatusPending))
		// Losers must not keep any reserved stock.
		assert.Equal(t, 48, s.Stock(t, "W001"))
	})

	t.Run("concurrent cancels restore stock once", func(t *testing.T) {
		s.DB.Truncate(t)
		wine := s.SeedWine(t, "W001", "30.00", 10)
		customer := s.SeedCustomer(t, "fickle@example.com", nil)

		order, err := place(ctx, s.Orders, customer.ID, cartLine(wine, 4))
		require.NoError(t, err)
		require.Equal(t, 6, s.Stock(t, "W001"))

		const attempts = 6
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.Orders.UpdateOrderStatus(ctx, order.ID, model.OrderStatusCancelled, true)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, model.ErrInvalidTransition)
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 10, s.Stock(t, "W001"))
	})
}

func TestExpiry_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	t.Run("sweep expires overdue orders and restores stock", func(t *testing.T) {
		s := SetupStack(t, service.OrderPolicy{ExpiryWindow: 48 * time.Hour, RestoreStockOnExpiry: true})
		wine := s.SeedWine(t, "W001", "30.00", 10)
		a := s.SeedCustomer(t, "a@example.com", nil)
		b := s.SeedCustomer(t, "b@example.com", nil)

		_, err := place(ctx, s.Orders, a.ID, cartLine(wine, 3))
		require.NoError(t, err)
		_, err = place(ctx, s.Orders, b.ID, cartLine(wine, 2))
		require.NoError(t, err)
		require.Equal(t, 5, s.Stock(t, "W001"))

		n, err := s.Orders.ExpireOverdue(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = s.Orders.ExpireOverdue(ctx, time.Now().Add(49*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 10, s.Stock(t, "W001"))
		assert.Equal(t, 2, s.CountOrders(t, uuid.Nil, model.OrderStatusExpired))

		// A second sweep finds nothing left to do.
		n, err = s.Orders.ExpireOverdue(ctx, time.Now().Add(50*time.Hour))
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 10, s.Stock(t, "W001"))
	})

	t.Run("expiry without restore keeps stock reserved", func(t *testing.T) {
		s := SetupStack(t, service.OrderPolicy{ExpiryWindow: 48 * time.Hour})
		wine := s.SeedWine(t, "W001", "30.00", 10)
		c := s.SeedCustomer(t, "c@example.com", nil)

		_, err := place(ctx, s.Orders, c.ID, cartLine(wine, 3))
		require.NoError(t, err)

		n, err := s.Orders.ExpireOverdue(ctx, time.Now().Add(49*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 7, s.Stock(t, "W001"))
	})

	t.Run("overdue pending order does not block a new checkout", func(t *testing.T) {
		s := SetupStack(t, service.OrderPolicy{ExpiryWindow: time.Millisecond, RestoreStockOnExpiry: true})
		wine := s.SeedWine(t, "W001", "30.00", 10)
		c := s.SeedCustomer(t, "d@example.com", nil)

		first, err := place(ctx, s.Orders, c.ID, cartLine(wine, 3))
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)

		has, err := s.Orders.CheckPendingOrder(ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, has)

		_, err = place(ctx, s.Orders, c.ID, cartLine(wine, 2))
		require.NoError(t, err)
		assert.Equal(t, 8, s.Stock(t, "W001"))

		details, err := s.Orders.GetOrder(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusExpired, details.Status)
	})
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"vinoteca/internal/cart"
	"vinoteca/internal/model"
	"vinoteca/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// DefaultExpiryWindow is how long a pending order holds its stock.
	DefaultExpiryWindow = 48 * time.Hour

	orderNumberAttempts = 5
)

// OrderPolicy tunes the order lifecycle.
type OrderPolicy struct {
	// ExpiryWindow is the pickup window of a new order.
	ExpiryWindow time.Duration
	// RestoreStockOnExpiry hands stock back when an overdue order is expired.
	RestoreStockOnExpiry bool
}

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	policy       OrderPolicy
	logger       zerolog.Logger

	now         func() time.Time
	orderNumber func(time.Time) (string, error)
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	policy OrderPolicy,
	logger zerolog.Logger,
) OrderService {
	if policy.ExpiryWindow <= 0 {
		policy.ExpiryWindow = DefaultExpiryWindow
	}
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		policy:       policy,
		logger:       logger.With().Str("service", "order").Logger(),
		now:          time.Now,
		orderNumber:  NewOrderNumber,
	}
}

var orderNumberEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewOrderNumber returns a human-readable order number, VT-YYYYMMDD-XXXXXX.
func NewOrderNumber(now time.Time) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return fmt.Sprintf("VT-%s-%s", now.UTC().Format("20060102"), orderNumberEncoding.EncodeToString(b[:])[:6]), nil
}

// validateLines rejects malformed carts before any store access and merges
// repeated products into one line.
func validateLines(lines []cart.Line) ([]cart.Line, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	merged := make([]cart.Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			return nil, model.ErrProductNotFound
		}
		if l.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		if l.UnitPrice.IsNegative() {
			return nil, model.ErrInvalidAmount
		}
		if i, ok := index[l.ProductID]; ok {
			if !merged[i].UnitPrice.Equal(l.UnitPrice) {
				return nil, &model.PriceChangedError{
					ProductID: l.ProductID,
					CartPrice: l.UnitPrice.StringFixed(2),
					LivePrice: merged[i].UnitPrice.StringFixed(2),
				}
			}
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// CreateOrder validates lines against the inventory, reserves stock and
// records a pending order. Nothing is left behind when any step fails.
func (s *orderService) CreateOrder(
	ctx context.Context,
	customerID uuid.UUID,
	lines []cart.Line,
	total, discount decimal.Decimal,
	notes *string,
) (*model.Order, error) {
	lines, err := validateLines(lines)
	if err != nil {
		s.logger.Warn().Err(err).Str("customer_id", customerID.String()).Msg("rejected cart")
		return nil, err
	}
	if total.IsNegative() || discount.IsNegative() {
		return nil, model.ErrInvalidAmount
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to load customer")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if customer == nil {
		return nil, model.ErrCustomerNotFound
	}

	pending, err := s.activePending(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if pending != nil {
		s.logger.Info().
			Str("customer_id", customerID.String()).
			Str("pending_order", pending.OrderNumber).
			Msg("customer already has a pending order")
		return nil, model.ErrPendingOrderExists
	}

	orderLines, err := s.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	subtotal := model.LinesTotal(orderLines)
	if !total.Equal(subtotal.Sub(discount)) {
		s.logger.Warn().
			Str("customer_id", customerID.String()).
			Str("total", total.String()).
			Str("subtotal", subtotal.String()).
			Str("discount", discount.String()).
			Msg("order total does not match lines")
		return nil, model.ErrTotalMismatch
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		Status:          model.OrderStatusPending,
		Total:           total,
		DiscountApplied: discount,
		Notes:           notes,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.policy.ExpiryWindow),
	}
	for i := range orderLines {
		orderLines[i].ID = uuid.New()
		orderLines[i].OrderID = order.ID
	}

	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		order.OrderNumber, err = s.orderNumber(now)
		if err != nil {
			return nil, err
		}

		err = s.persistOrder(ctx, order, orderLines)
		if errors.Is(err, model.ErrOrderNumberClash) {
			s.logger.Warn().
				Str("order_number", order.OrderNumber).
				Int("attempt", attempt).
				Msg("order number collision, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info().
			Str("order_id", order.ID.String()).
			Str("order_number", order.OrderNumber).
			Str("customer_id", customerID.String()).
			Int("line_count", len(orderLines)).
			Str("total", total.StringFixed(2)).
			Msg("order created successfully")
		return order, nil
	}

	s.logger.Error().Str("customer_id", customerID.String()).Msg("could not allocate an order number")
	return nil, model.ErrOrderNumberClash
}

// priceLines re-reads every product and turns cart lines into order lines
// priced from the store.
func (s *orderService) priceLines(ctx context.Context, lines []cart.Line) ([]model.OrderLine, error) {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("product_count", len(ids)).Msg("failed to load products")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.IsActive {
			s.logger.Warn().Str("product_id", l.ProductID).Msg("product missing or inactive")
			return nil, model.ErrProductNotFound
		}
		if l.Quantity > p.QuantityOnHand {
			s.logger.Info().
				Str("product_id", p.ID).
				Int("requested", l.Quantity).
				Int("available", p.QuantityOnHand).
				Msg("insufficient stock")
			return nil, &model.InsufficientStockError{
				ProductID: p.ID,
				Requested: l.Quantity,
				Available: p.QuantityOnHand,
			}
		}
		if !l.UnitPrice.Equal(p.Price) {
			return nil, &model.PriceChangedError{
				ProductID: p.ID,
				CartPrice: l.UnitPrice.StringFixed(2),
				LivePrice: p.Price.StringFixed(2),
			}
		}
		out = append(out, model.OrderLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
			Subtotal:    p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return out, nil
}

// persistOrder writes the header and lines and reserves stock in one transaction.
func (s *orderService) persistOrder(ctx context.Context, order *model.Order, lines []model.OrderLine) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			err = s.rollback(ctx, tx, order.ID, err)
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return err
	}

	if err = s.orderRepo.CreateOrderLines(ctx, tx, lines); err != nil {
		return err
	}

	for _, l := range lines {
		ok, derr := s.productRepo.DecrementStock(ctx, tx, l.ProductID, l.Quantity)
		if derr != nil {
			err = fmt.Errorf("failed to reserve stock: %w", derr)
			return err
		}
		if !ok {
			available, serr := s.productRepo.StockLevel(ctx, tx, l.ProductID)
			if serr != nil {
				available = -1
			}
			s.logger.Info().
				Str("order_id", order.ID.String()).
				Str("product_id", l.ProductID).
				Int("requested", l.Quantity).
				Int("available", available).
				Msg("stock taken by a concurrent order")
			err = &model.InsufficientStockError{ProductID: l.ProductID, Requested: l.Quantity, Available: available}
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// rollback undoes tx after cause. A failed rollback is logged and reported
// alongside the cause.
func (s *orderService) rollback(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, cause error) error {
	rbErr := tx.Rollback(context.WithoutCancel(ctx))
	if rbErr == nil || errors.Is(rbErr, pgx.ErrTxClosed) {
		return cause
	}

	s.logger.Error().
		Err(rbErr).
		AnErr("cause", cause).
		Str("order_id", orderID.String()).
		Msg("failed to rollback transaction")
	return fmt.Errorf("%w: %v: %w", model.ErrRollbackFailed, rbErr, cause)
}

// UpdateOrderStatus moves a pending order to a terminal status.
func (s *orderService) UpdateOrderStatus(
	ctx context.Context,
	orderID uuid.UUID,
	status model.OrderStatus,
	restoreStock bool,
) (*model.Order, error) {
	if _, err := model.ParseOrderStatus(string(status)); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	now := s.now().UTC()
	if !order.Status.CanTransitionTo(status) ||
		(status == model.OrderStatusExpired && !order.Overdue(now)) {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("rejected status transition")
		return nil, &model.InvalidTransitionError{From: order.Status, To: status}
	}

	return s.transition(ctx, order, status, restoreStock, now)
}

// transition applies pending -> to, restoring stock in the same transaction
// when asked. The conditional update makes a concurrent second transition
// fail instead of restoring stock twice.
func (s *orderService) transition(
	ctx context.Context,
	order *model.Order,
	to model.OrderStatus,
	restoreStock bool,
	now time.Time,
) (_ *model.Order, err error) {
	var lines []model.OrderLine
	if restoreStock && to.ReleasesStock() {
		lines, err = s.orderRepo.GetLines(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load order lines: %w", err)
		}
	}

	var completedAt *time.Time
	if to == model.OrderStatusCompleted {
		completedAt = &now
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	defer func() {
		if err != nil {
			err = s.rollback(ctx, tx, order.ID, err)
		}
	}()

	ok, err := s.orderRepo.TransitionStatus(ctx, tx, order.ID, model.OrderStatusPending, to, completedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		from := order.Status
		if current, gerr := s.orderRepo.GetByID(ctx, order.ID); gerr == nil && current != nil {
			from = current.Status
		}
		err = &model.InvalidTransitionError{From: from, To: to}
		return nil, err
	}

	for _, l := range lines {
		if err = s.productRepo.IncrementStock(ctx, tx, l.ProductID, l.Quantity); err != nil {
			s.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", l.ProductID).
				Msg("failed to restore stock")
			return nil, fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	updated := *order
	updated.Status = to
	if completedAt != nil {
		updated.CompletedAt = completedAt
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("status", string(to)).
		Bool("stock_restored", len(lines) > 0).
		Msg("order status updated")

	return &updated, nil
}

// activePending returns the customer's pending order, expiring it first when
// its window has already closed.
func (s *orderService) activePending(ctx context.Context, customerID uuid.UUID) (*model.Order, error) {
	pending, err := s.orderRepo.FindPendingByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to check pending order")
		return nil, err
	}
	if pending == nil {
		return nil, nil
	}

	now := s.now().UTC()
	if !pending.Overdue(now) {
		return pending, nil
	}

	_, err = s.transition(ctx, pending, model.OrderStatusExpired, s.policy.RestoreStockOnExpiry, now)
	if err != nil && !errors.Is(err, model.ErrInvalidTransition) {
		return nil, err
	}
	return nil, nil
}

// CheckPendingOrder reports whether the customer has a pending order.
func (s *orderService) CheckPendingOrder(ctx context.Context, customerID uuid.UUID) (bool, error) {
	pending, err := s.activePending(ctx, customerID)
	if err != nil {
		return false, fmt.Errorf("failed to check pending order: %w", err)
	}
	return pending != nil, nil
}

// GetOrder retrieves an order with its lines and customer.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	lines, err := s.orderRepo.GetLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}

	customer, err := s.customerRepo.GetByID(ctx, order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order customer: %w", err)
	}

	return &model.OrderDetails{Order: *order, Lines: lines, Customer: customer}, nil
}

// ListCustomerOrders lists a customer's orders, newest first.
func (s *orderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to list customer orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListOrders lists all orders, optionally filtered by status.
func (s *orderService) ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx, status)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ExpireOverdue expires every pending order whose window closed before now.
// Orders that change status concurrently are skipped. Other failures do not
// stop the sweep and are returned together.
func (s *orderService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.orderRepo.ListOverdue(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list overdue orders")
		return 0, fmt.Errorf("failed to list overdue orders: %w", err)
	}

	expired := 0
	var errs []error
	for i := range overdue {
		_, err := s.transition(ctx, &overdue[i], model.OrderStatusExpired, s.policy.RestoreStockOnExpiry, now.UTC())
		switch {
		case err == nil:
			expired++
		case errors.Is(err, model.ErrInvalidTransition):
		default:
			s.logger.Error().Err(err).Str("order_id", overdue[i].ID.String()).Msg("failed to expire order")
			errs = append(errs, err)
		}
	}

	if expired > 0 || len(errs) > 0 {
		s.logger.Info().
			Int("expired", expired).
			Int("failed", len(errs)).
			Msg("expired overdue orders")
	}

	return expired, errors.Join(errs...)
}

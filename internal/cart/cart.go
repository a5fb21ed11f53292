// Package cart holds the client-side shopping cart: a list of product lines
// the shopper intends to buy. A cart is only a proposal; the order service
// re-validates every line against the inventory at checkout.
package cart

import (
	"errors"
	"fmt"

	"vinoteca/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrExceedsStock is returned when a line would hold more units than the
	// stock known when the product was added.
	ErrExceedsStock = errors.New("quantity exceeds available stock")

	// ErrLineNotFound is returned when updating a product that is not in the cart.
	ErrLineNotFound = errors.New("product not in cart")
)

// Line is one product in the cart with the price and stock seen when it was added.
type Line struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	StockCeiling int             `json:"stockCeiling"`
	ImageURL     string          `json:"imageUrl,omitempty"`
}

// Subtotal is Quantity × UnitPrice.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// FromProduct builds a cart line for p with quantity zero.
func FromProduct(p *model.Product) Line {
	return Line{
		ProductID:    p.ID,
		Name:         p.Name,
		UnitPrice:    p.Price,
		StockCeiling: p.QuantityOnHand,
		ImageURL:     p.ImageURL,
	}
}

// Cart is an ordered list of lines, at most one per product.
type Cart struct {
	lines []Line
}

// New returns a cart holding a copy of lines.
func New(lines ...Line) *Cart {
	c := &Cart{}
	c.lines = append(c.lines, lines...)
	return c
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func exceeds(ceiling int) error {
	return fmt.Errorf("%w: only %d units available", ErrExceedsStock, ceiling)
}

// Add puts qty units of item in the cart. When the product is already present
// the quantities are summed and the line takes the newer price and ceiling.
func (c *Cart) Add(item Line, qty int) error {
	if item.ProductID == "" {
		return model.ErrProductNotFound
	}
	if qty <= 0 {
		return model.ErrInvalidQuantity
	}

	if i := c.index(item.ProductID); i >= 0 {
		total := c.lines[i].Quantity + qty
		if total > item.StockCeiling {
			return exceeds(item.StockCeiling)
		}
		item.Quantity = total
		c.lines[i] = item
		return nil
	}

	if qty > item.StockCeiling {
		return exceeds(item.StockCeiling)
	}
	item.Quantity = qty
	c.lines = append(c.lines, item)
	return nil
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (c *Cart) UpdateQuantity(productID string, qty int) error {
	i := c.index(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty <= 0 {
		c.Remove(productID)
		return nil
	}
	if qty > c.lines[i].StockCeiling {
		return exceeds(c.lines[i].StockCeiling)
	}
	c.lines[i].Quantity = qty
	return nil
}

// Remove drops the product's line. Removing an absent product is a no-op.
func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Count is the total number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of the line subtotals at the snapshot prices.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

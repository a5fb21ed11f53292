// Package receipt lays out order receipts and cart quotes and renders them as PDF.
package receipt

import (
	"fmt"
	"time"

	"vinoteca/internal/cart"
	"vinoteca/internal/discount"
	"vinoteca/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultBusiness is printed in the document header.
const DefaultBusiness = "WINE & CHEESE"

// Kind distinguishes receipts from quotes.
type Kind string

const (
	KindOrder Kind = "order"
	KindQuote Kind = "quote"
)

const (
	orderTitle    = "Order Receipt"
	quoteTitle    = "Product Quote"
	pickupNote    = "Wine & Cheese - Main Store"
	paymentNote   = "Cash or card at pickup"
	orderFooter   = "Thank you for your purchase. Present this receipt when picking up your order."
	quoteValidity = "This quote is valid for 24 hours. Prices subject to change."
)

// Line is one printed row.
type Line struct {
	Quantity  int
	Name      string
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Document is everything printed on a receipt or quote.
type Document struct {
	Business      string
	Title         string
	Kind          Kind
	Number        string
	Date          time.Time
	CustomerName  string
	CustomerEmail string
	Lines         []Line
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	// ValidUntil is set on receipts; quotes carry a fixed Validity text instead.
	ValidUntil  time.Time
	Validity    string
	PickupNote  string
	PaymentNote string
	Footer      string
	QRPayload   string
}

// HasDiscount reports whether the discount row is printed.
func (d *Document) HasDiscount() bool {
	return d.Discount.IsPositive()
}

// NewOrderDocument lays out the receipt of a stored order.
func NewOrderDocument(details *model.OrderDetails) Document {
	doc := Document{
		Business:    DefaultBusiness,
		Title:       orderTitle,
		Kind:        KindOrder,
		Number:      details.OrderNumber,
		Date:        details.CreatedAt,
		Subtotal:    details.Total.Add(details.DiscountApplied),
		Discount:    details.DiscountApplied,
		Total:       details.Total,
		ValidUntil:  details.ExpiresAt,
		PickupNote:  pickupNote,
		PaymentNote: paymentNote,
		Footer:      orderFooter,
		QRPayload:   details.OrderNumber,
	}
	if details.Customer != nil {
		doc.CustomerName = details.Customer.FullName()
		doc.CustomerEmail = details.Customer.Email
	}
	for _, l := range details.Lines {
		doc.Lines = append(doc.Lines, Line{
			Quantity:  l.Quantity,
			Name:      l.ProductName,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return doc
}

// QuoteNumber derives a quote number from the clock, QUOTE-<6 digits>.
func QuoteNumber(now time.Time) string {
	return fmt.Sprintf("QUOTE-%06d", now.UnixMilli()%1_000_000)
}

// NewQuoteDocument prices the cart for customer without reserving anything.
// A nil customer prints as a guest.
func NewQuoteDocument(customer *model.Customer, c *cart.Cart, now time.Time, isBirthday bool) Document {
	number := QuoteNumber(now)
	subtotal := c.Subtotal()
	total, off := discount.Apply(subtotal, isBirthday)

	doc := Document{
		Business:     DefaultBusiness,
		Title:        quoteTitle,
		Kind:         KindQuote,
		Number:       number,
		Date:         now,
		CustomerName: "Guest",
		Subtotal:     subtotal,
		Discount:     off,
		Total:        total,
		Validity:     quoteValidity,
		PickupNote:   pickupNote,
		PaymentNote:  paymentNote,
		Footer:       quoteValidity,
		QRPayload:    number,
	}
	if customer != nil {
		doc.CustomerName = customer.FullName()
		doc.CustomerEmail = customer.Email
	}
	for _, l := range c.Lines() {
		doc.Lines = append(doc.Lines, Line{
			Quantity:  l.Quantity,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return doc
}

// FileName is the download name of the rendered document.
func FileName(doc Document) string {
	if doc.Kind == KindQuote {
		return fmt.Sprintf("Quote_%s.pdf", doc.Number)
	}
	return fmt.Sprintf("Order_%s.pdf", doc.Number)
}

package receipt

import (
	"bytes"
	"testing"
	"time"

	"vinoteca/internal/cart"
	"vinoteca/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = decimal.RequireFromString

func orderDetails() *model.OrderDetails {
	created := time.Date(2025, time.April, 2, 18, 30, 0, 0, time.UTC)
	return &model.OrderDetails{
		Order: model.Order{
			ID:              uuid.New(),
			OrderNumber:     "VT-20250402-K3M9QZ",
			Status:          model.OrderStatusPending,
			Total:           d("85.00"),
			DiscountApplied: d("15.00"),
			CreatedAt:       created,
			ExpiresAt:       created.Add(48 * time.Hour),
		},
		Lines: []model.OrderLine{
			{ProductName: "Rioja Crianza", Quantity: 2, UnitPrice: d("25.00"), Subtotal: d("50.00")},
			{ProductName: "Albariño", Quantity: 2, UnitPrice: d("25.00"), Subtotal: d("50.00")},
		},
		Customer: &model.Customer{FirstName: "Lucía", LastName: "Vargas", Email: "lucia@example.com"},
	}
}

func TestNewOrderDocument(t *testing.T) {
	details := orderDetails()

	doc := NewOrderDocument(details)

	assert.Equal(t, KindOrder, doc.Kind)
	assert.Equal(t, "Order Receipt", doc.Title)
	assert.Equal(t, DefaultBusiness, doc.Business)
	assert.Equal(t, details.OrderNumber, doc.Number)
	assert.Equal(t, details.OrderNumber, doc.QRPayload)
	assert.Equal(t, "Lucía Vargas", doc.CustomerName)
	assert.Equal(t, "100.00", doc.Subtotal.StringFixed(2))
	assert.True(t, doc.HasDiscount())
	assert.Equal(t, details.ExpiresAt, doc.ValidUntil)
	assert.Len(t, doc.Lines, 2)
	assert.Equal(t, "Order_VT-20250402-K3M9QZ.pdf", FileName(doc))
}

func TestNewOrderDocument_NoDiscountNoCustomer(t *testing.T) {
	details := orderDetails()
	details.DiscountApplied = decimal.Zero
	details.Total = d("100.00")
	details.Customer = nil

	doc := NewOrderDocument(details)

	assert.False(t, doc.HasDiscount())
	assert.Empty(t, doc.CustomerName)
}

func TestNewQuoteDocument(t *testing.T) {
	c := cart.New(
		cart.Line{ProductID: "W001", Name: "Rioja Crianza", UnitPrice: d("25.00"), Quantity: 2, StockCeiling: 5},
		cart.Line{ProductID: "W002", Name: "Albariño", UnitPrice: d("25.00"), Quantity: 2, StockCeiling: 5},
	)
	now := time.UnixMilli(1_700_000_123_456).UTC()
	customer := &model.Customer{FirstName: "Ana", Email: "ana@example.com"}

	t.Run("Birthday", func(t *testing.T) {
		doc := NewQuoteDocument(customer, c, now, true)

		assert.Equal(t, KindQuote, doc.Kind)
		assert.Equal(t, "Product Quote", doc.Title)
		assert.Equal(t, "QUOTE-123456", doc.Number)
		assert.Equal(t, "100.00", doc.Subtotal.StringFixed(2))
		assert.Equal(t, "15.00", doc.Discount.StringFixed(2))
		assert.Equal(t, "85.00", doc.Total.StringFixed(2))
		assert.True(t, doc.ValidUntil.IsZero())
		assert.Contains(t, doc.Validity, "24 hours")
		assert.Equal(t, "Quote_QUOTE-123456.pdf", FileName(doc))
	})

	t.Run("Regular day", func(t *testing.T) {
		doc := NewQuoteDocument(customer, c, now, false)

		assert.False(t, doc.HasDiscount())
		assert.True(t, doc.Total.Equal(doc.Subtotal))
	})

	t.Run("Guest", func(t *testing.T) {
		doc := NewQuoteDocument(nil, c, now, false)
		assert.Equal(t, "Guest", doc.CustomerName)
	})
}

func TestQuoteNumber(t *testing.T) {
	assert.Regexp(t, `^QUOTE-\d{6}$`, QuoteNumber(time.Now()))
	assert.Equal(t, "QUOTE-000042", QuoteNumber(time.UnixMilli(5_000_042)))
}

func TestPDFRenderer_Render(t *testing.T) {
	loc, err := time.LoadLocation("America/Costa_Rica")
	require.NoError(t, err)
	r := NewPDFRenderer(loc)

	for name, doc := range map[string]Document{
		"order": NewOrderDocument(orderDetails()),
		"quote": NewQuoteDocument(nil, cart.New(), time.Now(), false),
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, doc))

			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
			assert.Greater(t, buf.Len(), 1000)
		})
	}
}

func TestPDFRenderer_Render_EmptyQRPayload(t *testing.T) {
	doc := NewOrderDocument(orderDetails())
	doc.QRPayload = ""

	err := NewPDFRenderer(nil).Render(&bytes.Buffer{}, doc)

	assert.ErrorContains(t, err, "QR")
}

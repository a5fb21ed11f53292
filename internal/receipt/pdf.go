package receipt

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// Renderer writes a document in a printable format.
type Renderer interface {
	Render(w io.Writer, doc Document) error
}

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
	qrImage        = "qr"
)

// PDFRenderer renders A4 PDFs. Dates are printed in the shop's location.
type PDFRenderer struct {
	loc *time.Location
}

// NewPDFRenderer returns a renderer printing dates in loc. A nil loc means UTC.
func NewPDFRenderer(loc *time.Location) *PDFRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &PDFRenderer{loc: loc}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Render writes doc as a single-page PDF to w.
func (r *PDFRenderer) Render(w io.Writer, doc Document) error {
	qr, err := qrcode.Encode(doc.QRPayload, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to encode QR code: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title+" "+doc.Number, true)
	pdf.SetCreationDate(doc.Date)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(20, 14)
	pdf.CellFormat(170, 8, tr(doc.Business), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.SetX(20)
	pdf.CellFormat(170, 7, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetLineWidth(0.5)
	pdf.Line(20, 32, 190, 32)

	label := "Order"
	if doc.Kind == KindQuote {
		label = "Quote"
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(20, 42, fmt.Sprintf("%s: %s", label, doc.Number))
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(20, 48, "Date: "+doc.Date.In(r.loc).Format(dateLayout))
	pdf.Text(20, 54, tr("Customer: "+doc.CustomerName))
	if doc.CustomerEmail != "" {
		pdf.Text(20, 60, "Email: "+doc.CustomerEmail)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImage, opts, bytes.NewReader(qr))
	pdf.ImageOptions(qrImage, 150, 38, 35, 35, false, opts, 0, "")

	// Lines
	widths := []float64{20, 80, 35, 35}
	pdf.SetXY(20, 80)
	pdf.SetFillColor(90, 0, 21)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Qty", "Product", "Unit Price", "Subtotal"} {
		align := "C"
		if i >= 2 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 9, h, "", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	for i, l := range doc.Lines {
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		pdf.SetX(20)
		pdf.CellFormat(widths[0], 8, fmt.Sprintf("%d", l.Quantity), "", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[1], 8, tr(l.Name), "", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[2], 8, money(l.UnitPrice), "", 0, "R", fill, 0, "")
		pdf.CellFormat(widths[3], 8, money(l.Subtotal), "", 1, "R", fill, 0, "")
	}

	// Totals
	y := pdf.GetY() + 10
	pdf.SetLineWidth(0.5)
	pdf.Line(130, y, 190, y)
	totalRow := func(y float64, name, value string) {
		pdf.Text(130, y, name)
		pdf.SetXY(130, y-4)
		pdf.CellFormat(60, 5, value, "", 0, "R", false, 0, "")
	}
	totalRow(y+7, "Subtotal:", money(doc.Subtotal))
	if doc.HasDiscount() {
		totalRow(y+13, "Discount:", "-"+money(doc.Discount))
	}
	pdf.SetLineWidth(0.8)
	pdf.Line(130, y+16, 190, y+16)
	pdf.SetFont("Helvetica", "B", 12)
	totalRow(y+23, "TOTAL:", money(doc.Total))

	// Pickup information
	y += 35
	validity := doc.Validity
	if !doc.ValidUntil.IsZero() {
		validity = doc.ValidUntil.In(r.loc).Format(dateTimeLayout)
	}
	for _, block := range [][2]string{
		{"VALID UNTIL:", validity},
		{"PICK UP AT:", doc.PickupNote},
		{"PAYMENT:", doc.PaymentNote},
	} {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(20, y, block[0])
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(20, y+6, tr(block[1]))
		y += 16
	}

	// Footer
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.SetXY(20, 277)
	pdf.CellFormat(170, 5, tr(doc.Footer), "", 0, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render %s: %w", FileName(doc), err)
	}
	return nil
}

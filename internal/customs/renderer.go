package customs

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Renderer produces the two customs PDFs: the commercial invoice and the
// customs declaration.
type Renderer struct{}

// NewRenderer builds a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderInvoice produces the commercial invoice PDF.
func (r *Renderer) RenderInvoice(doc *Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return render(doc, "COMMERCIAL INVOICE")
}

// RenderDeclaration produces the customs declaration PDF.
func (r *Renderer) RenderDeclaration(doc *Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return render(doc, "CUSTOMS DECLARATION")
}

func render(doc *Document, title string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order: %s", doc.OrderName), "", 1, "L", false, 0, "")
	if doc.Tracking != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Tracking: %s", doc.Tracking), "", 1, "L", false, 0, "")
	}
	if doc.Reference != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Reference: %s", doc.Reference), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", doc.Date.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	renderParty(pdf, "Sender", doc.Sender)
	renderParty(pdf, "Receiver", doc.Receiver)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(70, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "HS Code", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Origin", "1", 0, "C", true, 0, "")
	pdf.CellFormat(15, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 7, "Unit Value", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 7, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range doc.Lines {
		pdf.CellFormat(70, 7, line.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, line.HSCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, line.OriginCountry, "1", 0, "C", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, line.UnitValue.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, line.TotalValue().StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(130, 7, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, fmt.Sprintf("%.2f kg", doc.TotalWeightKG()), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, doc.TotalValue().StringFixed(2)+" "+currencyOrDefault(doc.Currency), "1", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 4, "I declare that the information above is true and correct to the best of my knowledge.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderParty(pdf *gofpdf.Fpdf, label string, p Party) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, label, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, p.Name, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, p.Street, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, p.City+", "+p.Country, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "EUR"
	}
	return currency
}

// Package receipt renders the order receipt document.
package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/altynbek07/cafe-order-bot/internal/flow"
	"github.com/altynbek07/cafe-order-bot/internal/i18n"
)

// Data is the order summary a receipt is rendered from.
type Data struct {
	Items      []flow.SelectedItem
	DailyTotal int64
	DateCount  int
	FinalTotal int64
	Dates      []string
}

const fontName = "DejaVuSans"

// PDFRenderer produces a PDF receipt. The font must cover Cyrillic, the
// built-in PDF core fonts do not.
type PDFRenderer struct {
	fontPath string
	tr       i18n.Translator
}

// NewPDFRenderer creates a renderer using the TTF font at fontPath.
func NewPDFRenderer(fontPath string, tr i18n.Translator) *PDFRenderer {
	return &PDFRenderer{
		fontPath: fontPath,
		tr:       tr,
	}
}

// Render produces the receipt document bytes.
func (r *PDFRenderer) Render(data Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8Font(fontName, "", r.fontPath)
	pdf.SetFont(fontName, "", 12)
	pdf.AddPage()

	writeLine := func(text string) {
		pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	}

	writeLine(r.tr.T("receipt.title"))
	writeLine("=============================")

	for _, item := range data.Items {
		writeLine(fmt.Sprintf(r.tr.T("receipt.item_line"), item.Name, item.Price))
	}

	pdf.Ln(4)
	writeLine(fmt.Sprintf(r.tr.T("receipt.daily_total"), data.DailyTotal))
	writeLine(fmt.Sprintf(r.tr.T("receipt.date_count"), data.DateCount))
	writeLine(fmt.Sprintf(r.tr.T("receipt.final_total"), data.FinalTotal))
	writeLine(fmt.Sprintf(r.tr.T("receipt.dates"), strings.Join(data.Dates, ", ")))
	pdf.Ln(8)
	writeLine(r.tr.T("receipt.thanks"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}

	return buf.Bytes(), nil
}

package export

import (
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

const (
	pdfMargin     = 10.0
	pdfLineHeight = 6.0
	pdfPageWidth  = 297.0
)

// WritePDF renders t as a landscape A4 table report.
func WritePDF(w io.Writer, t Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	title := t.Title
	if title == "" {
		title = "Export"
	}
	pdf.SetTitle(title, false)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 5, "Generated "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(8)

	if len(t.Headers) == 0 {
		return pdf.Output(w)
	}

	colWidth := (pdfPageWidth - 2*pdfMargin) / float64(len(t.Headers))
	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range t.Headers {
			pdf.CellFormat(colWidth, pdfLineHeight+1, fit(pdf, h, colWidth), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	header()
	_, pageHeight := pdf.GetPageSize()
	for _, row := range t.Rows {
		if pdf.GetY()+pdfLineHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			header()
		}
		for _, v := range row {
			pdf.CellFormat(colWidth, pdfLineHeight, fit(pdf, v, colWidth), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// fit truncates s so that it renders inside width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > limit {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

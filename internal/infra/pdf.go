package infra

// pdf.go: daily shift summary rendered with go-pdf/fpdf.
// Layout:
//   - Station / shift header
//   - Daily cash statement (label, amount; totals in bold)
//   - Gun sales table
//   - Tank stock table
//   - Attendant summary table
//
// The output file is saved to storagePath/daily_summary_{shift name}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fuelstation/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateDailySummaryPDF writes the daily summary of one shift and returns
// the path of the generated file.
func GenerateDailySummaryPDF(summary *dto.DailySummaryResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	fileName := fmt.Sprintf("daily_summary_%s.pdf", strings.NewReplacer("/", "_", " ", "_").Replace(summary.ShiftName))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, summary.Station, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Daily Summary", "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW/2, 5, summary.ShiftName+"  "+summary.Type, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, summary.Date+"  ("+summary.State+")", "", 1, "R", false, 0, "")
	separator(pdf, pageW)

	// ── Cash statement ───────────────────────────────────────────────────────
	labelW, amountW := contentW*0.75, contentW*0.25
	for _, l := range summary.Lines {
		style := ""
		if l.Bold || l.Amount == nil {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 8)
		amount := ""
		if l.Amount != nil {
			amount = l.Amount.StringFixed(2)
		}
		pdf.CellFormat(labelW, 5, l.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(amountW, 5, amount, "", 1, "R", false, 0, "")
	}
	separator(pdf, pageW)

	// ── Gun sales ────────────────────────────────────────────────────────────
	if len(summary.Guns) > 0 {
		rows := make([][]string, 0, len(summary.Guns))
		for _, g := range summary.Guns {
			rows = append(rows, []string{g.Gun, g.Product, g.Employee, qty(g.OpeningReading), qty(g.ClosingReading),
				qty(g.RTT), qty(g.NetSales), g.PriceUnit.StringFixed(2), g.Amount.StringFixed(2)})
		}
		table(pdf, contentW, "Gun Sales",
			[]string{"Gun", "Product", "Attendant", "Opening", "Closing", "RTT", "Net", "Price", "Amount"},
			[]float64{0.10, 0.13, 0.15, 0.12, 0.12, 0.07, 0.09, 0.09, 0.13}, rows)
	}

	// ── Tanks ────────────────────────────────────────────────────────────────
	if len(summary.Tanks) > 0 {
		rows := make([][]string, 0, len(summary.Tanks))
		for _, t := range summary.Tanks {
			rows = append(rows, []string{t.Tank, t.Product, qty(t.OpeningQty), qty(t.ReceivedQty), qty(t.SalesQty),
				qty(t.BookQty), qty(t.ClosingDipQty), qty(t.Variance)})
		}
		table(pdf, contentW, "Tank Stock",
			[]string{"Tank", "Product", "Opening", "Received", "Sales", "Book", "Dip", "Variance"},
			[]float64{0.12, 0.16, 0.12, 0.12, 0.12, 0.12, 0.12, 0.12}, rows)
	}

	// ── Attendants ───────────────────────────────────────────────────────────
	if len(summary.Attendants) > 0 {
		rows := make([][]string, 0, len(summary.Attendants))
		for _, a := range summary.Attendants {
			rows = append(rows, []string{a.Employee, a.TotalSales.StringFixed(2), a.CreditSales.StringFixed(2),
				a.ExpectedCash.StringFixed(2), a.CashCollected.StringFixed(2), a.Variance.StringFixed(2)})
		}
		table(pdf, contentW, "Attendants",
			[]string{"Attendant", "Total Sales", "Credit", "Expected", "Collected", "Variance"},
			[]float64{0.25, 0.15, 0.15, 0.15, 0.15, 0.15}, rows)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func qty(d decimal.Decimal) string { return d.StringFixed(2) }

func separator(pdf *fpdf.Fpdf, pageW float64) {
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)
}

// table writes a titled table; widths are fractions of contentW.
func table(pdf *fpdf.Fpdf, contentW float64, title string, header []string, widths []float64, rows [][]string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 7)
	for i, h := range header {
		pdf.CellFormat(contentW*widths[i], 5, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 7)
	for _, row := range rows {
		for i, cell := range row {
			align := "R"
			if i == 0 || !looksNumeric(cell) {
				align = "L"
			}
			pdf.CellFormat(contentW*widths[i], 5, cell, "", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func looksNumeric(s string) bool {
	_, err := decimal.NewFromString(s)
	return err == nil
}

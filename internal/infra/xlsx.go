package infra

// xlsx.go renders the station period reports as workbooks with
// xuri/excelize. Derived columns are written as formulas so the sheet stays
// live when an accountant edits a figure.

import (
	"fmt"

	"fuelstation/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var wetSummaryCols = []string{
	"Date", "Opening Stock", "Deliveries", "Sales", "Book Stock", "Closing Stock", "Variance Loss/Gain",
	"Cumulative Variance", "Cumulative Sales", "Cumulative Percentage (%)",
}

var cashSummaryCols = []string{
	"DATE", "PMS", "PMS AMOUNT", "AGO", "AGO AMOUNT", "BIK", "BIK AMOUNT", "LTRS", "TOTAL AMNT", "LUBES", "LPG SALES", "OTHERS",
	"RECEIPTS", "TOTAL INCOME", "CREDIT SALES", "RTT", "OTHER EXP.", "PAYMENTS", "EXP.BANKING", "ACT BANKING", "DIFF",
}

var creditSummaryCols = []string{
	"Date", "Station", "LPO", "Vehicle No.", "Invoice", "Account Number", "Account Name", "Product",
	"LTRS/PCS", "Customer Rate", "Amount",
}

var tankStockCols = []string{
	"Date", "Shift", "Tank", "Max Volume", "Opening Quantity", "Received Quantity", "Sales Quantity", "Closing Dip Quantity",
}

// sheetWriter writes one sheet with a bold header font and a normal body font.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	bold   int
	normal int
	err    error
}

func newSheetWriter(title string) (*sheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", title); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Family: "Arial", Bold: true, Size: 11}})
	if err != nil {
		return nil, err
	}
	normal, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Family: "Arial", Size: 10}})
	if err != nil {
		return nil, err
	}
	return &sheetWriter{f: f, sheet: title, bold: bold, normal: normal}, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func colName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

// set writes value at (col,row); the first error sticks and later writes are
// skipped.
func (w *sheetWriter) set(col, row int, value interface{}, style int) {
	if w.err != nil {
		return
	}
	cell := cellName(col, row)
	if d, ok := value.(decimal.Decimal); ok {
		value = d.InexactFloat64()
	}
	if w.err = w.f.SetCellValue(w.sheet, cell, value); w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
}

func (w *sheetWriter) formula(col, row int, expr string, style int) {
	if w.err != nil {
		return
	}
	cell := cellName(col, row)
	if w.err = w.f.SetCellFormula(w.sheet, cell, expr); w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
}

func (w *sheetWriter) header(row int, cols []string) {
	for i, c := range cols {
		w.set(i+1, row, c, w.bold)
	}
}

// totals writes a TOTALS row summing columns 2..n over [first,last].
func (w *sheetWriter) totals(row, first, last, n int) {
	w.set(1, row, "TOTALS", w.bold)
	for col := 2; col <= n; col++ {
		letter := colName(col)
		w.formula(col, row, fmt.Sprintf("SUM(%s%d:%s%d)", letter, first, letter, last), w.bold)
	}
}

func (w *sheetWriter) done() (*excelize.File, error) {
	if w.err != nil {
		_ = w.f.Close()
		return nil, fmt.Errorf("xlsx: %w", w.err)
	}
	return w.f, nil
}

// WetSummaryWorkbook writes one block per tank: a title row, the column
// header, one row per day and a TOTALS row.
func WetSummaryWorkbook(tanks []dto.WetSummaryTank) (*excelize.File, error) {
	w, err := newSheetWriter("Wet Stock Summary")
	if err != nil {
		return nil, err
	}
	r := 1
	for _, tank := range tanks {
		w.set(1, r, "Tank: "+tank.Tank, w.bold)
		w.set(7, r, "Capacity: "+tank.Capacity.String(), w.bold)
		if w.err == nil {
			w.err = w.f.MergeCell(w.sheet, cellName(1, r), cellName(6, r))
		}
		if w.err == nil {
			w.err = w.f.MergeCell(w.sheet, cellName(7, r), cellName(10, r))
		}
		r++
		w.header(r, wetSummaryCols)
		r++
		first := r
		for _, row := range tank.Rows {
			w.set(1, r, row.Date, w.normal)
			w.set(2, r, row.OpeningStock, w.normal)
			w.set(3, r, row.Deliveries, w.normal)
			w.set(4, r, row.Sales, w.normal)
			w.formula(5, r, fmt.Sprintf("B%d+C%d-D%d", r, r, r), w.normal)
			w.set(6, r, row.ClosingStock, w.normal)
			w.formula(7, r, fmt.Sprintf("F%d-E%d", r, r), w.normal)
			if r == first {
				w.formula(8, r, fmt.Sprintf("G%d", r), w.normal)
				w.formula(9, r, fmt.Sprintf("D%d", r), w.normal)
			} else {
				w.formula(8, r, fmt.Sprintf("H%d+G%d", r-1, r), w.normal)
				w.formula(9, r, fmt.Sprintf("I%d+D%d", r-1, r), w.normal)
			}
			w.formula(10, r, fmt.Sprintf("IFERROR(ROUND(100*H%d/I%d,1),0)", r, r), w.normal)
			r++
		}
		w.totals(r, first, r-1, len(wetSummaryCols))
		r += 2
	}
	return w.done()
}

func CashSummaryWorkbook(rows []dto.CashSummaryRow) (*excelize.File, error) {
	w, err := newSheetWriter("Cash Summary")
	if err != nil {
		return nil, err
	}
	w.header(1, cashSummaryCols)
	r := 2
	for _, row := range rows {
		w.set(1, r, row.Date, w.normal)
		w.set(2, r, row.PMS, w.normal)
		w.set(3, r, row.PMSAmount, w.normal)
		w.set(4, r, row.AGO, w.normal)
		w.set(5, r, row.AGOAmount, w.normal)
		w.set(6, r, row.BIK, w.normal)
		w.set(7, r, row.BIKAmount, w.normal)
		w.formula(8, r, fmt.Sprintf("B%d+D%d+F%d", r, r, r), w.normal)
		w.formula(9, r, fmt.Sprintf("C%d+E%d+G%d", r, r, r), w.normal)
		w.set(10, r, row.Lubes, w.normal)
		w.set(11, r, row.LPG, w.normal)
		w.set(12, r, row.Others, w.normal)
		w.set(13, r, row.Receipts, w.normal)
		w.formula(14, r, fmt.Sprintf("SUM(I%d:M%d)", r, r), w.normal)
		w.set(15, r, row.CreditSales, w.normal)
		w.set(16, r, row.RTT, w.normal)
		w.set(17, r, row.OtherExpenses, w.normal)
		w.set(18, r, row.Payments, w.normal)
		w.formula(19, r, fmt.Sprintf("N%d-O%d-P%d-Q%d", r, r, r, r), w.normal)
		w.set(20, r, row.ActualBanking, w.normal)
		w.formula(21, r, fmt.Sprintf("S%d-R%d", r, r), w.normal)
		r++
	}
	w.totals(r, 2, r-1, len(cashSummaryCols))
	return w.done()
}

func CreditSummaryWorkbook(rows []dto.CreditSummaryRow) (*excelize.File, error) {
	w, err := newSheetWriter("Credit Summary")
	if err != nil {
		return nil, err
	}
	w.header(1, creditSummaryCols)
	for i, row := range rows {
		r := i + 2
		w.set(1, r, row.Date, w.normal)
		w.set(2, r, row.Station, w.normal)
		w.set(3, r, row.LPO, w.normal)
		w.set(4, r, row.VehicleNo, w.normal)
		w.set(5, r, row.Invoice, w.normal)
		w.set(6, r, row.AccountNumber, w.normal)
		w.set(7, r, row.AccountName, w.normal)
		w.set(8, r, row.Product, w.normal)
		w.set(9, r, row.Quantity, w.normal)
		w.set(10, r, row.Rate, w.normal)
		w.set(11, r, row.Amount, w.normal)
	}
	return w.done()
}

func TankStockWorkbook(rows []dto.TankStockRow) (*excelize.File, error) {
	w, err := newSheetWriter("Daily Tank Stock")
	if err != nil {
		return nil, err
	}
	w.header(1, tankStockCols)
	for i, row := range rows {
		r := i + 2
		w.set(1, r, row.Date, w.normal)
		w.set(2, r, row.Shift, w.normal)
		w.set(3, r, row.Tank, w.normal)
		w.set(4, r, row.MaxVolume, w.normal)
		w.set(5, r, row.OpeningQty, w.normal)
		w.set(6, r, row.ReceivedQty, w.normal)
		w.set(7, r, row.SalesQty, w.normal)
		w.set(8, r, row.ClosingDipQty, w.normal)
	}
	return w.done()
}

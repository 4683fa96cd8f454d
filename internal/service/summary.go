package service

import (
	"context"

	"fuelstation/internal/model"
	"fuelstation/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// employeeTotals accumulates one employee's shift figures before they are
// materialized as a SummaryLine.
type employeeTotals struct {
	employeeID    *uuid.UUID
	wet           decimal.Decimal
	lube          decimal.Decimal
	lpg           decimal.Decimal
	other         decimal.Decimal
	direct        decimal.Decimal
	discount      decimal.Decimal
	credit        decimal.Decimal
	collections   decimal.Decimal
	expenses      decimal.Decimal
	cashCollected decimal.Decimal
}

type summaryBuilder struct {
	order  []uuid.UUID
	totals map[uuid.UUID]*employeeTotals
}

func newSummaryBuilder() *summaryBuilder {
	return &summaryBuilder{totals: map[uuid.UUID]*employeeTotals{}}
}

// get returns the accumulator of an employee; lines without an employee
// share the uuid.Nil bucket.
func (b *summaryBuilder) get(employeeID *uuid.UUID) *employeeTotals {
	key := uuid.Nil
	if employeeID != nil {
		key = *employeeID
	}
	t, ok := b.totals[key]
	if !ok {
		t = &employeeTotals{}
		if employeeID != nil {
			id := *employeeID
			t.employeeID = &id
		}
		b.totals[key] = t
		b.order = append(b.order, key)
	}
	return t
}

// addByStockType books amount under the lube, lpg or other column.
func (t *employeeTotals) addByStockType(stockType string, amount decimal.Decimal) {
	switch stockType {
	case model.StockLube:
		t.lube = t.lube.Add(amount)
	case model.StockLPG:
		t.lpg = t.lpg.Add(amount)
	case model.StockOther:
		t.other = t.other.Add(amount)
	}
}

// buildSummary rebuilds the per-employee summary rows from scratch in one
// pass over each line collection. Rows come out in first-seen order.
func buildSummary(sc *shiftScope) []model.SummaryLine {
	s := sc.shift
	b := newSummaryBuilder()

	for _, l := range s.GunSaleLines {
		t := b.get(l.EmployeeID)
		t.wet = t.wet.Add(l.Amount)
	}
	for _, l := range s.DrySaleLines {
		t := b.get(l.EmployeeID)
		t.addByStockType(sc.product(l.ProductID).StockType, l.Amount)
		t.discount = t.discount.Add(l.Discount.Mul(l.Quantity))
	}
	for _, l := range s.OtherSaleLines {
		t := b.get(l.EmployeeID)
		t.other = t.other.Add(l.Amount)
		t.discount = t.discount.Add(l.Discount.Mul(l.Quantity))
	}
	// Credit amounts land in credit sales and again under their stock type;
	// expected cash takes the credit column back out.
	for _, l := range s.CreditSaleLines {
		t := b.get(l.EmployeeID)
		t.credit = t.credit.Add(l.Amount)
		t.addByStockType(sc.product(l.ProductID).StockType, l.Amount)
	}
	for _, l := range s.DirectSaleLines {
		t := b.get(l.EmployeeID)
		t.direct = t.direct.Add(l.Amount)
	}
	for _, l := range s.CollectionLines {
		t := b.get(l.EmployeeID)
		t.collections = t.collections.Add(l.Amount)
	}
	for _, l := range s.ExpenseLines {
		t := b.get(l.EmployeeID)
		t.expenses = t.expenses.Add(l.Amount)
	}
	for _, l := range s.PaymentLines {
		if l.Type != model.PaymentLinePayment {
			continue
		}
		t := b.get(l.EmployeeID)
		t.cashCollected = t.cashCollected.Add(l.Amount)
	}

	rows := make([]model.SummaryLine, 0, len(b.order))
	for _, key := range b.order {
		t := b.totals[key]
		row := model.SummaryLine{
			ShiftID:       s.ID,
			EmployeeID:    t.employeeID,
			WetSales:      t.wet,
			LubeSales:     t.lube,
			LPGSales:      t.lpg,
			OtherSales:    t.other,
			DirectSales:   t.direct,
			Discount:      t.discount,
			CreditSales:   t.credit,
			Collections:   t.collections,
			Expenses:      t.expenses,
			CashCollected: t.cashCollected,
		}
		computeSummaryAmounts(&row)
		rows = append(rows, row)
	}
	return rows
}

// computeSummaryAmounts derives total sales, expected cash and variance.
// A negative variance is a shortage.
func computeSummaryAmounts(row *model.SummaryLine) {
	row.TotalSales = row.WetSales.Add(row.LubeSales).Add(row.LPGSales).Add(row.OtherSales).Add(row.DirectSales)
	row.ExpectedCash = row.TotalSales.Add(row.Collections).Sub(row.Expenses).Sub(row.CreditSales)
	row.Variance = row.ExpectedCash.Sub(row.CashCollected).Neg()
}

func validateSummaryClosing(sc *shiftScope, actor Actor) error {
	allowed := sc.station.AllowableCashVariance
	for _, row := range sc.shift.SummaryLines {
		expenses := decimal.Zero
		for _, e := range sc.shift.ExpenseLines {
			if sameEmployee(e.EmployeeID, row.EmployeeID) {
				expenses = expenses.Add(e.Amount)
			}
		}
		name := sc.employeeName(row.EmployeeID)
		if expenses.GreaterThan(row.ExpectedCash) {
			return validationf("%s's expenses cannot exceed their total cash collected", name)
		}
		if row.Variance.IsNegative() && floatCompare(row.Variance.Abs(), allowed) > 0 {
			if actor.IsStationAccountant() {
				continue
			}
			return validationf("%s summary variance exceeds allowed station variance of %s", name, allowed.StringFixed(2))
		}
	}
	return nil
}

// closeSummary appends every non-zero employee variance to the employee's
// running shortage ledger.
func closeSummary(ctx context.Context, sc *shiftScope, catalog repository.CatalogRepository) error {
	var rows []model.EmployeeVariance
	for _, row := range sc.shift.SummaryLines {
		if row.EmployeeID == nil || row.Variance.IsZero() {
			continue
		}
		rows = append(rows, model.EmployeeVariance{
			EmployeeID: *row.EmployeeID,
			ShiftID:    sc.shift.ID,
			Name:       sc.shift.Name + " Short",
			Amount:     row.Variance,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return catalog.AddEmployeeVariances(ctx, rows)
}

// varianceStatus splits the shift's variances into what the station owes
// back (liability, positive variances) and what it absorbs (loss).
func varianceStatus(rows []model.SummaryLine) (liability, loss decimal.Decimal) {
	liability, loss = decimal.Zero, decimal.Zero
	for _, row := range rows {
		if floatIsZero(row.Variance) {
			continue
		}
		if floatCompare(row.Variance, decimal.Zero) > 0 {
			liability = liability.Add(row.Variance)
		} else {
			loss = loss.Add(row.Variance.Abs())
		}
	}
	return liability, loss
}

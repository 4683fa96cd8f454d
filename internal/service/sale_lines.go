package service

import (
	"context"

	"fuelstation/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLine is the contract shared by the five sale categories.
type SaleLine interface {
	ComputePrice(ctx context.Context, sc *shiftScope, prices PriceLookup) error
	ComputeAmount(sc *shiftScope)
	Validate(sc *shiftScope) error
	// ToOrderLine returns nil when nothing is left to sell through a regular
	// order, e.g. when credit sales absorb the whole quantity.
	ToOrderLine(sc *shiftScope) *OrderLine
}

var (
	_ SaleLine = (*gunLine)(nil)
	_ SaleLine = (*dryLine)(nil)
	_ SaleLine = (*otherLine)(nil)
	_ SaleLine = (*creditLine)(nil)
	_ SaleLine = (*directLine)(nil)
)

// saleLines wraps every sale line of the shift, gun lines first.
func saleLines(s *model.Shift) []SaleLine {
	var out []SaleLine
	for i := range s.GunSaleLines {
		out = append(out, &gunLine{&s.GunSaleLines[i]})
	}
	for i := range s.DrySaleLines {
		out = append(out, &dryLine{&s.DrySaleLines[i]})
	}
	for i := range s.OtherSaleLines {
		out = append(out, &otherLine{&s.OtherSaleLines[i]})
	}
	for i := range s.CreditSaleLines {
		out = append(out, &creditLine{&s.CreditSaleLines[i]})
	}
	for i := range s.DirectSaleLines {
		out = append(out, &directLine{&s.DirectSaleLines[i]})
	}
	return out
}

func lookupPrice(ctx context.Context, sc *shiftScope, prices PriceLookup, productID uuid.UUID, qty decimal.Decimal) (decimal.Decimal, error) {
	if productID == uuid.Nil {
		return decimal.Zero, nil
	}
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}
	return prices.GetPrice(ctx, sc.station.PricelistID, productID, sc.shift.Date, qty, sc.product(productID).UomID)
}

// lineAmount is (price − discount) × quantity.
func lineAmount(price, discount, qty decimal.Decimal) decimal.Decimal {
	return price.Sub(discount).Mul(qty)
}

// ── Gun ──────────────────────────────────────────────────────────────────────

type gunLine struct{ *model.GunSaleLine }

func (l *gunLine) ComputePrice(ctx context.Context, sc *shiftScope, prices PriceLookup) error {
	p, err := lookupPrice(ctx, sc, prices, l.ProductID, decimal.NewFromInt(1))
	if err != nil {
		return err
	}
	l.PriceUnit = p
	return nil
}

func (l *gunLine) ComputeAmount(sc *shiftScope) {
	electronic := l.ClosingReading.Sub(l.OpeningReading)
	manual := l.ManualClosingReading.Sub(l.ManualOpeningReading)
	sales := electronic
	if sc.station.ReadingType == model.ReadingManual {
		sales = manual
	}
	l.NetSales = sales.Sub(l.RTT)
	l.Amount = l.PriceUnit.Mul(l.NetSales)
	l.ReadingDifference = electronic.Sub(manual)
	// an unused meter must not look like a discrepancy
	if floatIsZero(manual) || floatIsZero(electronic) {
		l.ReadingDifference = decimal.Zero
	}
}

// Validate refuses meters that run backwards. The meter the station sells by
// is always checked; the other one only once a closing reading is entered.
func (l *gunLine) Validate(sc *shiftScope) error {
	salesOpen, salesClose := l.OpeningReading, l.ClosingReading
	otherOpen, otherClose := l.ManualOpeningReading, l.ManualClosingReading
	if sc.station.ReadingType == model.ReadingManual {
		salesOpen, salesClose, otherOpen, otherClose = otherOpen, otherClose, salesOpen, salesClose
	}
	backwards := floatCompare(salesClose, salesOpen) < 0 ||
		(!floatIsZero(otherClose) && floatCompare(otherClose, otherOpen) < 0)
	if backwards || l.ReadingDifference.IsNegative() {
		return validationf("Gun sale closing reading must be greater than opening reading! %s", sc.gunName(l.GunID))
	}
	return nil
}

func (l *gunLine) ToOrderLine(sc *shiftScope) *OrderLine {
	p := sc.product(l.ProductID)
	var loc *uuid.UUID
	if t := sc.station.TankByID(l.TankID); t != nil {
		id := t.LocationID
		loc = &id
	}
	return &OrderLine{
		PartnerID:  sc.cashPartner(),
		ProductID:  l.ProductID,
		Name:       p.Name,
		Quantity:   l.NetSales,
		UomID:      p.UomID,
		PriceUnit:  l.PriceUnit,
		EmployeeID: l.EmployeeID,
		LocationID: loc,
	}
}

// groupGunLinesByProduct folds the gun lines into one cash-customer order
// line per product, net of that product's credit sales. The price and
// location of the first line of each product are used.
func groupGunLinesByProduct(sc *shiftScope) []OrderLine {
	var order []uuid.UUID
	grouped := map[uuid.UUID]*OrderLine{}
	for i := range sc.shift.GunSaleLines {
		gl := &gunLine{&sc.shift.GunSaleLines[i]}
		if g, ok := grouped[gl.ProductID]; ok {
			g.Quantity = g.Quantity.Add(gl.NetSales)
			continue
		}
		ol := gl.ToOrderLine(sc)
		ol.EmployeeID = nil
		grouped[gl.ProductID] = ol
		order = append(order, gl.ProductID)
	}
	out := make([]OrderLine, 0, len(order))
	for _, pid := range order {
		g := grouped[pid]
		g.Quantity = g.Quantity.Sub(sc.creditQuantity(pid, nil, false))
		if g.Quantity.Sign() <= 0 {
			continue
		}
		out = append(out, *g)
	}
	return out
}

// ── Dry ──────────────────────────────────────────────────────────────────────

type dryLine struct{ *model.DrySaleLine }

func (l *dryLine) ComputePrice(ctx context.Context, sc *shiftScope, prices PriceLookup) error {
	p, err := lookupPrice(ctx, sc, prices, l.ProductID, l.Quantity)
	if err != nil {
		return err
	}
	l.PriceUnit = p
	return nil
}

func (l *dryLine) ComputeAmount(_ *shiftScope) {
	l.Amount = lineAmount(l.PriceUnit, l.Discount, l.Quantity)
	l.AfterQuantity = l.BeforeQuantity.Sub(l.Quantity)
}

func (l *dryLine) Validate(_ *shiftScope) error {
	if l.Discount.GreaterThan(l.PriceUnit) {
		return validationf("Dry sales discount cannot be greater than item price unit!")
	}
	if l.AfterQuantity.IsNegative() {
		return validationf("Dry stock remaining quantity cannot be less than 0")
	}
	return nil
}

func (l *dryLine) ToOrderLine(sc *shiftScope) *OrderLine {
	qty := l.Quantity.Sub(sc.creditQuantity(l.ProductID, l.EmployeeID, true))
	if qty.Sign() <= 0 {
		return nil
	}
	p := sc.product(l.ProductID)
	return &OrderLine{
		PartnerID:  sc.cashPartner(),
		ProductID:  l.ProductID,
		Name:       p.Name,
		Quantity:   qty,
		UomID:      p.UomID,
		PriceUnit:  l.PriceUnit.Sub(l.Discount),
		EmployeeID: l.EmployeeID,
		LocationID: sc.station.DryStockLocationID,
	}
}

// ── Other ────────────────────────────────────────────────────────────────────

type otherLine struct{ *model.OtherSaleLine }

func (l *otherLine) ComputePrice(ctx context.Context, sc *shiftScope, prices PriceLookup) error {
	p, err := lookupPrice(ctx, sc, prices, l.ProductID, l.Quantity)
	if err != nil {
		return err
	}
	l.PriceUnit = p
	return nil
}

func (l *otherLine) ComputeAmount(_ *shiftScope) {
	l.Amount = lineAmount(l.PriceUnit, l.Discount, l.Quantity)
}

func (l *otherLine) Validate(_ *shiftScope) error {
	if l.Discount.GreaterThan(l.PriceUnit) {
		return validationf("Other sales discount cannot be greater than item price unit!")
	}
	return nil
}

func (l *otherLine) ToOrderLine(sc *shiftScope) *OrderLine {
	qty := l.Quantity.Sub(sc.creditQuantity(l.ProductID, l.EmployeeID, true))
	if qty.Sign() <= 0 {
		return nil
	}
	p := sc.product(l.ProductID)
	return &OrderLine{
		PartnerID:  sc.cashPartner(),
		ProductID:  l.ProductID,
		Name:       p.Name,
		Quantity:   qty,
		UomID:      p.UomID,
		PriceUnit:  l.PriceUnit.Sub(l.Discount),
		EmployeeID: l.EmployeeID,
		LocationID: sc.productLocation(l.ProductID),
	}
}

// ── Credit ───────────────────────────────────────────────────────────────────

type creditLine struct{ *model.CreditSaleLine }

func (l *creditLine) ComputePrice(ctx context.Context, sc *shiftScope, prices PriceLookup) error {
	p, err := lookupPrice(ctx, sc, prices, l.ProductID, l.Quantity)
	if err != nil {
		return err
	}
	l.PriceUnit = p
	return nil
}

func (l *creditLine) ComputeAmount(_ *shiftScope) {
	l.Amount = lineAmount(l.PriceUnit, l.Discount, l.Quantity)
}

func (l *creditLine) Validate(_ *shiftScope) error {
	if l.Discount.GreaterThan(l.PriceUnit) {
		return validationf("Credit sales discount cannot be greater than item price unit!")
	}
	return nil
}

func (l *creditLine) ToOrderLine(sc *shiftScope) *OrderLine {
	if l.Quantity.Sign() <= 0 {
		return nil
	}
	p := sc.product(l.ProductID)
	return &OrderLine{
		PartnerID:  l.PartnerID,
		ProductID:  l.ProductID,
		Name:       p.Name,
		Quantity:   l.Quantity,
		UomID:      p.UomID,
		PriceUnit:  l.PriceUnit.Sub(l.Discount),
		EmployeeID: l.EmployeeID,
		LocationID: sc.productLocation(l.ProductID),
	}
}

// ── Direct ───────────────────────────────────────────────────────────────────

type directLine struct{ *model.DirectSaleLine }

func (l *directLine) ComputePrice(ctx context.Context, sc *shiftScope, prices PriceLookup) error {
	p, err := lookupPrice(ctx, sc, prices, l.ProductID, l.Quantity)
	if err != nil {
		return err
	}
	l.PriceUnit = p
	return nil
}

func (l *directLine) ComputeAmount(_ *shiftScope) {
	l.Amount = lineAmount(l.PriceUnit, l.Discount, l.Quantity)
}

func (l *directLine) Validate(_ *shiftScope) error {
	if l.Discount.GreaterThan(l.PriceUnit) {
		return validationf("Direct sales discount cannot be greater than item price unit!")
	}
	return nil
}

func (l *directLine) ToOrderLine(sc *shiftScope) *OrderLine {
	if l.Quantity.Sign() <= 0 {
		return nil
	}
	p := sc.product(l.ProductID)
	var loc *uuid.UUID
	if t := sc.station.TankByID(l.TankID); t != nil {
		id := t.LocationID
		loc = &id
	}
	return &OrderLine{
		PartnerID:  l.PartnerID,
		ProductID:  l.ProductID,
		Name:       p.Name,
		Quantity:   l.Quantity,
		UomID:      p.UomID,
		PriceUnit:  l.PriceUnit.Sub(l.Discount),
		EmployeeID: l.EmployeeID,
		LocationID: loc,
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fuelstation/internal/model"
	"fuelstation/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

type fixedPrices map[uuid.UUID]decimal.Decimal

func (p fixedPrices) GetPrice(_ context.Context, _ *uuid.UUID, productID uuid.UUID, _ time.Time, _ decimal.Decimal, _ *uuid.UUID) (decimal.Decimal, error) {
	price, ok := p[productID]
	if !ok {
		return decimal.Zero, notFound("price", productID)
	}
	return price, nil
}

type testActor struct {
	id         uuid.UUID
	accountant bool
}

func (a testActor) EmployeeID() uuid.UUID     { return a.id }
func (a testActor) IsStationAccountant() bool { return a.accountant }

var (
	attendant  = testActor{id: uuid.New()}
	accountant = testActor{id: uuid.New(), accountant: true}
)

type fixture struct {
	sc      *shiftScope
	diesel  model.Product
	oil     model.Product
	tank    *model.Tank
	gunID   uuid.UUID
	empA    uuid.UUID
	empB    uuid.UUID
	dryLoc  uuid.UUID
	cashJnl uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		diesel:  model.Product{ID: uuid.New(), Name: "Diesel", IsWet: true},
		oil:     model.Product{ID: uuid.New(), Name: "Engine Oil", IsDryStock: true, StockType: model.StockLube},
		gunID:   uuid.New(),
		empA:    uuid.New(),
		empB:    uuid.New(),
		dryLoc:  uuid.New(),
		cashJnl: uuid.New(),
	}
	tankID := uuid.New()
	station := &model.Station{
		ID:                 uuid.New(),
		Name:               "Highway",
		Code:               "HW01",
		ReadingType:        model.ReadingElectronic,
		DryStockLocationID: &f.dryLoc,
		UnbankedJournalID:  &f.cashJnl,
		Tanks: []model.Tank{{
			ID: tankID, Name: "T1", ProductID: f.diesel.ID, LocationID: uuid.New(),
			MaxVolume: dec("20000"), AllowableVariance: dec("20"), AllowableGunVariance: dec("5"),
			Guns: []model.Gun{{ID: f.gunID, TankID: tankID, Name: "G1"}},
		}},
	}
	f.tank = &station.Tanks[0]
	f.sc = &shiftScope{
		shift: &model.Shift{ID: uuid.New(), Name: "FMS/HW01/0001", StationID: station.ID,
			Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), State: model.ShiftRunning},
		station: station,
		products: map[uuid.UUID]model.Product{
			f.diesel.ID: f.diesel,
			f.oil.ID:    f.oil,
		},
		employees: map[uuid.UUID]model.Employee{
			f.empA: {ID: f.empA, Name: "Alice"},
			f.empB: {ID: f.empB, Name: "Bob"},
		},
	}
	return f
}

func (f *fixture) gunLine(opening, closing string, emp uuid.UUID) *model.GunSaleLine {
	f.sc.shift.GunSaleLines = append(f.sc.shift.GunSaleLines, model.GunSaleLine{
		GunID: f.gunID, TankID: f.tank.ID, ProductID: f.diesel.ID, EmployeeID: &emp,
		OpeningReading: dec(opening), ClosingReading: dec(closing),
	})
	return &f.sc.shift.GunSaleLines[len(f.sc.shift.GunSaleLines)-1]
}

// ── Sale lines ───────────────────────────────────────────────────────────────

func TestGunLine_NetSalesAndAmount(t *testing.T) {
	f := newFixture()
	l := f.gunLine("1000", "1500", f.empA)
	l.RTT = dec("20")
	gl := &gunLine{l}

	require.NoError(t, gl.ComputePrice(context.Background(), f.sc, fixedPrices{f.diesel.ID: dec("10")}))
	gl.ComputeAmount(f.sc)

	assert.True(t, l.NetSales.Equal(dec("480")))
	assert.True(t, l.Amount.Equal(dec("4800")))
	assert.True(t, l.ReadingDifference.IsZero(), "an unused manual meter is not a discrepancy")
	assert.NoError(t, gl.Validate(f.sc))
}

func TestGunLine_ManualStationUsesManualMeter(t *testing.T) {
	f := newFixture()
	f.sc.station.ReadingType = model.ReadingManual
	l := f.gunLine("1000", "1500", f.empA)
	l.ManualOpeningReading = dec("200")
	l.ManualClosingReading = dec("690")
	l.PriceUnit = dec("2")
	gl := &gunLine{l}

	gl.ComputeAmount(f.sc)

	assert.True(t, l.NetSales.Equal(dec("490")))
	assert.True(t, l.Amount.Equal(dec("980")))
	assert.True(t, l.ReadingDifference.Equal(dec("10")))
	assert.NoError(t, gl.Validate(f.sc))
}

func TestGunLine_NegativeReadingDifferenceFails(t *testing.T) {
	f := newFixture()
	l := f.gunLine("1000", "1400", f.empA)
	l.ManualOpeningReading = dec("1000")
	l.ManualClosingReading = dec("1450")
	gl := &gunLine{l}

	gl.ComputeAmount(f.sc)
	require.True(t, l.ReadingDifference.Equal(dec("-50")))

	err := gl.Validate(f.sc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "G1")
}

func TestGunLine_ClosingBelowOpeningFails(t *testing.T) {
	f := newFixture()
	l := f.gunLine("1000", "900", f.empA)
	gl := &gunLine{l}

	gl.ComputeAmount(f.sc)
	require.True(t, l.ReadingDifference.IsZero(), "the manual meter is unused")

	err := gl.Validate(f.sc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "G1")

	unused := f.gunLine("1000", "1200", f.empA)
	unused.ManualOpeningReading = dec("500")
	assert.NoError(t, (&gunLine{unused}).Validate(f.sc), "a manual meter left blank is not read")

	unused.ManualClosingReading = dec("450")
	assert.Error(t, (&gunLine{unused}).Validate(f.sc))

	f.sc.station.ReadingType = model.ReadingManual
	m := f.gunLine("1000", "1000", f.empA)
	m.ManualOpeningReading = dec("500")
	m.ManualClosingReading = dec("499.99")
	assert.Error(t, (&gunLine{m}).Validate(f.sc))
}

func TestDryLine_AmountAndRemainingStock(t *testing.T) {
	f := newFixture()
	l := &model.DrySaleLine{ProductID: f.oil.ID, Quantity: dec("4"), Discount: dec("1"),
		PriceUnit: dec("12"), BeforeQuantity: dec("10")}
	dl := &dryLine{l}

	dl.ComputeAmount(f.sc)
	assert.True(t, l.Amount.Equal(dec("44")))
	assert.True(t, l.AfterQuantity.Equal(dec("6")))
	assert.NoError(t, dl.Validate(f.sc))

	l.Quantity = dec("11")
	dl.ComputeAmount(f.sc)
	assert.True(t, errors.Is(dl.Validate(f.sc), ErrValidation))
}

func TestDryLine_DiscountAbovePriceFails(t *testing.T) {
	f := newFixture()
	l := &model.DrySaleLine{ProductID: f.oil.ID, Quantity: dec("1"), Discount: dec("13"),
		PriceUnit: dec("12"), BeforeQuantity: dec("10")}
	dl := &dryLine{l}
	dl.ComputeAmount(f.sc)

	err := dl.Validate(f.sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discount")
}

func TestDryLine_CreditOfSameEmployeeIsNetted(t *testing.T) {
	f := newFixture()
	empA := f.empA
	empB := f.empB
	partner := uuid.New()
	f.sc.shift.CreditSaleLines = []model.CreditSaleLine{
		{ProductID: f.oil.ID, EmployeeID: &empA, PartnerID: partner, Quantity: dec("40")},
		{ProductID: f.oil.ID, EmployeeID: &empB, PartnerID: partner, Quantity: dec("25")},
	}
	l := &model.DrySaleLine{ProductID: f.oil.ID, EmployeeID: &empA, Quantity: dec("100"), PriceUnit: dec("5")}

	ol := (&dryLine{l}).ToOrderLine(f.sc)
	require.NotNil(t, ol)
	assert.True(t, ol.Quantity.Equal(dec("60")))
	assert.Equal(t, &f.dryLoc, ol.LocationID)

	l.Quantity = dec("40")
	assert.Nil(t, (&dryLine{l}).ToOrderLine(f.sc), "credit absorbs the whole dry sale")
}

func TestGroupGunLinesByProduct_NetsAllCredit(t *testing.T) {
	f := newFixture()
	f.gunLine("0", "300", f.empA)
	f.gunLine("0", "200", f.empB)
	for i := range f.sc.shift.GunSaleLines {
		l := &f.sc.shift.GunSaleLines[i]
		l.PriceUnit = dec("10")
		(&gunLine{l}).ComputeAmount(f.sc)
	}
	f.sc.shift.CreditSaleLines = []model.CreditSaleLine{
		{ProductID: f.diesel.ID, PartnerID: uuid.New(), Quantity: dec("120")},
	}

	lines := groupGunLinesByProduct(f.sc)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Quantity.Equal(dec("380")))
	assert.Nil(t, lines[0].EmployeeID)
	assert.Equal(t, f.tank.LocationID, *lines[0].LocationID)

	f.sc.shift.CreditSaleLines[0].Quantity = dec("500")
	assert.Empty(t, groupGunLinesByProduct(f.sc))
}

func TestLookupPrice_MissingPrice(t *testing.T) {
	f := newFixture()
	l := &model.OtherSaleLine{ProductID: f.oil.ID, Quantity: dec("1")}
	err := (&otherLine{l}).ComputePrice(context.Background(), f.sc, fixedPrices{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

// ── Tanks ────────────────────────────────────────────────────────────────────

func TestUpdateTankOperations_BookAndVariance(t *testing.T) {
	f := newFixture()
	l := f.gunLine("0", "300", f.empA)
	(&gunLine{l}).ComputeAmount(f.sc)
	f.sc.shift.TransferLines = []model.TransferLine{
		{ProductID: f.diesel.ID, LocationID: f.tank.LocationID, Quantity: dec("500"), LoadedQuantity: dec("500")},
	}
	f.sc.shift.TankStockTakes = []model.TankStockTake{
		{TankID: f.tank.ID, OpeningQty: dec("1000"), ClosingDipQty: dec("1190")},
	}

	updateTankOperations(f.sc)

	take := f.sc.shift.TankStockTakes[0]
	assert.True(t, take.SalesQty.Equal(dec("300")))
	assert.True(t, take.ReceivedQty.Equal(dec("500")))
	assert.True(t, take.BookQty.Equal(dec("1200")))
	assert.True(t, take.Variance.Equal(dec("-10")), "dip short of book is a negative variance")
}

func TestValidateTankDips_AboveCapacity(t *testing.T) {
	f := newFixture()
	f.sc.shift.TankStockTakes = []model.TankStockTake{{TankID: f.tank.ID, ClosingDipQty: dec("20000.01")}}
	assert.True(t, errors.Is(validateTankDips(f.sc), ErrValidation))

	f.sc.shift.TankStockTakes[0].ClosingDipQty = dec("20000")
	assert.NoError(t, validateTankDips(f.sc))

	f.sc.shift.TankStockTakes[0].TankID = uuid.New()
	assert.Error(t, validateTankDips(f.sc))
}

// volumeRecorder records tank volume writes; other methods are not called.
type volumeRecorder struct {
	repository.StationRepository
	volumes map[uuid.UUID]decimal.Decimal
}

func (r *volumeRecorder) UpdateTankVolume(_ context.Context, tankID uuid.UUID, v decimal.Decimal) error {
	r.volumes[tankID] = v
	return nil
}

func TestCloseTankTakes_Tolerance(t *testing.T) {
	f := newFixture()
	f.sc.shift.TankStockTakes = []model.TankStockTake{
		{TankID: f.tank.ID, OpeningQty: dec("1000"), ClosingDipQty: dec("950"), Variance: dec("-50")},
	}
	rec := &volumeRecorder{volumes: map[uuid.UUID]decimal.Decimal{}}
	ctx := context.Background()

	err := closeTankTakes(ctx, f.sc, attendant, rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds the allowed variance")

	err = closeTankTakes(ctx, f.sc, accountant, rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reason")
	assert.Empty(t, rec.volumes)

	f.sc.shift.TankStockTakes[0].VarianceReason = "calibration drift"
	require.NoError(t, closeTankTakes(ctx, f.sc, accountant, rec))
	assert.True(t, rec.volumes[f.tank.ID].Equal(dec("950")))
	assert.True(t, f.tank.CurrentVolume.Equal(dec("950")))
}

func TestCloseTankTakes_WithinToleranceAnyone(t *testing.T) {
	f := newFixture()
	f.sc.shift.TankStockTakes = []model.TankStockTake{
		{TankID: f.tank.ID, ClosingDipQty: dec("990"), Variance: dec("-10")},
	}
	rec := &volumeRecorder{volumes: map[uuid.UUID]decimal.Decimal{}}
	require.NoError(t, closeTankTakes(context.Background(), f.sc, attendant, rec))
	assert.True(t, rec.volumes[f.tank.ID].Equal(dec("990")))
}

// ── Summary ──────────────────────────────────────────────────────────────────

func TestComputeSummaryAmounts_VarianceSign(t *testing.T) {
	short := model.SummaryLine{WetSales: dec("100"), CashCollected: dec("90")}
	computeSummaryAmounts(&short)
	assert.True(t, short.ExpectedCash.Equal(dec("100")))
	assert.True(t, short.Variance.Equal(dec("-10")))

	over := model.SummaryLine{WetSales: dec("100"), CashCollected: dec("110")}
	computeSummaryAmounts(&over)
	assert.True(t, over.Variance.Equal(dec("10")))

	mixed := model.SummaryLine{WetSales: dec("1000"), LubeSales: dec("50"), CreditSales: dec("200"),
		Collections: dec("30"), Expenses: dec("80"), CashCollected: dec("800")}
	computeSummaryAmounts(&mixed)
	assert.True(t, mixed.TotalSales.Equal(dec("1050")))
	assert.True(t, mixed.ExpectedCash.Equal(dec("800")))
	assert.True(t, mixed.Variance.IsZero())
}

func TestBuildSummary_PerEmployee(t *testing.T) {
	f := newFixture()
	empA, empB := f.empA, f.empB
	a := f.gunLine("0", "100", empA)
	a.Amount = dec("1000")
	s := f.sc.shift
	s.DrySaleLines = []model.DrySaleLine{
		{ProductID: f.oil.ID, EmployeeID: &empB, Quantity: dec("2"), Discount: dec("1"), Amount: dec("18")},
	}
	s.CreditSaleLines = []model.CreditSaleLine{
		{ProductID: f.oil.ID, EmployeeID: &empB, PartnerID: uuid.New(), Quantity: dec("1"), Amount: dec("10")},
	}
	s.ExpenseLines = []model.ExpenseLine{{EmployeeID: &empA, Name: "Water", Amount: dec("50")}}
	s.PaymentLines = []model.PaymentLine{
		{Type: model.PaymentLinePayment, JournalID: f.cashJnl, EmployeeID: &empA, Amount: dec("940")},
		{Type: model.PaymentLinePayment, JournalID: f.cashJnl, EmployeeID: &empB, Amount: dec("18")},
		{Type: model.PaymentLineBanking, JournalID: uuid.New(), Amount: dec("500")},
	}

	rows := buildSummary(f.sc)
	require.Len(t, rows, 2)

	alice := rows[0]
	assert.Equal(t, empA, *alice.EmployeeID)
	assert.True(t, alice.WetSales.Equal(dec("1000")))
	assert.True(t, alice.ExpectedCash.Equal(dec("950")))
	assert.True(t, alice.Variance.Equal(dec("-10")))

	bob := rows[1]
	assert.Equal(t, empB, *bob.EmployeeID)
	assert.True(t, bob.LubeSales.Equal(dec("28")), "credit counts under its stock type too")
	assert.True(t, bob.CreditSales.Equal(dec("10")))
	assert.True(t, bob.Discount.Equal(dec("2")))
	assert.True(t, bob.ExpectedCash.Equal(dec("18")))
	assert.True(t, bob.Variance.IsZero())

	again := buildSummary(f.sc)
	assert.Equal(t, rows, again, "rebuilding gives the same rows")
}

func TestBuildSummary_DryOtherStockCountsAsOther(t *testing.T) {
	f := newFixture()
	wash := model.Product{ID: uuid.New(), Name: "Car wash token", IsDryStock: true, StockType: model.StockOther}
	f.sc.products[wash.ID] = wash
	emp := f.empA
	f.sc.shift.DrySaleLines = []model.DrySaleLine{
		{ProductID: wash.ID, EmployeeID: &emp, Quantity: dec("3"), Discount: dec("0.5"), Amount: dec("28.5")},
	}
	f.sc.shift.PaymentLines = []model.PaymentLine{
		{Type: model.PaymentLinePayment, JournalID: f.cashJnl, EmployeeID: &emp, Amount: dec("28.5")},
	}

	rows := buildSummary(f.sc)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].OtherSales.Equal(dec("28.5")))
	assert.True(t, rows[0].Discount.Equal(dec("1.5")), "per-unit discount times quantity")
	assert.True(t, rows[0].Variance.IsZero())
}

func TestValidateSummaryClosing(t *testing.T) {
	f := newFixture()
	empA := f.empA
	f.sc.station.AllowableCashVariance = dec("5")
	f.sc.shift.SummaryLines = []model.SummaryLine{
		{EmployeeID: &empA, ExpectedCash: dec("100"), Variance: dec("-10")},
	}

	err := validateSummaryClosing(f.sc, attendant)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Alice")
	assert.NoError(t, validateSummaryClosing(f.sc, accountant))

	f.sc.shift.SummaryLines[0].Variance = dec("-5")
	assert.NoError(t, validateSummaryClosing(f.sc, attendant))

	f.sc.shift.ExpenseLines = []model.ExpenseLine{{EmployeeID: &empA, Amount: dec("150")}}
	err = validateSummaryClosing(f.sc, accountant)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expenses")
}

func TestVarianceStatus(t *testing.T) {
	liability, loss := varianceStatus([]model.SummaryLine{
		{Variance: dec("15")}, {Variance: dec("-4")}, {Variance: dec("-6")}, {Variance: dec("0.001")},
	})
	assert.True(t, liability.Equal(dec("15")))
	assert.True(t, loss.Equal(dec("10")))
}

// ── Cash and warnings ────────────────────────────────────────────────────────

func TestValidateCash(t *testing.T) {
	f := newFixture()
	s := f.sc.shift
	s.OpeningBalance = dec("100")
	s.PaymentLines = []model.PaymentLine{
		{Type: model.PaymentLinePayment, JournalID: f.cashJnl, Amount: dec("400")},
		{Type: model.PaymentLinePayment, JournalID: uuid.New(), Amount: dec("1000")},
		{Type: model.PaymentLineBanking, JournalID: uuid.New(), Amount: dec("500")},
	}
	assert.NoError(t, validateCash(f.sc))

	s.PaymentLines[2].Amount = dec("501")
	assert.True(t, errors.Is(validateCash(f.sc), ErrValidation), "only unbanked cash can be banked")

	s.PaymentLines[2].Amount = dec("0")
	s.PettyCashOpening = dec("20")
	s.PettyCashReimbursed = dec("10")
	s.PettyCashLines = []model.PettyCashLine{{Name: "Tea", Amount: dec("31")}}
	err := validateCash(f.sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Petty cash")
}

func TestAppendWarning(t *testing.T) {
	assert.Equal(t, "", appendWarning("", "  "))
	assert.Equal(t, "a", appendWarning("", "a"))
	assert.Equal(t, "a\nb", appendWarning("a", "b\n"))
}

func TestRequireState(t *testing.T) {
	s := &model.Shift{State: model.ShiftDone}
	assert.NoError(t, requireState(s, "post", model.ShiftDone, model.ShiftApproved))

	err := requireState(s, "start", model.ShiftDraft)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "cannot start a shift in state done", err.Error())
}

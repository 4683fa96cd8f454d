package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fuelstation/internal/dto"
	"fuelstation/internal/erp"
	"fuelstation/internal/infra"
	"fuelstation/internal/model"
	"fuelstation/internal/repository"
	"fuelstation/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

type actor struct {
	id         uuid.UUID
	accountant bool
}

func (a actor) EmployeeID() uuid.UUID     { return a.id }
func (a actor) IsStationAccountant() bool { return a.accountant }

// station is a seeded single-tank, single-gun station with working books.
type station struct {
	db         *gorm.DB
	svc        service.ShiftService
	reports    service.ReportService
	inventory  *erp.Inventory
	model      model.Station
	tank       model.Tank
	gun        model.Gun
	morning    model.ShiftType
	evening    model.ShiftType
	unbanked   model.Journal
	receivable model.Account
	diesel     model.Product
	tankLoc    model.Location
	attendant  actor
	accountant actor
	empID      string
}

func newStation(t *testing.T, now time.Time) *station {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))

	s := &station{db: db}
	create := func(v interface{}) { require.NoError(t, db.Create(v).Error) }

	income := model.Account{Code: "4000", Name: "Fuel income", Type: erp.AccountIncome}
	s.receivable = model.Account{Code: "1200", Name: "Receivables", Type: erp.AccountReceivable}
	cash := model.Account{Code: "1000", Name: "Unbanked cash", Type: erp.AccountCash}
	bank := model.Account{Code: "1010", Name: "Bank", Type: erp.AccountCash}
	expense := model.Account{Code: "6000", Name: "Station expenses", Type: erp.AccountExpense}
	loss := model.Account{Code: "6100", Name: "Cash shortages", Type: erp.AccountExpense}
	liability := model.Account{Code: "2100", Name: "Cash excess", Type: erp.AccountLiability}
	for _, a := range []*model.Account{&income, &s.receivable, &cash, &bank, &expense, &loss, &liability} {
		create(a)
	}

	create(&model.Journal{Name: "Customer Invoices", Type: "sale", DefaultAccountID: &income.ID})
	s.unbanked = model.Journal{Name: "Unbanked", Type: "cash", DefaultAccountID: &cash.ID,
		PaymentMethods: []model.PaymentMethodLine{
			{Name: "Manual In", Direction: model.DirectionInbound},
			{Name: "Manual Out", Direction: model.DirectionOutbound},
		}}
	create(&s.unbanked)
	bankJournal := model.Journal{Name: "Bank", Type: "bank", DefaultAccountID: &bank.ID,
		PaymentMethods: []model.PaymentMethodLine{{Name: "Manual In", Direction: model.DirectionInbound}}}
	create(&bankJournal)
	expenseJournal := model.Journal{Name: "Expenses", Type: "purchase", DefaultAccountID: &expense.ID}
	create(&expenseJournal)

	cashCustomer := model.Partner{Name: "Cash Customer", ReceivableAccountID: &s.receivable.ID}
	create(&cashCustomer)

	s.diesel = model.Product{Name: "Diesel", Code: "AGO", IsWet: true, ListPrice: dec("10"),
		IncomeAccountID: &income.ID, ExpenseAccountID: &expense.ID}
	create(&s.diesel)

	depot := model.Location{Name: "Depot", Usage: erp.UsageInternal}
	s.tankLoc = model.Location{Name: "HW01/Tank 1", Usage: erp.UsageInternal}
	dry := model.Location{Name: "HW01/Shop", Usage: erp.UsageInternal}
	for _, l := range []*model.Location{&depot, &s.tankLoc, &dry} {
		create(l)
	}
	create(&model.StockQuant{ProductID: s.diesel.ID, LocationID: s.tankLoc.ID, Quantity: dec("1000")})
	create(&model.StockQuant{ProductID: s.diesel.ID, LocationID: depot.ID, Quantity: dec("10000")})

	s.model = model.Station{
		Name:                      "Highway",
		Code:                      "HW01",
		ReadingType:               model.ReadingElectronic,
		AllowableCashVariance:     dec("50"),
		DryStockLocationID:        &dry.ID,
		ReceivingSourceLocationID: &depot.ID,
		CashPartnerID:             &cashCustomer.ID,
		UnbankedJournalID:         &s.unbanked.ID,
		ExpenseJournalID:          &expenseJournal.ID,
		LiabilityAccountID:        &liability.ID,
		LossAccountID:             &loss.ID,
		Tanks: []model.Tank{{
			Name: "Tank 1", ProductID: s.diesel.ID, LocationID: s.tankLoc.ID,
			MaxVolume: dec("20000"), CurrentVolume: dec("1000"),
			AllowableVariance: dec("20"), AllowableGunVariance: dec("5"),
			Guns: []model.Gun{{Name: "G1", LastElectronicReading: dec("1000")}},
		}},
	}
	create(&s.model)
	require.NoError(t, db.Model(&s.model).Association("BankingJournals").Append(&bankJournal))
	s.tank = s.model.Tanks[0]
	s.gun = s.tank.Guns[0]

	s.morning = model.ShiftType{Name: "Morning", Sequence: 1, Active: true}
	s.evening = model.ShiftType{Name: "Evening", Sequence: 2, Active: true}
	create(&s.morning)
	create(&s.evening)

	alice := model.Employee{Name: "Alice", Username: "alice", PasswordHash: "x", Role: model.RoleAttendant, Active: true}
	carol := model.Employee{Name: "Carol", Username: "carol", PasswordHash: "x", Role: model.RoleStationAccountant, Active: true}
	create(&alice)
	create(&carol)
	s.attendant = actor{id: alice.ID}
	s.accountant = actor{id: carol.ID, accountant: true}
	s.empID = alice.ID.String()

	shifts := repository.NewShiftRepository(db)
	stations := repository.NewStationRepository(db)
	catalog := repository.NewCatalogRepository(db)
	accounting := erp.NewAccounting(db)
	s.inventory = erp.NewInventory(db)
	s.svc = service.NewShiftService(service.ShiftDeps{
		Shifts:     shifts,
		Stations:   stations,
		History:    repository.NewHistoryRepository(db),
		Catalog:    catalog,
		Prices:     erp.NewPricing(db),
		Inventory:  s.inventory,
		Sales:      erp.NewSales(db, accounting),
		Accounting: accounting,
		DB:         db,
		Now:        func() time.Time { return now },
	})
	s.reports = service.NewReportService(shifts, stations, catalog)
	return s
}

func (s *station) create(t *testing.T, typ model.ShiftType, date string) uuid.UUID {
	t.Helper()
	resp, err := s.svc.Create(context.Background(), dto.CreateShiftRequest{
		StationID: s.model.ID.String(), TypeID: typ.ID.String(), Date: date,
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

// enter records 500 L on the gun, 5000 cash from the attendant and a dip.
func (s *station) enter(t *testing.T, id uuid.UUID, dip string) {
	t.Helper()
	emp := s.empID
	_, err := s.svc.UpdateEntries(context.Background(), id, dto.ShiftEntriesRequest{
		GunReadings: []dto.GunReadingInput{{GunID: s.gun.ID.String(), EmployeeID: &emp, ClosingReading: dec("1500")}},
		Payments:    []dto.PaymentInput{{JournalID: s.unbanked.ID.String(), EmployeeID: &emp, Amount: dec("5000")}},
		Dips:        []dto.DipInput{{TankID: s.tank.ID.String(), ClosingDipQty: dec(dip)}},
	})
	require.NoError(t, err)
}

// closed creates, starts, fills and closes a morning shift on date.
func (s *station) closed(t *testing.T, date string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := s.create(t, s.morning, date)
	_, err := s.svc.Start(ctx, id, s.attendant)
	require.NoError(t, err)
	s.enter(t, id, "500")
	resp, err := s.svc.Done(ctx, id, s.attendant)
	require.NoError(t, err)
	require.Equal(t, model.ShiftDone, resp.State)
	return id
}

func (s *station) reload(t *testing.T, v interface{}, id uuid.UUID) {
	t.Helper()
	require.NoError(t, s.db.First(v, "id = ?", id).Error)
}

// history returns the station's slots around may1 keyed by shift type.
func (s *station) history(t *testing.T) map[uuid.UUID]dto.ShiftHistoryResponse {
	t.Helper()
	rows, err := s.svc.History(context.Background(), s.model.ID, may1.AddDate(0, 0, -1), may1.AddDate(0, 0, 1))
	require.NoError(t, err)
	out := map[uuid.UUID]dto.ShiftHistoryResponse{}
	for _, r := range rows {
		out[uuid.MustParse(r.TypeID)] = r
	}
	return out
}

var may1 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestShiftLifecycle_PostCarriesCashForward(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()

	id := s.create(t, s.morning, "2024-05-01")
	got, err := s.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "FMS/HW01/0001", got.Name)
	assert.Equal(t, model.ShiftDraft, got.State)

	started, err := s.svc.Start(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftRunning, started.State)
	require.Len(t, started.GunSales, 1)
	assert.True(t, started.GunSales[0].OpeningReading.Equal(dec("1000")))
	assert.True(t, started.GunSales[0].PriceUnit.Equal(dec("10")))
	require.Len(t, started.TankStockTakes, 1)
	assert.True(t, started.TankStockTakes[0].OpeningQty.Equal(dec("1000")))

	s.enter(t, id, "500")
	computed, err := s.svc.Compute(ctx, id, s.attendant)
	require.NoError(t, err)
	require.Len(t, computed.Summary, 1)
	assert.Equal(t, "Alice", computed.Summary[0].Employee)
	assert.True(t, computed.Summary[0].ExpectedCash.Equal(dec("5000")))
	assert.True(t, computed.Summary[0].Variance.IsZero())
	assert.True(t, computed.TankStockTakes[0].BookQty.Equal(dec("500")))

	again, err := s.svc.Compute(ctx, id, s.attendant)
	require.NoError(t, err)
	require.Len(t, again.Summary, 1, "compute rebuilds the summary instead of appending")
	assert.True(t, again.Summary[0].ExpectedCash.Equal(computed.Summary[0].ExpectedCash))
	assert.True(t, again.Summary[0].Variance.Equal(computed.Summary[0].Variance))

	done, err := s.svc.Done(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftDone, done.State)
	var tank model.Tank
	s.reload(t, &tank, s.tank.ID)
	assert.True(t, tank.CurrentVolume.Equal(dec("500")))

	posted, err := s.svc.Post(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftInterfaced, posted.State)
	assert.True(t, posted.ClosingBalance.Equal(dec("5000")))
	assert.Empty(t, posted.ClosingWarning)
	assert.NotEmpty(t, posted.Documents)

	var st model.Station
	s.reload(t, &st, s.model.ID)
	assert.True(t, st.ClosingCash.Equal(dec("5000")))
	require.NotNil(t, st.LastShiftID)
	assert.Equal(t, id, *st.LastShiftID)

	var gun model.Gun
	s.reload(t, &gun, s.gun.ID)
	assert.True(t, gun.LastElectronicReading.Equal(dec("1500")))

	onHand, err := s.inventory.AvailableQuantity(ctx, s.diesel.ID, s.tankLoc.ID)
	require.NoError(t, err)
	assert.True(t, onHand.Equal(dec("500")))

	var receivables []model.MoveLine
	require.NoError(t, s.db.Where("account_id = ?", s.receivable.ID).Find(&receivables).Error)
	require.Len(t, receivables, 2)
	for _, l := range receivables {
		assert.True(t, l.Reconciled, "receivable line %s should be reconciled", l.Name)
	}

	history := s.history(t)
	require.Len(t, history, 2)
	require.NotNil(t, history[s.morning.ID].ShiftID)
	assert.Equal(t, id.String(), *history[s.morning.ID].ShiftID)
	assert.Nil(t, history[s.evening.ID].ShiftID, "the next slot is expected but not yet filled")

	_, err = s.svc.Post(ctx, id, s.attendant)
	assert.True(t, errors.Is(err, service.ErrInvalidState), "an interfaced shift cannot be posted twice")
}

func TestShiftLifecycle_NextShiftOpensOnCarriedFigures(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()
	first := s.closed(t, "2024-05-01")
	_, err := s.svc.Post(ctx, first, s.attendant)
	require.NoError(t, err)

	second := s.create(t, s.evening, "2024-05-01")
	resp, err := s.svc.Start(ctx, second, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, "FMS/HW01/0002", resp.Name)
	assert.True(t, resp.OpeningBalance.Equal(dec("5000")))
	require.Len(t, resp.GunSales, 1)
	assert.True(t, resp.GunSales[0].OpeningReading.Equal(dec("1500")))
	assert.True(t, resp.TankStockTakes[0].OpeningQty.Equal(dec("500")))
	assert.False(t, resp.HasStartingWarning)
}

func TestShiftStart_OutOfSequenceNeedsOverride(t *testing.T) {
	s := newStation(t, may1.AddDate(0, 0, 9))
	ctx := context.Background()

	first := s.create(t, s.morning, "2024-05-01")
	_, err := s.svc.Start(ctx, first, s.attendant)
	require.NoError(t, err)

	skipped := s.create(t, s.morning, "2024-05-03")
	resp, err := s.svc.Start(ctx, skipped, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftDraft, resp.State)
	assert.True(t, resp.HasStartingWarning)
	assert.True(t, resp.ShowStartingWarning)

	resp, err = s.svc.SkipStartingWarning(ctx, skipped, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftRunning, resp.State)
	assert.True(t, resp.HasStartingWarning)
	assert.False(t, resp.ShowStartingWarning)
}

func TestShiftStart_FutureDateRefused(t *testing.T) {
	s := newStation(t, may1)
	id := s.create(t, s.morning, "2024-05-02")

	_, err := s.svc.Start(context.Background(), id, s.attendant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))
	assert.Contains(t, err.Error(), "future")
}

func TestShiftCreate_SlotRules(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()
	s.create(t, s.morning, "2024-05-01")

	_, err := s.svc.Create(ctx, dto.CreateShiftRequest{
		StationID: s.model.ID.String(), TypeID: s.morning.ID.String(), Date: "2024-05-01",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same day and type")

	_, err = s.svc.Create(ctx, dto.CreateShiftRequest{
		StationID: s.model.ID.String(), TypeID: s.evening.ID.String(), Date: "2024-05-01",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another shift is open")

	_, err = s.svc.Create(ctx, dto.CreateShiftRequest{
		StationID: uuid.NewString(), TypeID: s.morning.ID.String(), Date: "2024-05-01",
	})
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestShiftDone_DipVarianceNeedsAccountant(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()
	id := s.create(t, s.morning, "2024-05-01")
	_, err := s.svc.Start(ctx, id, s.attendant)
	require.NoError(t, err)
	s.enter(t, id, "400")

	_, err = s.svc.Done(ctx, id, s.attendant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))

	got, err := s.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftRunning, got.State, "a refused close leaves the shift untouched")
	var tank model.Tank
	s.reload(t, &tank, s.tank.ID)
	assert.True(t, tank.CurrentVolume.Equal(dec("1000")))

	_, err = s.svc.UpdateEntries(ctx, id, dto.ShiftEntriesRequest{
		Dips: []dto.DipInput{{TankID: s.tank.ID.String(), ClosingDipQty: dec("400"), VarianceReason: "leak under inspection"}},
	})
	require.NoError(t, err)
	done, err := s.svc.Done(ctx, id, s.accountant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftDone, done.State)
	assert.True(t, done.TankStockTakes[0].Variance.Equal(dec("-100")))
}

func TestShiftApproval_CarriesAndRestoresReadings(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()
	id := s.closed(t, "2024-05-01")

	_, err := s.svc.Approve(ctx, id, s.accountant)
	assert.True(t, errors.Is(err, service.ErrInvalidState), "approval must be requested first")

	resp, err := s.svc.RequestApproval(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftWaitingApproval, resp.State)

	_, err = s.svc.Approve(ctx, id, s.attendant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))

	resp, err = s.svc.Approve(ctx, id, s.accountant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftApproved, resp.State)
	var gun model.Gun
	s.reload(t, &gun, s.gun.ID)
	assert.True(t, gun.LastElectronicReading.Equal(dec("1500")))

	resp, err = s.svc.Reject(ctx, id, s.accountant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftDone, resp.State)
	s.reload(t, &gun, s.gun.ID)
	assert.True(t, gun.LastElectronicReading.Equal(dec("1000")))

	resp, err = s.svc.Post(ctx, id, s.accountant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftInterfaced, resp.State)
	s.reload(t, &gun, s.gun.ID)
	assert.True(t, gun.LastElectronicReading.Equal(dec("1500")))
}

func TestShiftCancel_RestoresTankAndFreesSlot(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()
	id := s.closed(t, "2024-05-01")

	resp, err := s.svc.Cancel(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftCancelled, resp.State)

	var tank model.Tank
	s.reload(t, &tank, s.tank.ID)
	assert.True(t, tank.CurrentVolume.Equal(dec("1000")))

	history := s.history(t)
	require.Contains(t, history, s.morning.ID)
	assert.Nil(t, history[s.morning.ID].ShiftID)

	_, err = s.svc.Cancel(ctx, id, s.attendant)
	assert.True(t, errors.Is(err, service.ErrInvalidState))

	resp, err = s.svc.Draft(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftDraft, resp.State)

	_, err = s.svc.Draft(ctx, id, s.attendant)
	assert.True(t, errors.Is(err, service.ErrInvalidState))
}

func TestShiftDraft_ReopensDoneShift(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()
	id := s.closed(t, "2024-05-01")

	resp, err := s.svc.Draft(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftRunning, resp.State)
	var tank model.Tank
	s.reload(t, &tank, s.tank.ID)
	assert.True(t, tank.CurrentVolume.Equal(dec("1000")))
}

func TestShiftUpdateEntries_OnlyWhileOpen(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()
	id := s.closed(t, "2024-05-01")

	_, err := s.svc.UpdateEntries(ctx, id, dto.ShiftEntriesRequest{})
	assert.True(t, errors.Is(err, service.ErrInvalidState))

	_, err = s.svc.Draft(ctx, id, s.attendant)
	require.NoError(t, err)
	_, err = s.svc.UpdateEntries(ctx, id, dto.ShiftEntriesRequest{
		Dips: []dto.DipInput{{TankID: uuid.NewString(), ClosingDipQty: dec("1")}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stock take")
}

// ── Reports ──────────────────────────────────────────────────────────────────

func TestReports_AfterPost(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()
	id := s.closed(t, "2024-05-01")
	_, err := s.svc.Post(ctx, id, s.attendant)
	require.NoError(t, err)

	daily, err := s.reports.DailySummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Interfaced", daily.State)
	assert.Equal(t, "Morning", daily.Type)
	require.NotEmpty(t, daily.Lines)
	assert.Equal(t, "FUEL SALES", daily.Lines[0].Label)
	assert.True(t, daily.Lines[0].Amount.Equal(dec("5000")))
	last := daily.Lines[len(daily.Lines)-1]
	assert.True(t, last.Bold)
	assert.True(t, last.Amount.Equal(dec("5000")))
	require.Len(t, daily.Guns, 1)
	assert.Equal(t, "G1", daily.Guns[0].Gun)
	assert.Equal(t, "Alice", daily.Guns[0].Employee)

	from, to := may1.AddDate(0, 0, -1), may1.AddDate(0, 0, 1)
	cash, err := s.reports.CashSummary(ctx, s.model.ID, from, to)
	require.NoError(t, err)
	require.Len(t, cash, 1)
	assert.Equal(t, "01-05-2024", cash[0].Date)
	assert.True(t, cash[0].AGO.Equal(dec("500")))
	assert.True(t, cash[0].AGOAmount.Equal(dec("5000")))
	assert.True(t, cash[0].Payments.Equal(dec("5000")))
	assert.True(t, cash[0].Diff.IsZero())

	wet, err := s.reports.WetSummary(ctx, s.model.ID, from, to)
	require.NoError(t, err)
	require.Len(t, wet, 1)
	require.Len(t, wet[0].Rows, 1)
	row := wet[0].Rows[0]
	assert.True(t, row.OpeningStock.Equal(dec("1000")))
	assert.True(t, row.Sales.Equal(dec("500")))
	assert.True(t, row.BookStock.Equal(dec("500")))
	assert.True(t, row.Variance.IsZero())

	tanks, err := s.reports.TankStock(ctx, s.model.ID, from, to)
	require.NoError(t, err)
	require.Len(t, tanks, 1)
	assert.Equal(t, "Tank 1", tanks[0].Tank)

	credit, err := s.reports.CreditSummary(ctx, nil, from, to)
	require.NoError(t, err)
	assert.Empty(t, credit)
}

func TestShiftLifecycle_PostBooksEveryEntryKind(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()

	fleet := model.Partner{Name: "Fleet Co", ReceivableAccountID: &s.receivable.ID}
	require.NoError(t, s.db.Create(&fleet).Error)
	repairs := model.Product{Name: "Generator repair", IsService: true, ExpenseAccountID: s.diesel.ExpenseAccountID}
	require.NoError(t, s.db.Create(&repairs).Error)
	pettyAccount := model.Account{Code: "1020", Name: "Petty cash", Type: erp.AccountCash}
	require.NoError(t, s.db.Create(&pettyAccount).Error)
	petty := model.Journal{Name: "Petty Cash", Type: "cash", DefaultAccountID: &pettyAccount.ID}
	require.NoError(t, s.db.Create(&petty).Error)
	require.NoError(t, s.db.Model(&model.Station{}).Where("id = ?", s.model.ID).
		Update("petty_cash_journal_id", petty.ID).Error)
	bob := model.Employee{Name: "Bob", Username: "bob", PasswordHash: "x", Role: model.RoleAttendant, Active: true}
	require.NoError(t, s.db.Create(&bob).Error)
	var bank model.Journal
	require.NoError(t, s.db.First(&bank, "name = ?", "Bank").Error)

	id := s.create(t, s.morning, "2024-05-01")
	_, err := s.svc.Start(ctx, id, s.attendant)
	require.NoError(t, err)

	alice, bobID := s.empID, bob.ID.String()
	reimbursed := dec("50")
	_, err = s.svc.UpdateEntries(ctx, id, dto.ShiftEntriesRequest{
		GunReadings: []dto.GunReadingInput{{GunID: s.gun.ID.String(), EmployeeID: &alice, ClosingReading: dec("1500")}},
		Dips:        []dto.DipInput{{TankID: s.tank.ID.String(), ClosingDipQty: dec("500")}},
		CreditSales: []dto.CreditSaleInput{{
			SaleInput: dto.SaleInput{ProductID: s.diesel.ID.String(), EmployeeID: &alice, Quantity: dec("10")},
			PartnerID: fleet.ID.String(), LPONumber: "LPO-77",
		}},
		DirectSales: []dto.DirectSaleInput{{
			SaleInput: dto.SaleInput{ProductID: s.diesel.ID.String(), EmployeeID: &alice, Quantity: dec("5")},
			TankID:    s.tank.ID.String(), PartnerID: fleet.ID.String(),
		}},
		Collections: []dto.CollectionInput{{PartnerID: fleet.ID.String(), EmployeeID: &alice, Amount: dec("200")}},
		Expenses: []dto.ExpenseInput{{ProductID: repairs.ID.String(), EmployeeID: &alice,
			Name: "Generator belt", Amount: dec("100")}},
		PettyCash: []dto.PettyCashInput{{ProductID: repairs.ID.String(), Name: "Fuses", Amount: dec("30")}},
		Payments: []dto.PaymentInput{
			{JournalID: s.unbanked.ID.String(), EmployeeID: &alice, Amount: dec("5040")},
			{JournalID: s.unbanked.ID.String(), EmployeeID: &bobID, Amount: dec("20")},
		},
		Bankings:            []dto.BankingInput{{JournalID: bank.ID.String(), Name: "Slip 0042", Amount: dec("1000")}},
		PettyCashReimbursed: &reimbursed,
	})
	require.NoError(t, err)

	done, err := s.svc.Done(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftDone, done.State)
	assert.Empty(t, done.ClosingWarning)

	posted, err := s.svc.Post(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftInterfaced, posted.State)
	assert.Empty(t, posted.ClosingWarning, "every order and picking went through")

	// Orders: credit and direct per customer, then the cash customer for
	// the gun sales net of credit.
	partnerNames := map[uuid.UUID]string{fleet.ID: "Fleet Co", *s.model.CashPartnerID: "Cash Customer"}
	var orders []model.SaleOrder
	require.NoError(t, s.db.Preload("Lines").Where("shift_id = ?", id).Find(&orders).Error)
	var got []string
	for _, o := range orders {
		assert.True(t, o.Invoiced)
		require.Len(t, o.Lines, 1)
		got = append(got, partnerNames[o.PartnerID]+" "+o.Lines[0].Quantity.StringFixed(2))
	}
	assert.ElementsMatch(t, []string{"Fleet Co 10.00", "Fleet Co 5.00", "Cash Customer 490.00"}, got)

	onHand, err := s.inventory.AvailableQuantity(ctx, s.diesel.ID, s.tankLoc.ID)
	require.NoError(t, err)
	assert.True(t, onHand.Equal(dec("495")), "got %s", onHand)

	var moves []model.Move
	require.NoError(t, s.db.Preload("Lines").Where("shift_id = ?", id).Find(&moves).Error)
	byRef := map[string]model.Move{}
	invoices := 0
	for _, m := range moves {
		if m.Type == model.MoveOutInvoice {
			invoices++
		}
		byRef[m.Ref] = m
	}
	assert.Equal(t, 3, invoices)
	cashInvoice, ok := byRef["FMS/HW01/0001 Cash Customer"]
	require.True(t, ok, "invoices are labelled with the shift and customer")
	assert.Equal(t, model.MoveOutInvoice, cashInvoice.Type)

	refund, ok := byRef["FMS/HW01/0001 Expenses"]
	require.True(t, ok)
	assert.Equal(t, model.MoveOutRefund, refund.Type)
	assert.Equal(t, "posted", refund.State)
	assert.True(t, debits(refund).Equal(dec("110")), "expense 100 plus the 10 shortage")
	assert.True(t, lineOn(t, refund, *s.model.LossAccountID).Debit.Equal(dec("10")))

	excess, ok := byRef["FMS/HW01/0001 Variance Excess"]
	require.True(t, ok, "Bob's over-collection is owed back")
	assert.Equal(t, model.MoveEntry, excess.Type)
	assert.Equal(t, s.unbanked.ID, excess.JournalID)
	assert.True(t, lineOn(t, excess, *s.model.LiabilityAccountID).Credit.Equal(dec("20")))
	assert.True(t, lineOn(t, excess, *s.unbanked.DefaultAccountID).Debit.Equal(dec("20")))

	pettyMove, ok := byRef["FMS/HW01/0001 | Petty Cash"]
	require.True(t, ok)
	assert.Equal(t, petty.ID, pettyMove.JournalID)
	assert.True(t, lineOn(t, pettyMove, pettyAccount.ID).Credit.Equal(dec("30")))

	var payments []model.Payment
	require.NoError(t, s.db.Where("shift_id = ?", id).Find(&payments).Error)
	require.Len(t, payments, 3)
	paid := map[string]model.Payment{}
	for _, p := range payments {
		assert.Equal(t, "posted", p.State)
		paid[p.Ref] = p
	}
	banking := paid["Slip 0042 Banking"]
	assert.True(t, banking.IsInternalTransfer)
	assert.Equal(t, model.PaymentOutbound, banking.Type)
	require.NotNil(t, banking.DestinationJournalID)
	assert.Equal(t, bank.ID, *banking.DestinationJournalID)
	assert.True(t, banking.Amount.Equal(dec("1000")))
	collection := paid["FMS/HW01/0001 Collection"]
	require.NotNil(t, collection.PartnerID)
	assert.Equal(t, fleet.ID, *collection.PartnerID)
	assert.True(t, collection.Amount.Equal(dec("200")))
	receipt := paid["FMS/HW01/0001 Payment"]
	assert.True(t, receipt.Amount.Equal(dec("5060")), "payment lines are grouped per journal")

	// The cash invoice, the credit note and the receipt share one reconcile
	// reference on the cash customer's receivable.
	var cashReceivable []model.MoveLine
	require.NoError(t, s.db.Where("account_id = ? AND partner_id = ?", s.receivable.ID, *s.model.CashPartnerID).
		Find(&cashReceivable).Error)
	require.Len(t, cashReceivable, 3)
	require.NotNil(t, cashReceivable[0].ReconcileRef)
	for _, l := range cashReceivable[1:] {
		require.NotNil(t, l.ReconcileRef)
		assert.Equal(t, *cashReceivable[0].ReconcileRef, *l.ReconcileRef)
	}

	var ledger []model.EmployeeVariance
	require.NoError(t, s.db.Where("shift_id = ?", id).Find(&ledger).Error)
	require.Len(t, ledger, 2)
	variances := map[uuid.UUID]decimal.Decimal{}
	for _, row := range ledger {
		assert.Equal(t, "FMS/HW01/0001 Short", row.Name)
		variances[row.EmployeeID] = row.Amount
	}
	assert.True(t, variances[s.attendant.id].Equal(dec("-10")))
	assert.True(t, variances[bob.ID].Equal(dec("20")))

	var st model.Station
	s.reload(t, &st, s.model.ID)
	assert.True(t, st.ClosingCash.Equal(dec("4060")), "5060 collected less 1000 banked, got %s", st.ClosingCash)
	assert.True(t, posted.ClosingBalance.Equal(dec("4060")))

	var docs []model.ShiftDocument
	require.NoError(t, s.db.Where("shift_id = ?", id).Find(&docs).Error)
	kinds := map[string]int{}
	for _, d := range docs {
		kinds[d.Kind]++
	}
	assert.Equal(t, 3, kinds[model.DocSaleOrder])
	assert.Equal(t, 3, kinds[model.DocPicking])
	assert.Equal(t, 6, kinds[model.DocMove])
	assert.Equal(t, 3, kinds[model.DocPayment])
}

func TestShiftDone_StockShortfallOnlyWarns(t *testing.T) {
	s := newStation(t, may1)
	ctx := context.Background()
	require.NoError(t, s.db.Model(&model.StockQuant{}).
		Where("product_id = ? AND location_id = ?", s.diesel.ID, s.tankLoc.ID).
		Update("quantity", dec("100")).Error)

	id := s.create(t, s.morning, "2024-05-01")
	_, err := s.svc.Start(ctx, id, s.attendant)
	require.NoError(t, err)
	s.enter(t, id, "500")

	done, err := s.svc.Done(ctx, id, s.attendant)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftDone, done.State)
	assert.Contains(t, done.ClosingWarning, "do not have enough availability")
	assert.Contains(t, done.ClosingWarning, "Diesel: Total sale: 500 / Forecast: 100")

	var stored model.Shift
	s.reload(t, &stored, id)
	assert.Equal(t, model.ShiftDone, stored.State)
	assert.Equal(t, done.ClosingWarning, stored.ClosingWarning)
}

func debits(m model.Move) decimal.Decimal {
	total := decimal.Zero
	for _, l := range m.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

func lineOn(t *testing.T, m model.Move, accountID uuid.UUID) model.MoveLine {
	t.Helper()
	for _, l := range m.Lines {
		if l.AccountID == accountID {
			return l
		}
	}
	require.Failf(t, "missing line", "move %s has no line on account %s", m.Ref, accountID)
	return model.MoveLine{}
}

package erp

import (
	"context"
	"errors"
	"testing"
	"time"

	"fuelstation/internal/infra"
	"fuelstation/internal/model"
	"fuelstation/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

type books struct {
	income, receivable, cash model.Account
	saleJournal, cashJournal model.Journal
	inbound                  model.PaymentMethodLine
	customer                 model.Partner
	diesel                   model.Product
	depot, tank              model.Location
}

func seedBooks(t *testing.T, db *gorm.DB) *books {
	t.Helper()
	b := &books{
		income:     model.Account{Code: "4000", Name: "Fuel income", Type: AccountIncome},
		receivable: model.Account{Code: "1200", Name: "Receivables", Type: AccountReceivable},
		cash:       model.Account{Code: "1000", Name: "Cash", Type: AccountCash},
	}
	require.NoError(t, db.Create(&b.income).Error)
	require.NoError(t, db.Create(&b.receivable).Error)
	require.NoError(t, db.Create(&b.cash).Error)

	b.saleJournal = model.Journal{Name: "Sales", Type: "sale", DefaultAccountID: &b.income.ID}
	b.cashJournal = model.Journal{Name: "Unbanked", Type: "cash", DefaultAccountID: &b.cash.ID,
		PaymentMethods: []model.PaymentMethodLine{{Name: "Manual", Direction: model.DirectionInbound}}}
	require.NoError(t, db.Create(&b.saleJournal).Error)
	require.NoError(t, db.Create(&b.cashJournal).Error)
	b.inbound = b.cashJournal.PaymentMethods[0]

	b.customer = model.Partner{Name: "Cash Customer", ReceivableAccountID: &b.receivable.ID}
	require.NoError(t, db.Create(&b.customer).Error)

	b.diesel = model.Product{Name: "Diesel", Code: "AGO", IsWet: true, ListPrice: dec("10"), IncomeAccountID: &b.income.ID}
	require.NoError(t, db.Create(&b.diesel).Error)

	b.depot = model.Location{Name: "Depot", Usage: UsageInternal}
	b.tank = model.Location{Name: "Tank 1", Usage: UsageInternal}
	require.NoError(t, db.Create(&b.depot).Error)
	require.NoError(t, db.Create(&b.tank).Error)
	return b
}

func quantity(t *testing.T, inv *Inventory, productID, locationID uuid.UUID) decimal.Decimal {
	t.Helper()
	q, err := inv.AvailableQuantity(context.Background(), productID, locationID)
	require.NoError(t, err)
	return q
}

// ── Pricing ──────────────────────────────────────────────────────────────────

func TestPricing_DatedItemThenListPrice(t *testing.T) {
	db := newTestDB(t)
	b := seedBooks(t, db)
	pricelist := uuid.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&model.PricelistItem{
		PricelistID: pricelist, ProductID: b.diesel.ID, Price: dec("9.50"), DateStart: &start, DateEnd: &end,
	}).Error)

	p := NewPricing(db)
	ctx := context.Background()

	price, err := p.GetPrice(ctx, &pricelist, b.diesel.ID, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), dec("1"), nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("9.5")))

	price, err = p.GetPrice(ctx, &pricelist, b.diesel.ID, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), dec("1"), nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("10")), "outside the item's dates the list price applies")

	_, err = p.GetPrice(ctx, nil, uuid.New(), start, dec("1"), nil)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

// ── Inventory ────────────────────────────────────────────────────────────────

func TestInventory_ReceiveMovesQuants(t *testing.T) {
	db := newTestDB(t)
	b := seedBooks(t, db)
	require.NoError(t, db.Create(&model.StockQuant{ProductID: b.diesel.ID, LocationID: b.depot.ID, Quantity: dec("1000")}).Error)
	inv := NewInventory(db)
	ctx := context.Background()

	id, err := inv.Receive(ctx, service.ReceiptRequest{
		ShiftID: uuid.New(), Origin: "FMS/ST01/0001", ProductID: b.diesel.ID, Quantity: dec("400"),
		SourceLocationID: b.depot.ID, DestLocationID: b.tank.ID, Date: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.True(t, quantity(t, inv, b.diesel.ID, b.depot.ID).Equal(dec("600")))
	assert.True(t, quantity(t, inv, b.diesel.ID, b.tank.ID).Equal(dec("400")))

	pending, err := inv.PendingPickings(ctx, []uuid.UUID{id})
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestInventory_ReceiveMoreThanAvailable(t *testing.T) {
	db := newTestDB(t)
	b := seedBooks(t, db)
	require.NoError(t, db.Create(&model.StockQuant{ProductID: b.diesel.ID, LocationID: b.depot.ID, Quantity: dec("100")}).Error)
	inv := NewInventory(db)

	_, err := inv.Receive(context.Background(), service.ReceiptRequest{
		ShiftID: uuid.New(), ProductID: b.diesel.ID, Quantity: dec("150"),
		SourceLocationID: b.depot.ID, DestLocationID: b.tank.ID, Date: time.Now(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInsufficientStock))
	assert.True(t, quantity(t, inv, b.diesel.ID, b.depot.ID).Equal(dec("100")))
}

func TestInventory_SupplierSourceIsUnlimited(t *testing.T) {
	db := newTestDB(t)
	b := seedBooks(t, db)
	supplier := model.Location{Name: "Vendors", Usage: UsageSupplier}
	require.NoError(t, db.Create(&supplier).Error)
	inv := NewInventory(db)

	_, err := inv.Receive(context.Background(), service.ReceiptRequest{
		ShiftID: uuid.New(), ProductID: b.diesel.ID, Quantity: dec("5000"),
		SourceLocationID: supplier.ID, DestLocationID: b.tank.ID, Date: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, quantity(t, inv, b.diesel.ID, b.tank.ID).Equal(dec("5000")))
}

// ── Sales + Accounting ───────────────────────────────────────────────────────

func TestSales_OrderToReconciledInvoice(t *testing.T) {
	db := newTestDB(t)
	b := seedBooks(t, db)
	require.NoError(t, db.Create(&model.StockQuant{ProductID: b.diesel.ID, LocationID: b.tank.ID, Quantity: dec("600")}).Error)

	acc := NewAccounting(db)
	sales := NewSales(db, acc)
	inv := NewInventory(db)
	ctx := context.Background()
	shiftID := uuid.New()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	loc := b.tank.ID

	orderID, err := sales.CreateOrder(ctx, service.OrderRequest{
		ShiftID: shiftID, PartnerID: b.customer.ID, Date: date,
		Lines: []service.OrderLine{{PartnerID: b.customer.ID, ProductID: b.diesel.ID, Name: "Diesel",
			Quantity: dec("500"), PriceUnit: dec("10"), LocationID: &loc}},
	})
	require.NoError(t, err)

	pickings, err := sales.ConfirmOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, pickings, 1)
	require.NoError(t, inv.ValidatePickings(ctx, pickings))
	assert.True(t, quantity(t, inv, b.diesel.ID, b.tank.ID).Equal(dec("100")))

	pendingOrders, err := sales.PendingOrders(ctx, []uuid.UUID{orderID})
	require.NoError(t, err)
	assert.Equal(t, 0, pendingOrders)

	invoiceID, err := sales.InvoiceOrder(ctx, orderID)
	require.NoError(t, err)
	require.NoError(t, acc.PostMoves(ctx, []uuid.UUID{invoiceID}))

	var invoice model.Move
	require.NoError(t, db.Preload("Lines").First(&invoice, "id = ?", invoiceID).Error)
	assert.Equal(t, "posted", invoice.State)
	assert.Equal(t, orderID.String(), invoice.Ref, "no shift row, the order id labels the invoice")
	require.Len(t, invoice.Lines, 2)

	payment, err := acc.CreatePayment(ctx, service.PaymentRequest{
		ShiftID: shiftID, Ref: "cash", Type: model.PaymentInbound, PartnerID: &b.customer.ID,
		JournalID: b.cashJournal.ID, MethodLineID: b.inbound.ID, Amount: dec("5000"), Date: date,
	})
	require.NoError(t, err)
	assert.Equal(t, b.receivable.ID, payment.DestinationAccountID)
	require.NoError(t, acc.PostPayments(ctx, []uuid.UUID{payment.ID}))
	require.NoError(t, acc.Reconcile(ctx, []uuid.UUID{invoiceID}, []uuid.UUID{payment.ID}))

	var receivables []model.MoveLine
	require.NoError(t, db.Where("account_id = ?", b.receivable.ID).Find(&receivables).Error)
	require.Len(t, receivables, 2)
	for _, l := range receivables {
		assert.True(t, l.Reconciled, "receivable line %s should be reconciled", l.Name)
		require.NotNil(t, l.ReconcileRef)
	}
	assert.Equal(t, *receivables[0].ReconcileRef, *receivables[1].ReconcileRef)
}

func TestSales_ConfirmFailsValidationWithoutStock(t *testing.T) {
	db := newTestDB(t)
	b := seedBooks(t, db)
	sales := NewSales(db, NewAccounting(db))
	inv := NewInventory(db)
	ctx := context.Background()
	loc := b.tank.ID

	orderID, err := sales.CreateOrder(ctx, service.OrderRequest{
		ShiftID: uuid.New(), PartnerID: b.customer.ID, Date: time.Now(),
		Lines: []service.OrderLine{{ProductID: b.diesel.ID, Quantity: dec("10"), PriceUnit: dec("10"), LocationID: &loc}},
	})
	require.NoError(t, err)
	pickings, err := sales.ConfirmOrder(ctx, orderID)
	require.NoError(t, err)

	err = inv.ValidatePickings(ctx, pickings)
	assert.True(t, errors.Is(err, service.ErrInsufficientStock))
	pending, err := inv.PendingPickings(ctx, pickings)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestAccounting_UnbalancedEntryRejected(t *testing.T) {
	db := newTestDB(t)
	b := seedBooks(t, db)
	acc := NewAccounting(db)

	_, err := acc.CreateMove(context.Background(), service.MoveRequest{
		ShiftID: uuid.New(), Type: model.MoveEntry, JournalID: b.cashJournal.ID, Date: time.Now(), Ref: "x",
		Lines: []service.MoveLineRequest{
			{AccountID: b.cash.ID, Debit: dec("10")},
			{AccountID: b.income.ID, Credit: dec("9")},
		},
	})
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestAccounting_RefundCounterpartIsCredit(t *testing.T) {
	db := newTestDB(t)
	b := seedBooks(t, db)
	acc := NewAccounting(db)

	id, err := acc.CreateMove(context.Background(), service.MoveRequest{
		ShiftID: uuid.New(), Type: model.MoveOutRefund, JournalID: b.cashJournal.ID, PartnerID: &b.customer.ID,
		Date: time.Now(), Ref: "FMS/ST01/0001 Expenses",
		Lines: []service.MoveLineRequest{{AccountID: b.income.ID, Name: "Cleaning", Debit: dec("200")}},
	})
	require.NoError(t, err)

	var lines []model.MoveLine
	require.NoError(t, db.Where("move_id = ? AND account_id = ?", id, b.receivable.ID).Find(&lines).Error)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Credit.Equal(dec("200")))
}

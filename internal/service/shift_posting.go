package service

import (
	"context"
	"errors"

	"fuelstation/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const pendingDocumentsWarning = "Some sales and transfers could not be automatically validated, please use the magic buttons below to manually validate"

// postedDocuments collects everything a post generates so the shift can
// cross-reference it.
type postedDocuments struct {
	orders   []uuid.UUID
	pickings []uuid.UUID
	moves    []uuid.UUID
	payments []uuid.UUID
}

func (d *postedDocuments) rows(shiftID uuid.UUID) []model.ShiftDocument {
	var out []model.ShiftDocument
	add := func(kind string, ids []uuid.UUID) {
		for _, id := range ids {
			out = append(out, model.ShiftDocument{ShiftID: shiftID, Kind: kind, DocumentID: id})
		}
	}
	add(model.DocSaleOrder, d.orders)
	add(model.DocPicking, d.pickings)
	add(model.DocMove, d.moves)
	add(model.DocPayment, d.payments)
	return out
}

// post realizes a closed shift in the books: receipts, sales orders and
// invoices, payments and bankings, expense/variance/petty-cash entries, then
// the station's carried cash. Any failure aborts the whole transaction.
func (s *shiftService) post(ctx context.Context, sc *shiftScope) error {
	shift, station := sc.shift, sc.station
	if station.CashPartnerID == nil {
		return validationf("Station %s has no cash customer configured", station.Name)
	}
	shift.OpeningBalance = station.ClosingCash
	docs := &postedDocuments{}

	if err := s.receiveStock(ctx, sc, docs); err != nil {
		return err
	}
	cashInvoices, err := s.processSales(ctx, sc, docs)
	if err != nil {
		return err
	}
	toPay, err := s.processPayments(ctx, sc, docs)
	if err != nil {
		return err
	}
	if err := s.processMoves(ctx, sc, cashInvoices, toPay, docs); err != nil {
		return err
	}

	closing := shift.ClosingBalance(station.UnbankedJournalID)
	if err := s.stations.UpdateCash(ctx, station.ID, closing, shift.ID); err != nil {
		return err
	}
	station.ClosingCash = closing
	station.LastShiftID = &shift.ID

	if err := closeSummary(ctx, sc, s.catalog); err != nil {
		return err
	}
	if err := s.carryGunReadings(ctx, sc); err != nil {
		return err
	}

	rows := docs.rows(shift.ID)
	if len(rows) > 0 {
		if err := s.shifts.AddDocuments(ctx, rows); err != nil {
			return err
		}
		shift.Documents = append(shift.Documents, rows...)
	}
	pendingOrders, err := s.sales.PendingOrders(ctx, docs.orders)
	if err != nil {
		return err
	}
	pendingPickings, err := s.inventory.PendingPickings(ctx, docs.pickings)
	if err != nil {
		return err
	}
	if pendingOrders > 0 || pendingPickings > 0 {
		shift.ClosingWarning = appendWarning(shift.ClosingWarning, pendingDocumentsWarning)
	}

	shift.State = model.ShiftInterfaced
	log.Info().Str("shift", shift.Name).Str("station", station.Code).
		Int("orders", len(docs.orders)).Int("payments", len(docs.payments)).Int("moves", len(docs.moves)).
		Str("closing_cash", closing.StringFixed(2)).Msg("shift posted")
	return nil
}

func (s *shiftService) receiveStock(ctx context.Context, sc *shiftScope, docs *postedDocuments) error {
	if len(sc.shift.TransferLines) == 0 {
		return nil
	}
	src := sc.station.ReceivingSourceLocationID
	if src == nil {
		return validationf("Station %s has no receiving source location", sc.station.Name)
	}
	for _, t := range sc.shift.TransferLines {
		pickingID, err := s.inventory.Receive(ctx, ReceiptRequest{
			ShiftID:          sc.shift.ID,
			Origin:           sc.shift.Name,
			ProductID:        t.ProductID,
			Quantity:         t.Quantity,
			SourceLocationID: *src,
			DestLocationID:   t.LocationID,
			Date:             sc.shift.Date,
		})
		if err != nil {
			if errors.Is(err, ErrInsufficientStock) {
				return validationf("You cannot receive more quantity than there is for product %s", sc.product(t.ProductID).Name)
			}
			return err
		}
		docs.pickings = append(docs.pickings, pickingID)
	}
	return nil
}

// partnerGroups keeps order lines per customer in first-seen order.
type partnerGroups struct {
	order []uuid.UUID
	lines map[uuid.UUID][]OrderLine
}

func newPartnerGroups() *partnerGroups {
	return &partnerGroups{lines: map[uuid.UUID][]OrderLine{}}
}

func (g *partnerGroups) add(l *OrderLine) {
	if l == nil {
		return
	}
	if _, ok := g.lines[l.PartnerID]; !ok {
		g.order = append(g.order, l.PartnerID)
	}
	g.lines[l.PartnerID] = append(g.lines[l.PartnerID], *l)
}

// processSales creates the credit, direct and cash-customer orders. It
// returns the cash-customer invoices, which shift payments settle.
func (s *shiftService) processSales(ctx context.Context, sc *shiftScope, docs *postedDocuments) ([]uuid.UUID, error) {
	shift := sc.shift

	credit := newPartnerGroups()
	for i := range shift.CreditSaleLines {
		credit.add((&creditLine{&shift.CreditSaleLines[i]}).ToOrderLine(sc))
	}
	if _, err := s.realizeOrders(ctx, sc, credit, docs); err != nil {
		return nil, err
	}

	direct := newPartnerGroups()
	for i := range shift.DirectSaleLines {
		direct.add((&directLine{&shift.DirectSaleLines[i]}).ToOrderLine(sc))
	}
	if _, err := s.realizeOrders(ctx, sc, direct, docs); err != nil {
		return nil, err
	}

	cash := newPartnerGroups()
	for _, l := range groupGunLinesByProduct(sc) {
		l := l
		cash.add(&l)
	}
	for i := range shift.DrySaleLines {
		cash.add((&dryLine{&shift.DrySaleLines[i]}).ToOrderLine(sc))
	}
	for i := range shift.OtherSaleLines {
		cash.add((&otherLine{&shift.OtherSaleLines[i]}).ToOrderLine(sc))
	}
	return s.realizeOrders(ctx, sc, cash, docs)
}

// realizeOrders runs order → confirm → deliver → invoice per customer and
// posts the invoices.
func (s *shiftService) realizeOrders(ctx context.Context, sc *shiftScope, groups *partnerGroups, docs *postedDocuments) ([]uuid.UUID, error) {
	var invoices []uuid.UUID
	for _, partnerID := range groups.order {
		orderID, err := s.sales.CreateOrder(ctx, OrderRequest{
			ShiftID:     sc.shift.ID,
			PartnerID:   partnerID,
			PricelistID: sc.station.PricelistID,
			Date:        sc.shift.Date,
			Lines:       groups.lines[partnerID],
		})
		if err != nil {
			return nil, err
		}
		docs.orders = append(docs.orders, orderID)

		pickings, err := s.sales.ConfirmOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if len(pickings) > 0 {
			if err := s.inventory.ValidatePickings(ctx, pickings); err != nil {
				if errors.Is(err, ErrInsufficientStock) {
					return nil, validationf("Some of the selected products have no availability!")
				}
				return nil, err
			}
			docs.pickings = append(docs.pickings, pickings...)
		}

		invoiceID, err := s.sales.InvoiceOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoiceID)
	}
	if len(invoices) > 0 {
		if err := s.accounting.PostMoves(ctx, invoices); err != nil {
			return nil, err
		}
		docs.moves = append(docs.moves, invoices...)
	}
	return invoices, nil
}

// findJournal resolves a journal among those configured on the station.
func findJournal(st *model.Station, id uuid.UUID) *model.Journal {
	if st.UnbankedJournal != nil && st.UnbankedJournal.ID == id {
		return st.UnbankedJournal
	}
	for i := range st.PaymentModes {
		if st.PaymentModes[i].ID == id {
			return &st.PaymentModes[i]
		}
	}
	for i := range st.BankingJournals {
		if st.BankingJournals[i].ID == id {
			return &st.BankingJournals[i]
		}
	}
	return nil
}

// processPayments creates the bankings, collections and grouped payment-mode
// receipts, posts them, and returns the receipts that settle cash invoices.
func (s *shiftService) processPayments(ctx context.Context, sc *shiftScope, docs *postedDocuments) ([]uuid.UUID, error) {
	shift, st := sc.shift, sc.station
	var created []uuid.UUID
	var toPay []uuid.UUID
	cashPartner := sc.cashPartner()

	create := func(req PaymentRequest) (uuid.UUID, error) {
		p, err := s.accounting.CreatePayment(ctx, req)
		if err != nil {
			return uuid.Nil, err
		}
		created = append(created, p.ID)
		return p.ID, nil
	}

	// Bankings: one internal transfer per destination journal out of the
	// unbanked journal.
	var bankOrder []uuid.UUID
	bankTotals := map[uuid.UUID]decimal.Decimal{}
	bankRef := map[uuid.UUID]string{}
	for _, l := range shift.PaymentLines {
		if l.Type != model.PaymentLineBanking {
			continue
		}
		if l.Amount.Sign() <= 0 {
			return nil, validationf("Banking amount must be positive")
		}
		if _, ok := bankTotals[l.JournalID]; !ok {
			bankOrder = append(bankOrder, l.JournalID)
			bankRef[l.JournalID] = refOr(l.Name, shift.Name) + " Banking"
		}
		bankTotals[l.JournalID] = bankTotals[l.JournalID].Add(l.Amount)
	}
	if len(bankOrder) > 0 {
		unbanked := st.UnbankedJournal
		if unbanked == nil {
			return nil, validationf("Station %s has no unbanked journal", st.Name)
		}
		method := unbanked.MethodLine(model.DirectionOutbound)
		if method == nil {
			return nil, validationf("Please define an outbound payment method for the journal %s", unbanked.Name)
		}
		for _, journalID := range bankOrder {
			dest := journalID
			if _, err := create(PaymentRequest{
				ShiftID:              shift.ID,
				Ref:                  bankRef[journalID],
				Type:                 model.PaymentOutbound,
				JournalID:            unbanked.ID,
				MethodLineID:         method.ID,
				DestinationJournalID: &dest,
				IsInternalTransfer:   true,
				Amount:               bankTotals[journalID],
				Date:                 shift.Date,
			}); err != nil {
				return nil, err
			}
		}
	}

	for _, l := range shift.CollectionLines {
		if l.Amount.Sign() <= 0 {
			return nil, validationf("Collection amount must be positive")
		}
		unbanked := st.UnbankedJournal
		if unbanked == nil {
			return nil, validationf("Station %s has no unbanked journal", st.Name)
		}
		method := unbanked.MethodLine(model.DirectionInbound)
		if method == nil {
			return nil, validationf("Please define an inbound payment method for the journal %s", unbanked.Name)
		}
		partner := l.PartnerID
		if _, err := create(PaymentRequest{
			ShiftID:      shift.ID,
			Ref:          refOr(l.Name, shift.Name) + " Collection",
			Type:         model.PaymentInbound,
			PartnerID:    &partner,
			JournalID:    unbanked.ID,
			MethodLineID: method.ID,
			Amount:       l.Amount,
			Date:         shift.Date,
		}); err != nil {
			return nil, err
		}
	}

	// Payment lines: one receipt per payment-mode journal, from the cash
	// customer.
	var payOrder []uuid.UUID
	payTotals := map[uuid.UUID]decimal.Decimal{}
	payRef := map[uuid.UUID]string{}
	for _, l := range shift.PaymentLines {
		if l.Type != model.PaymentLinePayment {
			continue
		}
		if l.Amount.Sign() <= 0 {
			return nil, validationf("Payment amount must be positive")
		}
		if _, ok := payTotals[l.JournalID]; !ok {
			payOrder = append(payOrder, l.JournalID)
			payRef[l.JournalID] = refOr(l.Name, shift.Name) + " Payment"
		}
		payTotals[l.JournalID] = payTotals[l.JournalID].Add(l.Amount)
	}
	for _, journalID := range payOrder {
		journal := findJournal(st, journalID)
		if journal == nil {
			return nil, validationf("Journal %s is not a payment mode of station %s", journalID, st.Name)
		}
		method := journal.MethodLine(model.DirectionInbound)
		if method == nil {
			return nil, validationf("Please define an inbound payment method for the journal %s", journal.Name)
		}
		id, err := create(PaymentRequest{
			ShiftID:      shift.ID,
			Ref:          payRef[journalID],
			Type:         model.PaymentInbound,
			PartnerID:    &cashPartner,
			JournalID:    journal.ID,
			MethodLineID: method.ID,
			Amount:       payTotals[journalID],
			Date:         shift.Date,
		})
		if err != nil {
			return nil, err
		}
		toPay = append(toPay, id)
	}

	if len(created) > 0 {
		if err := s.accounting.PostPayments(ctx, created); err != nil {
			return nil, err
		}
		docs.payments = append(docs.payments, created...)
	}
	return toPay, nil
}

func refOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

// processMoves books expenses and the net loss as a credit note to the cash
// customer, any net excess as a liability entry and petty cash spending as an
// expense entry. It then reconciles the cash invoices and credit notes with
// the payment-mode receipts.
func (s *shiftService) processMoves(ctx context.Context, sc *shiftScope, cashInvoices, toPay []uuid.UUID, docs *postedDocuments) error {
	shift, st := sc.shift, sc.station
	cashPartner := sc.cashPartner()
	liability, loss := varianceStatus(shift.SummaryLines)
	var created []uuid.UUID

	// Expenses + loss.
	var refundLines []MoveLineRequest
	for _, e := range shift.ExpenseLines {
		account, err := expenseAccount(sc, e.ProductID)
		if err != nil {
			return err
		}
		pid := e.ProductID
		refundLines = append(refundLines, MoveLineRequest{
			AccountID: account,
			ProductID: &pid,
			Name:      e.Name,
			Quantity:  decimal.NewFromInt(1),
			Debit:     e.Amount,
		})
	}
	if loss.Sign() > 0 {
		if st.LossAccountID == nil {
			return validationf("Station %s has no loss account", st.Name)
		}
		refundLines = append(refundLines, MoveLineRequest{
			AccountID: *st.LossAccountID,
			Name:      shift.Name + " Variance Loss",
			Quantity:  decimal.NewFromInt(1),
			Debit:     loss,
		})
	}
	if len(refundLines) > 0 {
		if st.ExpenseJournalID == nil {
			return validationf("Station %s has no expense journal", st.Name)
		}
		id, err := s.accounting.CreateMove(ctx, MoveRequest{
			ShiftID:   shift.ID,
			Type:      model.MoveOutRefund,
			JournalID: *st.ExpenseJournalID,
			PartnerID: &cashPartner,
			Date:      shift.Date,
			Ref:       shift.Name + " Expenses",
			Lines:     refundLines,
		})
		if err != nil {
			return err
		}
		created = append(created, id)
	}

	if !floatIsZero(liability) {
		unbanked := st.UnbankedJournal
		if unbanked == nil || unbanked.DefaultAccountID == nil {
			return validationf("Station %s has no unbanked journal account", st.Name)
		}
		if st.LiabilityAccountID == nil {
			return validationf("Station %s has no liability account", st.Name)
		}
		ref := shift.Name + " Variance Excess"
		id, err := s.accounting.CreateMove(ctx, MoveRequest{
			ShiftID:   shift.ID,
			Type:      model.MoveEntry,
			JournalID: unbanked.ID,
			PartnerID: &cashPartner,
			Date:      shift.Date,
			Ref:       ref,
			Lines: []MoveLineRequest{
				{AccountID: *unbanked.DefaultAccountID, Name: ref, Debit: liability},
				{AccountID: *st.LiabilityAccountID, Name: ref, Credit: liability},
			},
		})
		if err != nil {
			return err
		}
		created = append(created, id)
	}
	// moves settled by the shift receipts, next to the cash invoices
	settle := append(append([]uuid.UUID{}, cashInvoices...), created...)

	if len(shift.PettyCashLines) > 0 {
		petty := st.PettyCashJournal
		if petty == nil || petty.DefaultAccountID == nil {
			return validationf("Station %s has no petty cash journal account", st.Name)
		}
		ref := shift.Name + " | Petty Cash"
		var lines []MoveLineRequest
		total := decimal.Zero
		for _, p := range shift.PettyCashLines {
			account, err := expenseAccount(sc, p.ProductID)
			if err != nil {
				return err
			}
			pid := p.ProductID
			lines = append(lines, MoveLineRequest{AccountID: account, ProductID: &pid, Name: p.Name, Debit: p.Amount})
			total = total.Add(p.Amount)
		}
		lines = append(lines, MoveLineRequest{AccountID: *petty.DefaultAccountID, Name: ref, Credit: total})
		id, err := s.accounting.CreateMove(ctx, MoveRequest{
			ShiftID:   shift.ID,
			Type:      model.MoveEntry,
			JournalID: petty.ID,
			Date:      shift.Date,
			Ref:       ref,
			Lines:     lines,
		})
		if err != nil {
			return err
		}
		created = append(created, id)
	}

	if len(created) > 0 {
		if err := s.accounting.PostMoves(ctx, created); err != nil {
			return err
		}
		docs.moves = append(docs.moves, created...)
	}
	if len(settle) == 0 || len(toPay) == 0 {
		return nil
	}
	return s.accounting.Reconcile(ctx, settle, toPay)
}

func expenseAccount(sc *shiftScope, productID uuid.UUID) (uuid.UUID, error) {
	p := sc.product(productID)
	if p.ExpenseAccountID == nil {
		name := p.Name
		if name == "" {
			name = productID.String()
		}
		return uuid.Nil, validationf("Product %s has no expense account", name)
	}
	return *p.ExpenseAccountID, nil
}

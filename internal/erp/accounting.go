package erp

import (
	"context"
	"errors"

	"fuelstation/internal/model"
	"fuelstation/internal/repository"
	"fuelstation/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account types.
const (
	AccountReceivable = "receivable"
	AccountLiability  = "liability"
	AccountExpense    = "expense"
	AccountIncome     = "income"
	AccountCash       = "cash"
)

// Accounting books payments and journal entries as double-entry moves.
type Accounting struct {
	db *gorm.DB
}

func NewAccounting(db *gorm.DB) *Accounting { return &Accounting{db: db} }

func invalid(msg string) error { return &service.ValidationError{Msg: msg} }

// receivableAccount is the partner's own receivable account, else the first
// account of type receivable.
func receivableAccount(db *gorm.DB, partnerID *uuid.UUID) (uuid.UUID, error) {
	if partnerID != nil {
		var p model.Partner
		err := db.Select("id", "receivable_account_id").First(&p, "id = ?", *partnerID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, err
		}
		if p.ReceivableAccountID != nil {
			return *p.ReceivableAccountID, nil
		}
	}
	var acc model.Account
	if err := db.Where("type = ?", AccountReceivable).Order("code ASC").Limit(1).Find(&acc).Error; err != nil {
		return uuid.Nil, err
	}
	if acc.ID == uuid.Nil {
		return uuid.Nil, invalid("No receivable account is configured")
	}
	return acc.ID, nil
}

func journalAccount(db *gorm.DB, journalID uuid.UUID) (*model.Journal, error) {
	var j model.Journal
	if err := db.First(&j, "id = ?", journalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("Journal " + journalID.String() + " does not exist")
		}
		return nil, err
	}
	if j.DefaultAccountID == nil {
		return nil, invalid("Journal " + j.Name + " has no default account")
	}
	return &j, nil
}

// CreatePayment stores a draft payment. Its destination account is the
// destination journal's account for internal transfers and the partner's
// receivable otherwise.
func (a *Accounting) CreatePayment(ctx context.Context, req service.PaymentRequest) (*model.Payment, error) {
	db := repository.Conn(ctx, a.db)
	if req.Amount.Sign() <= 0 {
		return nil, invalid("Payment amount must be positive")
	}
	var dest uuid.UUID
	if req.IsInternalTransfer {
		if req.DestinationJournalID == nil {
			return nil, invalid("An internal transfer needs a destination journal")
		}
		j, err := journalAccount(db, *req.DestinationJournalID)
		if err != nil {
			return nil, err
		}
		dest = *j.DefaultAccountID
	} else {
		acc, err := receivableAccount(db, req.PartnerID)
		if err != nil {
			return nil, err
		}
		dest = acc
	}
	shiftID := req.ShiftID
	p := &model.Payment{
		Ref:                  req.Ref,
		Type:                 req.Type,
		PartnerID:            req.PartnerID,
		JournalID:            req.JournalID,
		DestinationJournalID: req.DestinationJournalID,
		IsInternalTransfer:   req.IsInternalTransfer,
		MethodLineID:         req.MethodLineID,
		DestinationAccountID: dest,
		Amount:               req.Amount,
		Date:                 req.Date,
		State:                "draft",
		ShiftID:              &shiftID,
	}
	if err := db.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// PostPayments books each draft payment as a posted entry between its
// journal's account and its destination account.
func (a *Accounting) PostPayments(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return repository.RunTx(ctx, a.db, func(ctx context.Context) error {
		db := repository.Conn(ctx, a.db)
		var payments []model.Payment
		if err := db.Where("id IN ? AND state = ?", ids, "draft").Find(&payments).Error; err != nil {
			return err
		}
		for i := range payments {
			p := &payments[i]
			j, err := journalAccount(db, p.JournalID)
			if err != nil {
				return err
			}
			liquidity := model.MoveLine{AccountID: *j.DefaultAccountID, PartnerID: p.PartnerID, Name: p.Ref}
			counterpart := model.MoveLine{AccountID: p.DestinationAccountID, PartnerID: p.PartnerID, Name: p.Ref}
			if p.Type == model.PaymentInbound {
				liquidity.Debit, counterpart.Credit = p.Amount, p.Amount
			} else {
				liquidity.Credit, counterpart.Debit = p.Amount, p.Amount
			}
			move := model.Move{
				Type:      model.MoveEntry,
				JournalID: p.JournalID,
				PartnerID: p.PartnerID,
				ShiftID:   p.ShiftID,
				Date:      p.Date,
				Ref:       p.Ref,
				State:     "posted",
				Lines:     []model.MoveLine{liquidity, counterpart},
			}
			if err := db.Create(&move).Error; err != nil {
				return err
			}
			if err := db.Model(&model.Payment{}).Where("id = ?", p.ID).
				Updates(map[string]interface{}{"state": "posted", "move_id": move.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateMove stores a draft move. Invoices and credit notes get the
// partner's receivable counterpart; plain entries must already balance.
func (a *Accounting) CreateMove(ctx context.Context, req service.MoveRequest) (uuid.UUID, error) {
	db := repository.Conn(ctx, a.db)
	lines := make([]model.MoveLine, 0, len(req.Lines)+1)
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range req.Lines {
		lines = append(lines, model.MoveLine{
			AccountID: l.AccountID,
			PartnerID: req.PartnerID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Debit:     l.Debit,
			Credit:    l.Credit,
		})
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}

	switch req.Type {
	case model.MoveOutInvoice, model.MoveOutRefund:
		if req.PartnerID == nil {
			return uuid.Nil, invalid("An invoice needs a customer")
		}
		acc, err := receivableAccount(db, req.PartnerID)
		if err != nil {
			return uuid.Nil, err
		}
		counterpart := model.MoveLine{AccountID: acc, PartnerID: req.PartnerID, Name: req.Ref}
		if diff := credit.Sub(debit); diff.Sign() >= 0 {
			counterpart.Debit = diff
		} else {
			counterpart.Credit = diff.Neg()
		}
		lines = append(lines, counterpart)
	case model.MoveEntry:
		if !debit.Equal(credit) {
			return uuid.Nil, invalid("The entry " + req.Ref + " is not balanced")
		}
	default:
		return uuid.Nil, invalid("Unknown move type " + req.Type)
	}

	shiftID := req.ShiftID
	move := model.Move{
		Type:      req.Type,
		JournalID: req.JournalID,
		PartnerID: req.PartnerID,
		ShiftID:   &shiftID,
		Date:      req.Date,
		Ref:       req.Ref,
		State:     "draft",
		Lines:     lines,
	}
	if err := db.Create(&move).Error; err != nil {
		return uuid.Nil, err
	}
	return move.ID, nil
}

func (a *Accounting) PostMoves(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return repository.Conn(ctx, a.db).Model(&model.Move{}).
		Where("id IN ? AND state = ?", ids, "draft").Update("state", "posted").Error
}

// Reconcile groups the open lines of the moves and of the payments' entries
// by (account, partner), restricted to the payments' destination accounts.
// A group whose debits and credits cancel out is marked reconciled; any other
// group with both sides only shares a reconcile reference.
func (a *Accounting) Reconcile(ctx context.Context, moveIDs, paymentIDs []uuid.UUID) error {
	return repository.RunTx(ctx, a.db, func(ctx context.Context) error {
		db := repository.Conn(ctx, a.db)
		var payments []model.Payment
		if err := db.Where("id IN ?", paymentIDs).Find(&payments).Error; err != nil {
			return err
		}
		accounts := map[uuid.UUID]bool{}
		all := append([]uuid.UUID{}, moveIDs...)
		for _, p := range payments {
			accounts[p.DestinationAccountID] = true
			if p.MoveID != nil {
				all = append(all, *p.MoveID)
			}
		}
		var lines []model.MoveLine
		if err := db.Where("move_id IN ? AND reconciled = ?", all, false).Find(&lines).Error; err != nil {
			return err
		}

		type groupKey struct {
			account uuid.UUID
			partner uuid.UUID
		}
		groups := map[groupKey][]model.MoveLine{}
		var order []groupKey
		for _, l := range lines {
			if !accounts[l.AccountID] {
				continue
			}
			k := groupKey{account: l.AccountID}
			if l.PartnerID != nil {
				k.partner = *l.PartnerID
			}
			if _, ok := groups[k]; !ok {
				order = append(order, k)
			}
			groups[k] = append(groups[k], l)
		}

		for _, k := range order {
			group := groups[k]
			balance := decimal.Zero
			var hasDebit, hasCredit bool
			ids := make([]uuid.UUID, 0, len(group))
			for _, l := range group {
				balance = balance.Add(l.Debit).Sub(l.Credit)
				hasDebit = hasDebit || l.Debit.Sign() > 0
				hasCredit = hasCredit || l.Credit.Sign() > 0
				ids = append(ids, l.ID)
			}
			if !hasDebit || !hasCredit {
				continue
			}
			updates := map[string]interface{}{"reconcile_ref": uuid.New()}
			if balance.Round(2).IsZero() {
				updates["reconciled"] = true
			}
			if err := db.Model(&model.MoveLine{}).Where("id IN ?", ids).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift states.
const (
	ShiftDraft           = "draft"
	ShiftRunning         = "running"
	ShiftDone            = "done"
	ShiftWaitingApproval = "waiting_approval"
	ShiftApproved        = "approved"
	ShiftInterfaced      = "interfaced"
	ShiftCancelled       = "cancelled"
)

// ActiveShiftStates are the states that occupy a (station, date).
var ActiveShiftStates = []string{ShiftDraft, ShiftRunning, ShiftDone, ShiftWaitingApproval}

// IsActiveState reports whether state occupies the station's day.
func IsActiveState(state string) bool {
	for _, s := range ActiveShiftStates {
		if s == state {
			return true
		}
	}
	return false
}

// Shift is one attendant work period at a station and owns every entry line
// recorded during it.
type Shift struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"not null;index"`
	StationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Station   *Station   `gorm:"foreignKey:StationID"`
	TypeID    uuid.UUID  `gorm:"type:uuid;not null"`
	Type      *ShiftType `gorm:"foreignKey:TypeID"`
	Date      time.Time  `gorm:"type:date;not null"`
	State     string     `gorm:"type:varchar(20);not null;default:'draft'"`

	OpeningBalance      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	PettyCashOpening    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PettyCashReimbursed decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	ClosingWarning      string
	HasStartingWarning  bool `gorm:"not null;default:false"`
	ShowStartingWarning bool `gorm:"not null;default:false"`
	// ReadingsCarried is set while this shift's closing gun readings stand as
	// the guns' last readings.
	ReadingsCarried bool `gorm:"not null;default:false"`

	GunSaleLines    []GunSaleLine    `gorm:"foreignKey:ShiftID"`
	DrySaleLines    []DrySaleLine    `gorm:"foreignKey:ShiftID"`
	OtherSaleLines  []OtherSaleLine  `gorm:"foreignKey:ShiftID"`
	CreditSaleLines []CreditSaleLine `gorm:"foreignKey:ShiftID"`
	DirectSaleLines []DirectSaleLine `gorm:"foreignKey:ShiftID"`
	CollectionLines []CollectionLine `gorm:"foreignKey:ShiftID"`
	ExpenseLines    []ExpenseLine    `gorm:"foreignKey:ShiftID"`
	PettyCashLines  []PettyCashLine  `gorm:"foreignKey:ShiftID"`
	PaymentLines    []PaymentLine    `gorm:"foreignKey:ShiftID"`
	TransferLines   []TransferLine   `gorm:"foreignKey:ShiftID"`
	SummaryLines    []SummaryLine    `gorm:"foreignKey:ShiftID"`
	TankStockTakes  []TankStockTake  `gorm:"foreignKey:ShiftID"`
	Documents       []ShiftDocument  `gorm:"foreignKey:ShiftID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CashCollected sums payment lines booked to the station's unbanked journal.
func (s *Shift) CashCollected(unbankedJournalID *uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	if unbankedJournalID == nil {
		return total
	}
	for _, l := range s.PaymentLines {
		if l.Type == PaymentLinePayment && l.JournalID == *unbankedJournalID {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// CashBanked sums the banking lines.
func (s *Shift) CashBanked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.PaymentLines {
		if l.Type == PaymentLineBanking {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// ClosingBalance is opening + collected − banked.
func (s *Shift) ClosingBalance(unbankedJournalID *uuid.UUID) decimal.Decimal {
	return s.OpeningBalance.Add(s.CashCollected(unbankedJournalID)).Sub(s.CashBanked())
}

func (s *Shift) PettyCashSpent() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.PettyCashLines {
		total = total.Add(l.Amount)
	}
	return total
}

func (s *Shift) TotalExpenses() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.ExpenseLines {
		total = total.Add(l.Amount)
	}
	return total
}

// ClosingPettyCash is opening + reimbursed − spent.
func (s *Shift) ClosingPettyCash() decimal.Decimal {
	return s.PettyCashOpening.Add(s.PettyCashReimbursed).Sub(s.PettyCashSpent())
}

// ShiftHistory is one expected (station, type, date) slot in the station's
// linear shift sequence, optionally linked to the shift that filled it.
type ShiftHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	StationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_history_slot"`
	TypeID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_history_slot"`
	Date      time.Time  `gorm:"type:date;not null;uniqueIndex:idx_history_slot"`
	ShiftID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
}

// Document kinds cross-referenced from a shift.
const (
	DocSaleOrder = "sale_order"
	DocMove      = "move"
	DocPicking   = "picking"
	DocPayment   = "payment"
)

// ShiftDocument references a record generated while posting a shift.
type ShiftDocument struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShiftID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Kind       string    `gorm:"type:varchar(20);not null"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null"`
}

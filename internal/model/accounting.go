package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	Name string    `gorm:"not null"`
	// Type: "receivable" | "liability" | "expense" | "income" | "cash"
	Type string `gorm:"type:varchar(20);not null"`
}

// Journal groups accounting entries; cash/bank journals carry payment methods.
type Journal struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"not null"`
	Type             string    `gorm:"type:varchar(20);not null"` // cash | bank | sale | general
	DefaultAccountID *uuid.UUID `gorm:"type:uuid"`

	PaymentMethods []PaymentMethodLine `gorm:"foreignKey:JournalID"`
}

// Payment method directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

type PaymentMethodLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	JournalID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	Direction string    `gorm:"type:varchar(10);not null"`
}

// MethodLine returns the first payment method configured for direction.
func (j *Journal) MethodLine(direction string) *PaymentMethodLine {
	if j == nil {
		return nil
	}
	for i := range j.PaymentMethods {
		if j.PaymentMethods[i].Direction == direction {
			return &j.PaymentMethods[i]
		}
	}
	return nil
}

// Move types.
const (
	MoveOutInvoice = "out_invoice"
	MoveOutRefund  = "out_refund"
	MoveEntry      = "entry"
)

// Move is a journal entry: invoice, credit note or miscellaneous entry.
// State: "draft" | "posted"
type Move struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Type        string     `gorm:"type:varchar(20);not null"`
	JournalID   uuid.UUID  `gorm:"type:uuid;not null"`
	PartnerID   *uuid.UUID `gorm:"type:uuid"`
	SaleOrderID *uuid.UUID `gorm:"type:uuid;index"`
	ShiftID     *uuid.UUID `gorm:"type:uuid;index"`
	Date        time.Time  `gorm:"type:date;not null"`
	Ref         string
	State       string `gorm:"type:varchar(10);not null;default:'draft'"`

	Lines []MoveLine `gorm:"foreignKey:MoveID"`
}

type MoveLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MoveID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	AccountID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	PartnerID    *uuid.UUID      `gorm:"type:uuid"`
	ProductID    *uuid.UUID      `gorm:"type:uuid"`
	Name         string
	Quantity     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Debit        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Credit       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Reconciled   bool            `gorm:"not null;default:false"`
	ReconcileRef *uuid.UUID      `gorm:"type:uuid"`
}

// Payment types.
const (
	PaymentInbound  = "inbound"
	PaymentOutbound = "outbound"
)

// Payment is a cash movement against a journal; posting it creates its move.
type Payment struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Ref                  string
	Type                 string          `gorm:"type:varchar(10);not null"`
	PartnerID            *uuid.UUID      `gorm:"type:uuid"`
	JournalID            uuid.UUID       `gorm:"type:uuid;not null"`
	DestinationJournalID *uuid.UUID      `gorm:"type:uuid"`
	IsInternalTransfer   bool            `gorm:"not null;default:false"`
	MethodLineID         uuid.UUID       `gorm:"type:uuid;not null"`
	DestinationAccountID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount               decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Date                 time.Time       `gorm:"type:date;not null"`
	State                string          `gorm:"type:varchar(10);not null;default:'draft'"`
	MoveID               *uuid.UUID      `gorm:"type:uuid"`
	ShiftID              *uuid.UUID      `gorm:"type:uuid;index"`
}

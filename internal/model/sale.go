package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale order states.
const (
	OrderDraft     = "draft"
	OrderConfirmed = "sale"
)

type SaleOrder struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ShiftID     *uuid.UUID `gorm:"type:uuid;index"`
	PartnerID   uuid.UUID  `gorm:"type:uuid;not null"`
	PricelistID *uuid.UUID `gorm:"type:uuid"`
	Date        time.Time  `gorm:"type:date;not null"`
	State       string     `gorm:"type:varchar(10);not null;default:'draft'"`
	Invoiced    bool       `gorm:"not null;default:false"`

	Lines []SaleOrderLine `gorm:"foreignKey:OrderID"`
}

type SaleOrderLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Name       string
	Quantity   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	UomID      *uuid.UUID      `gorm:"type:uuid"`
	PriceUnit  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EmployeeID *uuid.UUID      `gorm:"type:uuid"`
	LocationID *uuid.UUID      `gorm:"type:uuid"`
}

// Subtotal is quantity times unit price.
func (l SaleOrderLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.PriceUnit)
}

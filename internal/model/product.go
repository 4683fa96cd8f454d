package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock types split dry-goods sales in the employee summary.
const (
	StockLube  = "lube"
	StockLPG   = "lpg"
	StockOther = "other"
)

// Product is anything sold, received or expensed at a station. Wet products
// live in tanks; dry-stock products live in the station's dry-stock location.
type Product struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name             string          `gorm:"not null"`
	Code             string          `gorm:"type:varchar(20);index"`
	StockType        string          `gorm:"type:varchar(10)"`
	IsWet            bool            `gorm:"not null;default:false"`
	IsDryStock       bool            `gorm:"not null;default:false"`
	IsService        bool            `gorm:"not null;default:false"`
	UomID            *uuid.UUID      `gorm:"type:uuid"`
	ListPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IncomeAccountID  *uuid.UUID      `gorm:"type:uuid"`
	ExpenseAccountID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt        time.Time
}

// PricelistItem is a dated price for one product in one pricelist.
type PricelistItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PricelistID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MinQuantity decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DateStart   *time.Time      `gorm:"type:date"`
	DateEnd     *time.Time      `gorm:"type:date"`
}

// Partner is a customer: the station's cash customer or a credit account.
type Partner struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name                string     `gorm:"not null"`
	Ref                 string
	ReceivableAccountID *uuid.UUID `gorm:"type:uuid"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Location is a node of the stock location tree.
// Usage: "internal" | "supplier" | "customer" | "transit"
type Location struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name     string     `gorm:"not null"`
	Usage    string     `gorm:"type:varchar(20);not null;default:'internal'"`
	ParentID *uuid.UUID `gorm:"type:uuid"`
}

// StockQuant is the on-hand quantity of a product at an internal location.
type StockQuant struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_quant_product_location;not null"`
	LocationID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_quant_product_location;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
}

// Picking states.
const (
	PickingDraft     = "draft"
	PickingConfirmed = "confirmed"
	PickingAssigned  = "assigned"
	PickingDone      = "done"
)

// Picking is a stock transfer between two locations.
type Picking struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Origin           string
	ShiftID          *uuid.UUID `gorm:"type:uuid;index"`
	SaleOrderID      *uuid.UUID `gorm:"type:uuid;index"`
	SourceLocationID uuid.UUID  `gorm:"type:uuid;not null"`
	DestLocationID   uuid.UUID  `gorm:"type:uuid;not null"`
	State            string     `gorm:"type:varchar(20);not null;default:'draft'"`
	ScheduledDate    time.Time
	DoneAt           *time.Time

	Moves []StockMove `gorm:"foreignKey:PickingID"`
}

// StockMove is one product line of a picking. Moves are never edited once
// their picking is done.
type StockMove struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PickingID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SourceLocationID uuid.UUID       `gorm:"type:uuid;not null"`
	DestLocationID   uuid.UUID       `gorm:"type:uuid;not null"`
	State            string          `gorm:"type:varchar(20);not null;default:'draft'"`
}

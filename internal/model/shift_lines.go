package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GunSaleLine meters one gun over a shift. NetSales, Amount and
// ReadingDifference are derived and rewritten on every compute.
type GunSaleLine struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ShiftID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	GunID      uuid.UUID  `gorm:"type:uuid;not null"`
	TankID     uuid.UUID  `gorm:"type:uuid;not null"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null"`
	EmployeeID *uuid.UUID `gorm:"type:uuid"`

	OpeningReading       decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	ClosingReading       decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	ManualOpeningReading decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	ManualClosingReading decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	CashOpeningReading   decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	CashClosingReading   decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	RTT                  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	PriceUnit         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	NetSales          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Amount            decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ReadingDifference decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
}

// DrySaleLine is a packaged-goods sale out of the dry-stock location.
type DrySaleLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeID     *uuid.UUID      `gorm:"type:uuid"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceUnit      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Amount         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	BeforeQuantity decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AfterQuantity  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

// OtherSaleLine is a service or miscellaneous sale.
type OtherSaleLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeID *uuid.UUID      `gorm:"type:uuid"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceUnit  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
}

// CreditSaleLine is a sale on a customer account, invoiced rather than
// collected as shift cash.
type CreditSaleLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeID     *uuid.UUID      `gorm:"type:uuid"`
	PartnerID      uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceUnit      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Amount         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	LPONumber      string
	VehicleNo      string
	VehicleMileage string
	InvoiceNo      string
}

// DirectSaleLine is bulk product dispensed straight from a tank outlet.
type DirectSaleLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	TankID     uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeID *uuid.UUID      `gorm:"type:uuid"`
	PartnerID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceUnit  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	LPONumber  string
	VehicleNo  string
	InvoiceNo  string
}

// CollectionLine is cash received against a customer's account.
type CollectionLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	PartnerID  uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeID *uuid.UUID      `gorm:"type:uuid"`
	Name       string
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// ExpenseLine is an attendant expense paid out of shift cash.
type ExpenseLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeID *uuid.UUID      `gorm:"type:uuid"`
	Name       string          `gorm:"not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// PettyCashLine is spending out of the petty-cash float.
type PettyCashLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// Payment line types.
const (
	PaymentLinePayment = "payment"
	PaymentLineBanking = "banking"
)

// PaymentLine is either money taken in per payment mode (payment) or cash
// moved from the unbanked journal to a bank journal (banking).
type PaymentLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type       string          `gorm:"type:varchar(10);not null"`
	Name       string
	JournalID  uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeID *uuid.UUID      `gorm:"type:uuid"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TransferLine is stock offloaded into a station location during the shift.
type TransferLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	LocationID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	LoadedQuantity decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Driver         string
	Truck          string
}

// Variance is offloaded minus loaded; never positive once validated.
func (l TransferLine) Variance() decimal.Decimal {
	return l.LoadedQuantity.Sub(l.Quantity).Neg()
}

// SummaryLine is the per-employee cash reconciliation of a shift. Rows are
// rebuilt from scratch on every compute.
type SummaryLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	EmployeeID    *uuid.UUID      `gorm:"type:uuid"`
	WetSales      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	LubeSales     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	LPGSales      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	OtherSales    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	DirectSales   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Discount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreditSales   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Collections   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Expenses      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CashCollected decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalSales    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ExpectedCash  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Variance      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
}

// TankStockTake reconciles one tank over a shift against its physical dip.
type TankStockTake struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShiftID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	TankID         uuid.UUID       `gorm:"type:uuid;not null"`
	OpeningQty     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ReceivedQty    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SalesQty       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ClosingDipQty  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	BookQty        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Variance       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	VarianceReason string
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reading types decide which gun meter drives net sales.
const (
	ReadingElectronic = "electronic"
	ReadingManual     = "manual"
)

// Station is a physical outlet. It carries the journal/account configuration
// used when a shift is posted and the running cash balance carried from the
// last interfaced shift.
type Station struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null"`
	Code         string    `gorm:"type:varchar(4);uniqueIndex;not null"`
	ReadingType  string    `gorm:"type:varchar(20);not null;default:'electronic'"`
	NextSequence int       `gorm:"not null;default:1"`

	// ClosingCash is the cash carried forward; written only by shift posting.
	ClosingCash           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	AllowableCashVariance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LastShiftID           *uuid.UUID      `gorm:"type:uuid"`

	PricelistID               *uuid.UUID `gorm:"type:uuid"`
	DryStockLocationID        *uuid.UUID `gorm:"type:uuid"`
	ReceivingSourceLocationID *uuid.UUID `gorm:"type:uuid"`
	CashPartnerID             *uuid.UUID `gorm:"type:uuid"`
	UnbankedJournalID         *uuid.UUID `gorm:"type:uuid"`
	PettyCashJournalID        *uuid.UUID `gorm:"type:uuid"`
	ExpenseJournalID          *uuid.UUID `gorm:"type:uuid"`
	LiabilityAccountID        *uuid.UUID `gorm:"type:uuid"`
	LossAccountID             *uuid.UUID `gorm:"type:uuid"`
	ReportEmail               *string

	Tanks            []Tank    `gorm:"foreignKey:StationID"`
	CreditPartners   []Partner `gorm:"many2many:station_credit_partners"`
	BankingJournals  []Journal `gorm:"many2many:station_banking_journals"`
	PaymentModes     []Journal `gorm:"many2many:station_payment_modes"`
	UnbankedJournal  *Journal  `gorm:"foreignKey:UnbankedJournalID"`
	PettyCashJournal *Journal  `gorm:"foreignKey:PettyCashJournalID"`
	ExpenseJournal   *Journal  `gorm:"foreignKey:ExpenseJournalID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TankByID returns the station tank with the given id, or nil.
func (s *Station) TankByID(id uuid.UUID) *Tank {
	for i := range s.Tanks {
		if s.Tanks[i].ID == id {
			return &s.Tanks[i]
		}
	}
	return nil
}

// TankForProduct returns the first tank holding productID, or nil.
func (s *Station) TankForProduct(productID uuid.UUID) *Tank {
	for i := range s.Tanks {
		if s.Tanks[i].ProductID == productID {
			return &s.Tanks[i]
		}
	}
	return nil
}

// Tank holds a single wet product. CurrentVolume is the authoritative
// physical stock and is only rewritten when a shift closes its stock take.
type Tank struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	StationID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name                 string          `gorm:"not null"`
	ProductID            uuid.UUID       `gorm:"type:uuid;not null"`
	Product              *Product        `gorm:"foreignKey:ProductID"`
	LocationID           uuid.UUID       `gorm:"type:uuid;not null"`
	MaxVolume            decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CurrentVolume        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	AllowableVariance    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AllowableGunVariance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Guns []Gun `gorm:"foreignKey:TankID"`
}

// Gun is a dispensing nozzle. Its last readings open the next shift's
// gun sale line.
type Gun struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TankID                uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name                  string          `gorm:"not null"`
	LastElectronicReading decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	LastManualReading     decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
	LastCashReading       decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0"`
}

// ShiftType is a sequenced category of shift (morning, evening, ...).
type ShiftType struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"not null"`
	Sequence int       `gorm:"not null;default:10"`
	Active   bool      `gorm:"not null;default:true"`
}

// Employee roles.
const (
	RoleAttendant         = "attendant"
	RoleStationAccountant = "station_accountant"
	RoleAdmin             = "admin"
)

// Employee is both the attendant attributed on shift lines and a login.
type Employee struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        *string
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(30);not null;default:'attendant'"`
	Active       bool      `gorm:"not null;default:true"`
	Stations     []Station `gorm:"many2many:employee_stations"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmployeeVariance is one row of an employee's running shortage/excess ledger.
type EmployeeVariance struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ShiftID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name       string          `gorm:"not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time
}

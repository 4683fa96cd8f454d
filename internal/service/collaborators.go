package service

import (
	"context"
	"time"

	"fuelstation/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor is the acting employee. Every variance override asks it for the
// station-accountant privilege instead of reading ambient request state.
type Actor interface {
	EmployeeID() uuid.UUID
	IsStationAccountant() bool
}

// PriceLookup resolves the unit price of a product on a pricelist.
type PriceLookup interface {
	GetPrice(ctx context.Context, pricelistID *uuid.UUID, productID uuid.UUID, date time.Time, qty decimal.Decimal, uomID *uuid.UUID) (decimal.Decimal, error)
}

// OrderLine is the normalized payload every sale line category produces.
type OrderLine struct {
	PartnerID  uuid.UUID
	ProductID  uuid.UUID
	Name       string
	Quantity   decimal.Decimal
	UomID      *uuid.UUID
	PriceUnit  decimal.Decimal
	EmployeeID *uuid.UUID
	LocationID *uuid.UUID
}

type OrderRequest struct {
	ShiftID     uuid.UUID
	PartnerID   uuid.UUID
	PricelistID *uuid.UUID
	Date        time.Time
	Lines       []OrderLine
}

// Sales realizes grouped order lines as confirmed, invoiced orders.
type Sales interface {
	CreateOrder(ctx context.Context, req OrderRequest) (uuid.UUID, error)
	// ConfirmOrder confirms the order and returns the pickings it generated.
	ConfirmOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)
	// InvoiceOrder creates the draft customer invoice for a confirmed order.
	InvoiceOrder(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error)
	PendingOrders(ctx context.Context, ids []uuid.UUID) (int, error)
}

type ReceiptRequest struct {
	ShiftID          uuid.UUID
	Origin           string
	ProductID        uuid.UUID
	Quantity         decimal.Decimal
	SourceLocationID uuid.UUID
	DestLocationID   uuid.UUID
	Date             time.Time
}

// Inventory owns stock quantities and transfers.
type Inventory interface {
	AvailableQuantity(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error)
	// ValidatePickings confirms, reserves and validates the pickings. It
	// returns an error matching ErrInsufficientStock when a move cannot be
	// reserved.
	ValidatePickings(ctx context.Context, ids []uuid.UUID) error
	// Receive creates and validates a receipt into DestLocationID.
	Receive(ctx context.Context, req ReceiptRequest) (uuid.UUID, error)
	PendingPickings(ctx context.Context, ids []uuid.UUID) (int, error)
}

type PaymentRequest struct {
	ShiftID              uuid.UUID
	Ref                  string
	Type                 string
	PartnerID            *uuid.UUID
	JournalID            uuid.UUID
	MethodLineID         uuid.UUID
	DestinationJournalID *uuid.UUID
	IsInternalTransfer   bool
	Amount               decimal.Decimal
	Date                 time.Time
}

type MoveLineRequest struct {
	AccountID uuid.UUID
	ProductID *uuid.UUID
	Name      string
	Quantity  decimal.Decimal
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// MoveRequest describes a journal entry. For entries of type
// model.MoveEntry the lines must balance; for invoices and credit notes the
// collaborator adds the partner receivable counterpart.
type MoveRequest struct {
	ShiftID   uuid.UUID
	Type      string
	JournalID uuid.UUID
	PartnerID *uuid.UUID
	Date      time.Time
	Ref       string
	Lines     []MoveLineRequest
}

// Accounting creates, posts and reconciles payments and journal entries.
type Accounting interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*model.Payment, error)
	PostPayments(ctx context.Context, ids []uuid.UUID) error
	CreateMove(ctx context.Context, req MoveRequest) (uuid.UUID, error)
	PostMoves(ctx context.Context, ids []uuid.UUID) error
	// Reconcile matches the unreconciled lines of the given moves and the
	// payments' own entries that sit on the payments' destination accounts.
	Reconcile(ctx context.Context, moveIDs, paymentIDs []uuid.UUID) error
}

// ReportDispatcher queues post-processing for an interfaced shift.
type ReportDispatcher interface {
	EnqueueShiftReport(ctx context.Context, shiftID uuid.UUID) error
}

package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateShiftRequest struct {
	StationID string `json:"station_id" validate:"required,uuid"`
	TypeID    string `json:"type_id"    validate:"required,uuid"`
	Date      string `json:"date"       validate:"required,datetime=2006-01-02"`
}

// ShiftEntriesRequest replaces whole line categories. A category left out of
// the payload keeps its current lines; an empty list clears it.
type ShiftEntriesRequest struct {
	GunReadings         []GunReadingInput `json:"gun_readings"          validate:"omitempty,dive"`
	DrySales            []SaleInput       `json:"dry_sales"             validate:"omitempty,dive"`
	OtherSales          []SaleInput       `json:"other_sales"           validate:"omitempty,dive"`
	CreditSales         []CreditSaleInput `json:"credit_sales"          validate:"omitempty,dive"`
	DirectSales         []DirectSaleInput `json:"direct_sales"          validate:"omitempty,dive"`
	Collections         []CollectionInput `json:"collections"           validate:"omitempty,dive"`
	Expenses            []ExpenseInput    `json:"expenses"              validate:"omitempty,dive"`
	PettyCash           []PettyCashInput  `json:"petty_cash"            validate:"omitempty,dive"`
	Payments            []PaymentInput    `json:"payments"              validate:"omitempty,dive"`
	Bankings            []BankingInput    `json:"bankings"              validate:"omitempty,dive"`
	ReceivedStock       []TransferInput   `json:"received_stock"        validate:"omitempty,dive"`
	Dips                []DipInput        `json:"dips"                  validate:"omitempty,dive"`
	PettyCashReimbursed *decimal.Decimal  `json:"petty_cash_reimbursed" validate:"omitempty,min=0"`
}

// GunReadingInput updates the gun line created for GunID at start.
type GunReadingInput struct {
	GunID                string          `json:"gun_id"                 validate:"required,uuid"`
	EmployeeID           *string         `json:"employee_id"            validate:"omitempty,uuid"`
	ClosingReading       decimal.Decimal `json:"closing_reading"        validate:"min=0"`
	ManualClosingReading decimal.Decimal `json:"manual_closing_reading" validate:"min=0"`
	CashClosingReading   decimal.Decimal `json:"cash_closing_reading"   validate:"min=0"`
	RTT                  decimal.Decimal `json:"rtt"                    validate:"min=0"`
}

type SaleInput struct {
	ProductID  string          `json:"product_id"  validate:"required,uuid"`
	EmployeeID *string         `json:"employee_id" validate:"omitempty,uuid"`
	Quantity   decimal.Decimal `json:"quantity"    validate:"min=0"`
	Discount   decimal.Decimal `json:"discount"    validate:"min=0"`
}

type CreditSaleInput struct {
	SaleInput
	PartnerID      string `json:"partner_id" validate:"required,uuid"`
	LPONumber      string `json:"lpo_number"`
	VehicleNo      string `json:"vehicle_no"`
	VehicleMileage string `json:"vehicle_mileage"`
	InvoiceNo      string `json:"invoice_no"`
}

type DirectSaleInput struct {
	SaleInput
	TankID    string `json:"tank_id"    validate:"required,uuid"`
	PartnerID string `json:"partner_id" validate:"required,uuid"`
	LPONumber string `json:"lpo_number"`
	VehicleNo string `json:"vehicle_no"`
	InvoiceNo string `json:"invoice_no"`
}

type CollectionInput struct {
	PartnerID  string          `json:"partner_id"  validate:"required,uuid"`
	EmployeeID *string         `json:"employee_id" validate:"omitempty,uuid"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
}

type ExpenseInput struct {
	ProductID  string          `json:"product_id"  validate:"required,uuid"`
	EmployeeID *string         `json:"employee_id" validate:"omitempty,uuid"`
	Name       string          `json:"name"        validate:"required"`
	Amount     decimal.Decimal `json:"amount"      validate:"min=0"`
}

type PettyCashInput struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Name      string          `json:"name"       validate:"required"`
	Amount    decimal.Decimal `json:"amount"     validate:"min=0"`
}

type PaymentInput struct {
	JournalID  string          `json:"journal_id"  validate:"required,uuid"`
	EmployeeID *string         `json:"employee_id" validate:"omitempty,uuid"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
}

type BankingInput struct {
	JournalID string          `json:"journal_id" validate:"required,uuid"`
	Name      string          `json:"name"       validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type TransferInput struct {
	ProductID      string          `json:"product_id"      validate:"required,uuid"`
	LocationID     string          `json:"location_id"     validate:"required,uuid"`
	Quantity       decimal.Decimal `json:"quantity"        validate:"min=0"`
	LoadedQuantity decimal.Decimal `json:"loaded_quantity" validate:"min=0"`
	Driver         string          `json:"driver"`
	Truck          string          `json:"truck"`
}

// DipInput records the closing dip of the stock take created for TankID.
type DipInput struct {
	TankID         string          `json:"tank_id"         validate:"required,uuid"`
	ClosingDipQty  decimal.Decimal `json:"closing_dip_qty" validate:"min=0"`
	VarianceReason string          `json:"variance_reason"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ShiftResponse struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	StationID           string                 `json:"station_id"`
	TypeID              string                 `json:"type_id"`
	Type                string                 `json:"type,omitempty"`
	Date                string                 `json:"date"`
	State               string                 `json:"state"`
	OpeningBalance      decimal.Decimal        `json:"opening_balance"`
	CashCollected       decimal.Decimal        `json:"cash_collected"`
	CashBanked          decimal.Decimal        `json:"cash_banked"`
	ClosingBalance      decimal.Decimal        `json:"closing_balance"`
	PettyCashOpening    decimal.Decimal        `json:"petty_cash_opening"`
	PettyCashReimbursed decimal.Decimal        `json:"petty_cash_reimbursed"`
	PettyCashSpent      decimal.Decimal        `json:"petty_cash_spent"`
	ClosingPettyCash    decimal.Decimal        `json:"closing_petty_cash"`
	ClosingWarning      string                 `json:"closing_warning,omitempty"`
	HasStartingWarning  bool                   `json:"has_starting_warning"`
	ShowStartingWarning bool                   `json:"show_starting_warning"`
	GunSales            []GunSaleResponse      `json:"gun_sales"`
	Sales               []SaleLineResponse     `json:"sales"`
	TankStockTakes      []TankStockResponse    `json:"tank_stock_takes"`
	Summary             []SummaryLineResponse  `json:"summary"`
	CashLines           []CashLineResponse     `json:"cash_lines"`
	ReceivedStock       []TransferLineResponse `json:"received_stock"`
	Documents           []DocumentResponse     `json:"documents,omitempty"`
}

type GunSaleResponse struct {
	GunID                string          `json:"gun_id"`
	TankID               string          `json:"tank_id"`
	ProductID            string          `json:"product_id"`
	EmployeeID           *string         `json:"employee_id"`
	OpeningReading       decimal.Decimal `json:"opening_reading"`
	ClosingReading       decimal.Decimal `json:"closing_reading"`
	ManualOpeningReading decimal.Decimal `json:"manual_opening_reading"`
	ManualClosingReading decimal.Decimal `json:"manual_closing_reading"`
	CashOpeningReading   decimal.Decimal `json:"cash_opening_reading"`
	CashClosingReading   decimal.Decimal `json:"cash_closing_reading"`
	RTT                  decimal.Decimal `json:"rtt"`
	PriceUnit            decimal.Decimal `json:"price_unit"`
	NetSales             decimal.Decimal `json:"net_sales"`
	Amount               decimal.Decimal `json:"amount"`
	ReadingDifference    decimal.Decimal `json:"reading_difference"`
}

// SaleLineResponse flattens dry, other, credit and direct lines; Category
// tells them apart.
type SaleLineResponse struct {
	Category   string          `json:"category"` // dry | other | credit | direct
	ProductID  string          `json:"product_id"`
	EmployeeID *string         `json:"employee_id"`
	PartnerID  *string         `json:"partner_id,omitempty"`
	TankID     *string         `json:"tank_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Discount   decimal.Decimal `json:"discount"`
	PriceUnit  decimal.Decimal `json:"price_unit"`
	Amount     decimal.Decimal `json:"amount"`
}

type TankStockResponse struct {
	TankID         string          `json:"tank_id"`
	OpeningQty     decimal.Decimal `json:"opening_qty"`
	ReceivedQty    decimal.Decimal `json:"received_qty"`
	SalesQty       decimal.Decimal `json:"sales_qty"`
	BookQty        decimal.Decimal `json:"book_qty"`
	ClosingDipQty  decimal.Decimal `json:"closing_dip_qty"`
	Variance       decimal.Decimal `json:"variance"`
	VarianceReason string          `json:"variance_reason,omitempty"`
}

type SummaryLineResponse struct {
	EmployeeID    *string         `json:"employee_id"`
	Employee      string          `json:"employee"`
	WetSales      decimal.Decimal `json:"wet_sales"`
	LubeSales     decimal.Decimal `json:"lube_sales"`
	LPGSales      decimal.Decimal `json:"lpg_sales"`
	OtherSales    decimal.Decimal `json:"other_sales"`
	DirectSales   decimal.Decimal `json:"direct_sales"`
	Discount      decimal.Decimal `json:"discount"`
	CreditSales   decimal.Decimal `json:"credit_sales"`
	Collections   decimal.Decimal `json:"collections"`
	Expenses      decimal.Decimal `json:"expenses"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	ExpectedCash  decimal.Decimal `json:"expected_cash"`
	CashCollected decimal.Decimal `json:"cash_collected"`
	Variance      decimal.Decimal `json:"variance"`
}

// CashLineResponse flattens collections, expenses, petty cash, payments and
// bankings.
type CashLineResponse struct {
	Kind       string          `json:"kind"` // collection | expense | petty_cash | payment | banking
	Name       string          `json:"name,omitempty"`
	EmployeeID *string         `json:"employee_id,omitempty"`
	PartnerID  *string         `json:"partner_id,omitempty"`
	JournalID  *string         `json:"journal_id,omitempty"`
	ProductID  *string         `json:"product_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

type TransferLineResponse struct {
	ProductID      string          `json:"product_id"`
	LocationID     string          `json:"location_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	LoadedQuantity decimal.Decimal `json:"loaded_quantity"`
	Variance       decimal.Decimal `json:"variance"`
	Driver         string          `json:"driver"`
	Truck          string          `json:"truck"`
}

type DocumentResponse struct {
	Kind       string `json:"kind"`
	DocumentID string `json:"document_id"`
}

type ShiftHistoryResponse struct {
	ID      string  `json:"id"`
	TypeID  string  `json:"type_id"`
	Date    string  `json:"date"`
	ShiftID *string `json:"shift_id"`
}

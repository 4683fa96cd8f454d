package dto

import "github.com/shopspring/decimal"

// ReportQuery selects the shifts a station report covers. Dates are
// inclusive.
type ReportQuery struct {
	StationID string `form:"station_id" validate:"omitempty,uuid"`
	From      string `form:"from"       validate:"required,datetime=2006-01-02"`
	To        string `form:"to"         validate:"required,datetime=2006-01-02"`
}

// ─── Daily summary ───────────────────────────────────────────────────────────

// DailySummaryLine is one label/amount row of the daily cash statement.
// Section headers carry no amount.
type DailySummaryLine struct {
	Label  string           `json:"label"`
	Amount *decimal.Decimal `json:"amount"`
	Bold   bool             `json:"bold,omitempty"`
}

type DailyTankLine struct {
	Tank          string          `json:"tank"`
	Product       string          `json:"product"`
	OpeningQty    decimal.Decimal `json:"opening_qty"`
	ReceivedQty   decimal.Decimal `json:"received_qty"`
	SalesQty      decimal.Decimal `json:"sales_qty"`
	BookQty       decimal.Decimal `json:"book_qty"`
	ClosingDipQty decimal.Decimal `json:"closing_dip_qty"`
	Variance      decimal.Decimal `json:"variance"`
}

type DailyGunLine struct {
	Gun            string          `json:"gun"`
	Product        string          `json:"product"`
	Employee       string          `json:"employee"`
	OpeningReading decimal.Decimal `json:"opening_reading"`
	ClosingReading decimal.Decimal `json:"closing_reading"`
	RTT            decimal.Decimal `json:"rtt"`
	NetSales       decimal.Decimal `json:"net_sales"`
	PriceUnit      decimal.Decimal `json:"price_unit"`
	Amount         decimal.Decimal `json:"amount"`
}

type DailySummaryResponse struct {
	ShiftID    string                `json:"shift_id"`
	ShiftName  string                `json:"shift_name"`
	Station    string                `json:"station"`
	Type       string                `json:"type"`
	Date       string                `json:"date"`
	State      string                `json:"state"`
	Lines      []DailySummaryLine    `json:"lines"`
	Guns       []DailyGunLine        `json:"guns"`
	Tanks      []DailyTankLine       `json:"tanks"`
	Attendants []SummaryLineResponse `json:"attendants"`
}

// ─── Period reports ──────────────────────────────────────────────────────────

// WetSummaryRow is one day of a tank. Book stock, variance and the running
// columns are derived from the four stored quantities.
type WetSummaryRow struct {
	Date               string          `json:"date"`
	OpeningStock       decimal.Decimal `json:"opening_stock"`
	Deliveries         decimal.Decimal `json:"deliveries"`
	Sales              decimal.Decimal `json:"sales"`
	BookStock          decimal.Decimal `json:"book_stock"`
	ClosingStock       decimal.Decimal `json:"closing_stock"`
	Variance           decimal.Decimal `json:"variance"`
	CumulativeVariance decimal.Decimal `json:"cumulative_variance"`
	CumulativeSales    decimal.Decimal `json:"cumulative_sales"`
	CumulativePercent  decimal.Decimal `json:"cumulative_percent"`
}

type WetSummaryTank struct {
	Tank     string          `json:"tank"`
	Capacity decimal.Decimal `json:"capacity"`
	Rows     []WetSummaryRow `json:"rows"`
}

// CashSummaryRow is one day of a station's cash summary.
type CashSummaryRow struct {
	Date            string          `json:"date"`
	PMS             decimal.Decimal `json:"pms"`
	PMSAmount       decimal.Decimal `json:"pms_amount"`
	AGO             decimal.Decimal `json:"ago"`
	AGOAmount       decimal.Decimal `json:"ago_amount"`
	BIK             decimal.Decimal `json:"bik"`
	BIKAmount       decimal.Decimal `json:"bik_amount"`
	Litres          decimal.Decimal `json:"litres"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Lubes           decimal.Decimal `json:"lubes"`
	LPG             decimal.Decimal `json:"lpg"`
	Others          decimal.Decimal `json:"others"`
	Receipts        decimal.Decimal `json:"receipts"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	CreditSales     decimal.Decimal `json:"credit_sales"`
	RTT             decimal.Decimal `json:"rtt"`
	OtherExpenses   decimal.Decimal `json:"other_expenses"`
	Payments        decimal.Decimal `json:"payments"`
	ExpectedBanking decimal.Decimal `json:"expected_banking"`
	ActualBanking   decimal.Decimal `json:"actual_banking"`
	Diff            decimal.Decimal `json:"diff"`
}

type CreditSummaryRow struct {
	Date          string          `json:"date"`
	Station       string          `json:"station"`
	LPO           string          `json:"lpo"`
	VehicleNo     string          `json:"vehicle_no"`
	Invoice       string          `json:"invoice"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	Product       string          `json:"product"`
	Quantity      decimal.Decimal `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
}

// TankStockRow is one tank of one shift.
type TankStockRow struct {
	Date          string          `json:"date"`
	Shift         string          `json:"shift"`
	Tank          string          `json:"tank"`
	MaxVolume     decimal.Decimal `json:"max_volume"`
	OpeningQty    decimal.Decimal `json:"opening_qty"`
	ReceivedQty   decimal.Decimal `json:"received_qty"`
	SalesQty      decimal.Decimal `json:"sales_qty"`
	ClosingDipQty decimal.Decimal `json:"closing_dip_qty"`
}

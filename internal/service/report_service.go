package service

import (
	"context"
	"time"

	"fuelstation/internal/dto"
	"fuelstation/internal/model"
	"fuelstation/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product codes the cash summary splits wet sales by.
const (
	codePMS = "PMS"
	codeAGO = "AGO"
	codeBIK = "BIK"
)

const reportDateLayout = "02-01-2006"

// ReportService builds the read-only shift and station reports. It never
// writes; figures come from the stored lines of computed shifts.
type ReportService interface {
	DailySummary(ctx context.Context, shiftID uuid.UUID) (*dto.DailySummaryResponse, error)
	WetSummary(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]dto.WetSummaryTank, error)
	CashSummary(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]dto.CashSummaryRow, error)
	// CreditSummary lists credit sales of every station when stationID is nil.
	CreditSummary(ctx context.Context, stationID *uuid.UUID, from, to time.Time) ([]dto.CreditSummaryRow, error)
	TankStock(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]dto.TankStockRow, error)
}

type reportService struct {
	shifts   repository.ShiftRepository
	stations repository.StationRepository
	catalog  repository.CatalogRepository
}

func NewReportService(shifts repository.ShiftRepository, stations repository.StationRepository,
	catalog repository.CatalogRepository) ReportService {
	return &reportService{shifts: shifts, stations: stations, catalog: catalog}
}

func amountPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func (s *reportService) DailySummary(ctx context.Context, shiftID uuid.UUID) (*dto.DailySummaryResponse, error) {
	sc, err := loadScope(ctx, s.shifts, s.stations, s.catalog, shiftID)
	if err != nil {
		return nil, err
	}
	sh, st := sc.shift, sc.station

	var wet, collections, totalSales, variance decimal.Decimal
	for _, r := range sh.SummaryLines {
		wet = wet.Add(r.WetSales)
		collections = collections.Add(r.Collections)
		totalSales = totalSales.Add(r.TotalSales)
		variance = variance.Add(r.Variance)
	}
	var dry, serviceSales, rtt, discounts, credit decimal.Decimal
	for _, l := range sh.DrySaleLines {
		dry = dry.Add(l.Amount)
		discounts = discounts.Add(l.Discount)
	}
	for _, l := range sh.OtherSaleLines {
		serviceSales = serviceSales.Add(l.Amount)
		discounts = discounts.Add(l.Discount)
	}
	for _, l := range sh.CreditSaleLines {
		credit = credit.Add(l.Amount)
		discounts = discounts.Add(l.Discount)
	}
	for _, l := range sh.DirectSaleLines {
		discounts = discounts.Add(l.Discount)
	}
	for _, l := range sh.GunSaleLines {
		rtt = rtt.Add(l.RTT.Mul(l.PriceUnit))
	}

	lines := []dto.DailySummaryLine{
		{Label: "FUEL SALES", Amount: amountPtr(wet)},
		{Label: "Add (+): DRY STOCK SALES", Amount: amountPtr(dry)},
		{Label: "Add (+): SERVICE SALES", Amount: amountPtr(serviceSales)},
		{Label: "Add (+): CASH COLLECTIONS", Amount: amountPtr(collections)},
		{Label: "TOTAL GROSS INCOME", Amount: amountPtr(wet.Add(dry).Add(serviceSales).Add(collections)), Bold: true},
		{Label: "DEDUCTIONS"},
		{Label: "Less (-): Fuel Transfers, Pump Test/ RTT & Gen. Fuel", Amount: amountPtr(rtt)},
		{Label: "Less (-/+): Price Difference", Amount: amountPtr(decimal.Zero)},
		{Label: "Less (-): Discounts", Amount: amountPtr(discounts)},
		{Label: "Less (-): Expenses", Amount: amountPtr(sh.TotalExpenses())},
		{Label: "TOTAL NET SALES (Gross Sales - Deductions)", Amount: amountPtr(totalSales), Bold: true},
		{Label: "Less (-): Credit Sales", Amount: amountPtr(credit)},
	}
	for _, mode := range st.PaymentModes {
		if st.UnbankedJournalID != nil && mode.ID == *st.UnbankedJournalID {
			continue
		}
		total := decimal.Zero
		for _, p := range sh.PaymentLines {
			if p.Type == model.PaymentLinePayment && p.JournalID == mode.ID {
				total = total.Add(p.Amount)
			}
		}
		lines = append(lines, dto.DailySummaryLine{Label: "Less (-): " + mode.Name + " Sales", Amount: amountPtr(total)})
	}
	lines = append(lines,
		dto.DailySummaryLine{Label: "Attendant Excess/ Short +/-", Amount: amountPtr(variance)},
		dto.DailySummaryLine{Label: "TOTAL CASH EXPECTED FOR THE DAY", Amount: amountPtr(sh.CashCollected(st.UnbankedJournalID)), Bold: true},
		dto.DailySummaryLine{Label: "Less (-): Cash Banked", Amount: amountPtr(sh.CashBanked())},
		dto.DailySummaryLine{Label: "Add:B/F +/-", Amount: amountPtr(sh.OpeningBalance)},
		dto.DailySummaryLine{Label: "CASH AT HAND/CASH CARRIED FORWARD", Amount: amountPtr(sh.ClosingBalance(st.UnbankedJournalID)), Bold: true},
	)

	resp := &dto.DailySummaryResponse{
		ShiftID:   sh.ID.String(),
		ShiftName: sh.Name,
		Station:   st.Name,
		Date:      sh.Date.Format(dateLayout),
		State:     stateLabel(sh.State),
		Lines:     lines,
	}
	if sh.Type != nil {
		resp.Type = sh.Type.Name
	}
	for _, l := range sh.GunSaleLines {
		resp.Guns = append(resp.Guns, dto.DailyGunLine{
			Gun:            sc.gunName(l.GunID),
			Product:        sc.product(l.ProductID).Name,
			Employee:       sc.employeeName(l.EmployeeID),
			OpeningReading: l.OpeningReading,
			ClosingReading: l.ClosingReading,
			RTT:            l.RTT,
			NetSales:       l.NetSales,
			PriceUnit:      l.PriceUnit,
			Amount:         l.Amount,
		})
	}
	for _, t := range sh.TankStockTakes {
		line := dto.DailyTankLine{
			OpeningQty:    t.OpeningQty,
			ReceivedQty:   t.ReceivedQty,
			SalesQty:      t.SalesQty,
			BookQty:       t.BookQty,
			ClosingDipQty: t.ClosingDipQty,
			Variance:      t.Variance,
		}
		if tank := st.TankByID(t.TankID); tank != nil {
			line.Tank = tank.Name
			line.Product = sc.product(tank.ProductID).Name
		}
		resp.Tanks = append(resp.Tanks, line)
	}
	resp.Attendants = toShiftResponse(sc).Summary
	return resp, nil
}

// WetSummary folds every shift of a day into one row per tank: the day opens
// with its first shift's opening stock and closes with its last shift's dip.
func (s *reportService) WetSummary(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]dto.WetSummaryTank, error) {
	station, err := s.stations.FindByID(ctx, stationID)
	if err != nil {
		return nil, lookupErr(err, "station", stationID)
	}
	shifts, err := s.shifts.ListByStation(ctx, &stationID, from, to)
	if err != nil {
		return nil, err
	}

	type tankDays struct {
		days  []string
		byDay map[string]*dto.WetSummaryRow
	}
	perTank := map[uuid.UUID]*tankDays{}
	for _, sh := range shifts {
		day := sh.Date.Format(reportDateLayout)
		for _, t := range sh.TankStockTakes {
			td, ok := perTank[t.TankID]
			if !ok {
				td = &tankDays{byDay: map[string]*dto.WetSummaryRow{}}
				perTank[t.TankID] = td
			}
			row, ok := td.byDay[day]
			if !ok {
				row = &dto.WetSummaryRow{Date: day, OpeningStock: t.OpeningQty}
				td.byDay[day] = row
				td.days = append(td.days, day)
			}
			row.Deliveries = row.Deliveries.Add(t.ReceivedQty)
			row.Sales = row.Sales.Add(t.SalesQty)
			row.ClosingStock = t.ClosingDipQty
		}
	}

	out := []dto.WetSummaryTank{}
	for _, tank := range station.Tanks {
		td, ok := perTank[tank.ID]
		if !ok {
			continue
		}
		report := dto.WetSummaryTank{Tank: tank.Name, Capacity: tank.MaxVolume}
		var cumVariance, cumSales decimal.Decimal
		for _, day := range td.days {
			row := *td.byDay[day]
			row.BookStock = row.OpeningStock.Add(row.Deliveries).Sub(row.Sales)
			row.Variance = row.ClosingStock.Sub(row.BookStock)
			cumVariance = cumVariance.Add(row.Variance)
			cumSales = cumSales.Add(row.Sales)
			row.CumulativeVariance = cumVariance
			row.CumulativeSales = cumSales
			if !cumSales.IsZero() {
				row.CumulativePercent = cumVariance.Mul(decimal.NewFromInt(100)).Div(cumSales).Round(1)
			}
			report.Rows = append(report.Rows, row)
		}
		out = append(out, report)
	}
	return out, nil
}

// CashSummary returns one row per day. PMS, AGO and BIK are matched by the
// tank product's code; EXP.BANKING is total income less credit sales, RTT
// and other expenses, and DIFF is expected banking less payments.
func (s *reportService) CashSummary(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]dto.CashSummaryRow, error) {
	station, err := s.stations.FindByID(ctx, stationID)
	if err != nil {
		return nil, lookupErr(err, "station", stationID)
	}
	shifts, err := s.shifts.ListByStation(ctx, &stationID, from, to)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.FindProducts(ctx, shiftProductIDs(station, shifts))
	if err != nil {
		return nil, err
	}
	tankCode := func(tankID uuid.UUID) string {
		if t := station.TankByID(tankID); t != nil {
			return products[t.ProductID].Code
		}
		return ""
	}

	var days []string
	byDay := map[string]*dto.CashSummaryRow{}
	for _, sh := range shifts {
		day := sh.Date.Format(reportDateLayout)
		row, ok := byDay[day]
		if !ok {
			row = &dto.CashSummaryRow{Date: day}
			byDay[day] = row
			days = append(days, day)
		}
		addWet := func(code string, qty, amount decimal.Decimal) {
			switch code {
			case codePMS:
				row.PMS, row.PMSAmount = row.PMS.Add(qty), row.PMSAmount.Add(amount)
			case codeAGO:
				row.AGO, row.AGOAmount = row.AGO.Add(qty), row.AGOAmount.Add(amount)
			case codeBIK:
				row.BIK, row.BIKAmount = row.BIK.Add(qty), row.BIKAmount.Add(amount)
			}
		}
		for _, l := range sh.GunSaleLines {
			addWet(tankCode(l.TankID), l.NetSales, l.Amount)
			row.RTT = row.RTT.Add(l.RTT)
		}
		for _, l := range sh.DirectSaleLines {
			addWet(tankCode(l.TankID), l.Quantity, l.Amount)
		}
		for _, l := range sh.DrySaleLines {
			switch products[l.ProductID].StockType {
			case model.StockLube:
				row.Lubes = row.Lubes.Add(l.Amount)
			case model.StockLPG:
				row.LPG = row.LPG.Add(l.Amount)
			case model.StockOther:
				row.Others = row.Others.Add(l.Amount)
			}
		}
		for _, l := range sh.OtherSaleLines {
			row.Others = row.Others.Add(l.Amount)
		}
		for _, l := range sh.CollectionLines {
			row.Receipts = row.Receipts.Add(l.Amount)
		}
		for _, l := range sh.CreditSaleLines {
			row.CreditSales = row.CreditSales.Add(l.Amount)
		}
		for _, l := range sh.PaymentLines {
			if l.Type == model.PaymentLinePayment {
				row.Payments = row.Payments.Add(l.Amount)
			}
		}
		row.OtherExpenses = row.OtherExpenses.Add(sh.TotalExpenses())
		row.ActualBanking = row.ActualBanking.Add(sh.CashBanked())
	}

	out := make([]dto.CashSummaryRow, 0, len(days))
	for _, day := range days {
		row := *byDay[day]
		row.Litres = row.PMS.Add(row.AGO).Add(row.BIK)
		row.TotalAmount = row.PMSAmount.Add(row.AGOAmount).Add(row.BIKAmount)
		row.TotalIncome = row.TotalAmount.Add(row.Lubes).Add(row.LPG).Add(row.Others).Add(row.Receipts)
		row.ExpectedBanking = row.TotalIncome.Sub(row.CreditSales).Sub(row.RTT).Sub(row.OtherExpenses)
		row.Diff = row.ExpectedBanking.Sub(row.Payments)
		out = append(out, row)
	}
	return out, nil
}

func (s *reportService) CreditSummary(ctx context.Context, stationID *uuid.UUID, from, to time.Time) ([]dto.CreditSummaryRow, error) {
	shifts, err := s.shifts.ListByStation(ctx, stationID, from, to)
	if err != nil {
		return nil, err
	}
	productIDs := map[uuid.UUID]struct{}{}
	partnerIDs := map[uuid.UUID]struct{}{}
	for _, sh := range shifts {
		for _, l := range sh.CreditSaleLines {
			productIDs[l.ProductID] = struct{}{}
			partnerIDs[l.PartnerID] = struct{}{}
		}
	}
	products, err := s.catalog.FindProducts(ctx, keys(productIDs))
	if err != nil {
		return nil, err
	}
	partners, err := s.catalog.FindPartners(ctx, keys(partnerIDs))
	if err != nil {
		return nil, err
	}

	stationNames := map[uuid.UUID]string{}
	stationName := func(id uuid.UUID) (string, error) {
		if name, ok := stationNames[id]; ok {
			return name, nil
		}
		st, err := s.stations.FindByID(ctx, id)
		if err != nil {
			return "", lookupErr(err, "station", id)
		}
		stationNames[id] = st.Name
		return st.Name, nil
	}

	out := []dto.CreditSummaryRow{}
	for _, sh := range shifts {
		if len(sh.CreditSaleLines) == 0 {
			continue
		}
		name, err := stationName(sh.StationID)
		if err != nil {
			return nil, err
		}
		for _, l := range sh.CreditSaleLines {
			partner := partners[l.PartnerID]
			out = append(out, dto.CreditSummaryRow{
				Date:          sh.Date.Format(reportDateLayout),
				Station:       name,
				LPO:           l.LPONumber,
				VehicleNo:     l.VehicleNo,
				Invoice:       l.InvoiceNo,
				AccountNumber: partner.Ref,
				AccountName:   partner.Name,
				Product:       products[l.ProductID].Name,
				Quantity:      l.Quantity,
				Rate:          l.PriceUnit,
				Amount:        l.Amount,
			})
		}
	}
	return out, nil
}

func (s *reportService) TankStock(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]dto.TankStockRow, error) {
	station, err := s.stations.FindByID(ctx, stationID)
	if err != nil {
		return nil, lookupErr(err, "station", stationID)
	}
	shifts, err := s.shifts.ListByStation(ctx, &stationID, from, to)
	if err != nil {
		return nil, err
	}
	out := []dto.TankStockRow{}
	for _, sh := range shifts {
		for _, t := range sh.TankStockTakes {
			row := dto.TankStockRow{
				Date:          sh.Date.Format(reportDateLayout),
				Shift:         sh.Name,
				OpeningQty:    t.OpeningQty,
				ReceivedQty:   t.ReceivedQty,
				SalesQty:      t.SalesQty,
				ClosingDipQty: t.ClosingDipQty,
			}
			if tank := station.TankByID(t.TankID); tank != nil {
				row.Tank = tank.Name
				row.MaxVolume = tank.MaxVolume
			}
			out = append(out, row)
		}
	}
	return out, nil
}

func shiftProductIDs(station *model.Station, shifts []model.Shift) []uuid.UUID {
	ids := map[uuid.UUID]struct{}{}
	for _, t := range station.Tanks {
		ids[t.ProductID] = struct{}{}
	}
	for _, sh := range shifts {
		for _, l := range sh.DrySaleLines {
			ids[l.ProductID] = struct{}{}
		}
	}
	return keys(ids)
}

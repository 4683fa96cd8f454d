package service

import (
	"fuelstation/internal/dto"
	"fuelstation/internal/model"

	"github.com/google/uuid"
)

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toShiftResponse(sc *shiftScope) *dto.ShiftResponse {
	s := sc.shift
	var unbanked *uuid.UUID
	if sc.station != nil {
		unbanked = sc.station.UnbankedJournalID
	}
	resp := &dto.ShiftResponse{
		ID:                  s.ID.String(),
		Name:                s.Name,
		StationID:           s.StationID.String(),
		TypeID:              s.TypeID.String(),
		Date:                s.Date.Format(dateLayout),
		State:               s.State,
		OpeningBalance:      s.OpeningBalance,
		CashCollected:       s.CashCollected(unbanked),
		CashBanked:          s.CashBanked(),
		ClosingBalance:      s.ClosingBalance(unbanked),
		PettyCashOpening:    s.PettyCashOpening,
		PettyCashReimbursed: s.PettyCashReimbursed,
		PettyCashSpent:      s.PettyCashSpent(),
		ClosingPettyCash:    s.ClosingPettyCash(),
		ClosingWarning:      s.ClosingWarning,
		HasStartingWarning:  s.HasStartingWarning,
		ShowStartingWarning: s.ShowStartingWarning,
		GunSales:            make([]dto.GunSaleResponse, 0, len(s.GunSaleLines)),
		Sales:               []dto.SaleLineResponse{},
		TankStockTakes:      make([]dto.TankStockResponse, 0, len(s.TankStockTakes)),
		Summary:             make([]dto.SummaryLineResponse, 0, len(s.SummaryLines)),
		CashLines:           []dto.CashLineResponse{},
		ReceivedStock:       make([]dto.TransferLineResponse, 0, len(s.TransferLines)),
	}
	if s.Type != nil {
		resp.Type = s.Type.Name
	}

	for _, l := range s.GunSaleLines {
		resp.GunSales = append(resp.GunSales, dto.GunSaleResponse{
			GunID:                l.GunID.String(),
			TankID:               l.TankID.String(),
			ProductID:            l.ProductID.String(),
			EmployeeID:           idString(l.EmployeeID),
			OpeningReading:       l.OpeningReading,
			ClosingReading:       l.ClosingReading,
			ManualOpeningReading: l.ManualOpeningReading,
			ManualClosingReading: l.ManualClosingReading,
			CashOpeningReading:   l.CashOpeningReading,
			CashClosingReading:   l.CashClosingReading,
			RTT:                  l.RTT,
			PriceUnit:            l.PriceUnit,
			NetSales:             l.NetSales,
			Amount:               l.Amount,
			ReadingDifference:    l.ReadingDifference,
		})
	}
	for _, l := range s.DrySaleLines {
		resp.Sales = append(resp.Sales, dto.SaleLineResponse{Category: "dry", ProductID: l.ProductID.String(),
			EmployeeID: idString(l.EmployeeID), Quantity: l.Quantity, Discount: l.Discount, PriceUnit: l.PriceUnit, Amount: l.Amount})
	}
	for _, l := range s.OtherSaleLines {
		resp.Sales = append(resp.Sales, dto.SaleLineResponse{Category: "other", ProductID: l.ProductID.String(),
			EmployeeID: idString(l.EmployeeID), Quantity: l.Quantity, Discount: l.Discount, PriceUnit: l.PriceUnit, Amount: l.Amount})
	}
	for _, l := range s.CreditSaleLines {
		partner := l.PartnerID
		resp.Sales = append(resp.Sales, dto.SaleLineResponse{Category: "credit", ProductID: l.ProductID.String(),
			EmployeeID: idString(l.EmployeeID), PartnerID: idString(&partner),
			Quantity: l.Quantity, Discount: l.Discount, PriceUnit: l.PriceUnit, Amount: l.Amount})
	}
	for _, l := range s.DirectSaleLines {
		partner, tank := l.PartnerID, l.TankID
		resp.Sales = append(resp.Sales, dto.SaleLineResponse{Category: "direct", ProductID: l.ProductID.String(),
			EmployeeID: idString(l.EmployeeID), PartnerID: idString(&partner), TankID: idString(&tank),
			Quantity: l.Quantity, Discount: l.Discount, PriceUnit: l.PriceUnit, Amount: l.Amount})
	}

	for _, t := range s.TankStockTakes {
		resp.TankStockTakes = append(resp.TankStockTakes, dto.TankStockResponse{
			TankID:         t.TankID.String(),
			OpeningQty:     t.OpeningQty,
			ReceivedQty:    t.ReceivedQty,
			SalesQty:       t.SalesQty,
			BookQty:        t.BookQty,
			ClosingDipQty:  t.ClosingDipQty,
			Variance:       t.Variance,
			VarianceReason: t.VarianceReason,
		})
	}
	for _, r := range s.SummaryLines {
		resp.Summary = append(resp.Summary, dto.SummaryLineResponse{
			EmployeeID:    idString(r.EmployeeID),
			Employee:      sc.employeeName(r.EmployeeID),
			WetSales:      r.WetSales,
			LubeSales:     r.LubeSales,
			LPGSales:      r.LPGSales,
			OtherSales:    r.OtherSales,
			DirectSales:   r.DirectSales,
			Discount:      r.Discount,
			CreditSales:   r.CreditSales,
			Collections:   r.Collections,
			Expenses:      r.Expenses,
			TotalSales:    r.TotalSales,
			ExpectedCash:  r.ExpectedCash,
			CashCollected: r.CashCollected,
			Variance:      r.Variance,
		})
	}

	for _, l := range s.CollectionLines {
		partner := l.PartnerID
		resp.CashLines = append(resp.CashLines, dto.CashLineResponse{Kind: "collection", Name: l.Name,
			EmployeeID: idString(l.EmployeeID), PartnerID: idString(&partner), Amount: l.Amount})
	}
	for _, l := range s.ExpenseLines {
		product := l.ProductID
		resp.CashLines = append(resp.CashLines, dto.CashLineResponse{Kind: "expense", Name: l.Name,
			EmployeeID: idString(l.EmployeeID), ProductID: idString(&product), Amount: l.Amount})
	}
	for _, l := range s.PettyCashLines {
		product := l.ProductID
		resp.CashLines = append(resp.CashLines, dto.CashLineResponse{Kind: "petty_cash", Name: l.Name,
			ProductID: idString(&product), Amount: l.Amount})
	}
	for _, l := range s.PaymentLines {
		journal := l.JournalID
		resp.CashLines = append(resp.CashLines, dto.CashLineResponse{Kind: l.Type, Name: l.Name,
			EmployeeID: idString(l.EmployeeID), JournalID: idString(&journal), Amount: l.Amount})
	}

	for _, t := range s.TransferLines {
		resp.ReceivedStock = append(resp.ReceivedStock, dto.TransferLineResponse{
			ProductID:      t.ProductID.String(),
			LocationID:     t.LocationID.String(),
			Quantity:       t.Quantity,
			LoadedQuantity: t.LoadedQuantity,
			Variance:       t.Variance(),
			Driver:         t.Driver,
			Truck:          t.Truck,
		})
	}
	for _, d := range s.Documents {
		resp.Documents = append(resp.Documents, dto.DocumentResponse{Kind: d.Kind, DocumentID: d.DocumentID.String()})
	}
	return resp
}

// stateLabel is the display form of a shift state.
func stateLabel(state string) string {
	switch state {
	case model.ShiftWaitingApproval:
		return "Waiting Approval"
	case model.ShiftInterfaced:
		return "Interfaced"
	case model.ShiftApproved:
		return "Approved"
	case model.ShiftCancelled:
		return "Cancelled"
	case model.ShiftRunning:
		return "In Progress"
	case model.ShiftDone:
		return "Done"
	default:
		return "Draft"
	}
}

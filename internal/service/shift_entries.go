package service

import (
	"context"

	"fuelstation/internal/dto"
	"fuelstation/internal/model"

	"github.com/google/uuid"
)

// UpdateEntries applies operator entries to a draft or running shift. Derived
// figures are left to Compute.
func (s *shiftService) UpdateEntries(ctx context.Context, id uuid.UUID, req dto.ShiftEntriesRequest) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "update_entries", nil, func(ctx context.Context, sc *shiftScope) error {
		if err := requireState(sc.shift, "edit", model.ShiftDraft, model.ShiftRunning); err != nil {
			return err
		}
		if err := applyEntries(sc.shift, req); err != nil {
			return err
		}
		return sc.refreshReferences(ctx, s.catalog)
	}))
}

// entryParser collects the first malformed id so conversions stay linear.
type entryParser struct {
	err error
}

func (p *entryParser) id(field, raw string) uuid.UUID {
	v, err := uuid.Parse(raw)
	if err != nil && p.err == nil {
		p.err = validationf("invalid %s %q", field, raw)
	}
	return v
}

func (p *entryParser) optional(field string, raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	v := p.id(field, *raw)
	return &v
}

func applyEntries(shift *model.Shift, req dto.ShiftEntriesRequest) error {
	p := &entryParser{}

	if req.GunReadings != nil {
		for _, in := range req.GunReadings {
			gunID := p.id("gun_id", in.GunID)
			line := findGunLine(shift, gunID)
			if line == nil {
				if p.err != nil {
					return p.err
				}
				return validationf("Gun %s has no sale line on shift %s", gunID, shift.Name)
			}
			line.EmployeeID = p.optional("employee_id", in.EmployeeID)
			line.ClosingReading = in.ClosingReading
			line.ManualClosingReading = in.ManualClosingReading
			line.CashClosingReading = in.CashClosingReading
			line.RTT = in.RTT
		}
	}
	if req.Dips != nil {
		for _, in := range req.Dips {
			tankID := p.id("tank_id", in.TankID)
			take := findStockTake(shift, tankID)
			if take == nil {
				if p.err != nil {
					return p.err
				}
				return validationf("Tank %s has no stock take on shift %s", tankID, shift.Name)
			}
			take.ClosingDipQty = in.ClosingDipQty
			take.VarianceReason = in.VarianceReason
		}
	}

	if req.DrySales != nil {
		shift.DrySaleLines = make([]model.DrySaleLine, 0, len(req.DrySales))
		for _, in := range req.DrySales {
			shift.DrySaleLines = append(shift.DrySaleLines, model.DrySaleLine{
				ProductID:  p.id("product_id", in.ProductID),
				EmployeeID: p.optional("employee_id", in.EmployeeID),
				Quantity:   in.Quantity,
				Discount:   in.Discount,
			})
		}
	}
	if req.OtherSales != nil {
		shift.OtherSaleLines = make([]model.OtherSaleLine, 0, len(req.OtherSales))
		for _, in := range req.OtherSales {
			shift.OtherSaleLines = append(shift.OtherSaleLines, model.OtherSaleLine{
				ProductID:  p.id("product_id", in.ProductID),
				EmployeeID: p.optional("employee_id", in.EmployeeID),
				Quantity:   in.Quantity,
				Discount:   in.Discount,
			})
		}
	}
	if req.CreditSales != nil {
		shift.CreditSaleLines = make([]model.CreditSaleLine, 0, len(req.CreditSales))
		for _, in := range req.CreditSales {
			shift.CreditSaleLines = append(shift.CreditSaleLines, model.CreditSaleLine{
				ProductID:      p.id("product_id", in.ProductID),
				EmployeeID:     p.optional("employee_id", in.EmployeeID),
				PartnerID:      p.id("partner_id", in.PartnerID),
				Quantity:       in.Quantity,
				Discount:       in.Discount,
				LPONumber:      in.LPONumber,
				VehicleNo:      in.VehicleNo,
				VehicleMileage: in.VehicleMileage,
				InvoiceNo:      in.InvoiceNo,
			})
		}
	}
	if req.DirectSales != nil {
		shift.DirectSaleLines = make([]model.DirectSaleLine, 0, len(req.DirectSales))
		for _, in := range req.DirectSales {
			shift.DirectSaleLines = append(shift.DirectSaleLines, model.DirectSaleLine{
				TankID:     p.id("tank_id", in.TankID),
				ProductID:  p.id("product_id", in.ProductID),
				EmployeeID: p.optional("employee_id", in.EmployeeID),
				PartnerID:  p.id("partner_id", in.PartnerID),
				Quantity:   in.Quantity,
				Discount:   in.Discount,
				LPONumber:  in.LPONumber,
				VehicleNo:  in.VehicleNo,
				InvoiceNo:  in.InvoiceNo,
			})
		}
	}
	if req.Collections != nil {
		shift.CollectionLines = make([]model.CollectionLine, 0, len(req.Collections))
		for _, in := range req.Collections {
			shift.CollectionLines = append(shift.CollectionLines, model.CollectionLine{
				PartnerID:  p.id("partner_id", in.PartnerID),
				EmployeeID: p.optional("employee_id", in.EmployeeID),
				Name:       in.Name,
				Amount:     in.Amount,
			})
		}
	}
	if req.Expenses != nil {
		shift.ExpenseLines = make([]model.ExpenseLine, 0, len(req.Expenses))
		for _, in := range req.Expenses {
			shift.ExpenseLines = append(shift.ExpenseLines, model.ExpenseLine{
				ProductID:  p.id("product_id", in.ProductID),
				EmployeeID: p.optional("employee_id", in.EmployeeID),
				Name:       in.Name,
				Amount:     in.Amount,
			})
		}
	}
	if req.PettyCash != nil {
		shift.PettyCashLines = make([]model.PettyCashLine, 0, len(req.PettyCash))
		for _, in := range req.PettyCash {
			shift.PettyCashLines = append(shift.PettyCashLines, model.PettyCashLine{
				ProductID: p.id("product_id", in.ProductID),
				Name:      in.Name,
				Amount:    in.Amount,
			})
		}
	}
	// payments and bankings share one table; each list replaces its own type
	if req.Payments != nil || req.Bankings != nil {
		var kept []model.PaymentLine
		for _, l := range shift.PaymentLines {
			if (l.Type == model.PaymentLinePayment && req.Payments == nil) ||
				(l.Type == model.PaymentLineBanking && req.Bankings == nil) {
				kept = append(kept, l)
			}
		}
		for _, in := range req.Payments {
			kept = append(kept, model.PaymentLine{
				Type:       model.PaymentLinePayment,
				Name:       in.Name,
				JournalID:  p.id("journal_id", in.JournalID),
				EmployeeID: p.optional("employee_id", in.EmployeeID),
				Amount:     in.Amount,
			})
		}
		for _, in := range req.Bankings {
			kept = append(kept, model.PaymentLine{
				Type:      model.PaymentLineBanking,
				Name:      in.Name,
				JournalID: p.id("journal_id", in.JournalID),
				Amount:    in.Amount,
			})
		}
		shift.PaymentLines = kept
	}
	if req.ReceivedStock != nil {
		shift.TransferLines = make([]model.TransferLine, 0, len(req.ReceivedStock))
		for _, in := range req.ReceivedStock {
			shift.TransferLines = append(shift.TransferLines, model.TransferLine{
				ProductID:      p.id("product_id", in.ProductID),
				LocationID:     p.id("location_id", in.LocationID),
				Quantity:       in.Quantity,
				LoadedQuantity: in.LoadedQuantity,
				Driver:         in.Driver,
				Truck:          in.Truck,
			})
		}
	}
	if req.PettyCashReimbursed != nil {
		shift.PettyCashReimbursed = *req.PettyCashReimbursed
	}
	return p.err
}

func findGunLine(shift *model.Shift, gunID uuid.UUID) *model.GunSaleLine {
	for i := range shift.GunSaleLines {
		if shift.GunSaleLines[i].GunID == gunID {
			return &shift.GunSaleLines[i]
		}
	}
	return nil
}

func findStockTake(shift *model.Shift, tankID uuid.UUID) *model.TankStockTake {
	for i := range shift.TankStockTakes {
		if shift.TankStockTakes[i].TankID == tankID {
			return &shift.TankStockTakes[i]
		}
	}
	return nil
}

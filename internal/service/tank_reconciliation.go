package service

import (
	"context"

	"fuelstation/internal/repository"

	"github.com/shopspring/decimal"
)

// updateTankOperations refreshes pump sales and received quantities of every
// stock take from the shift's own lines, then derives book and variance.
func updateTankOperations(sc *shiftScope) {
	s := sc.shift
	for i := range s.TankStockTakes {
		take := &s.TankStockTakes[i]
		sales := decimal.Zero
		for _, g := range s.GunSaleLines {
			if g.TankID == take.TankID {
				sales = sales.Add(g.NetSales)
			}
		}
		received := decimal.Zero
		if tank := sc.station.TankByID(take.TankID); tank != nil {
			for _, t := range s.TransferLines {
				if t.LocationID == tank.LocationID {
					received = received.Add(t.Quantity)
				}
			}
		}
		take.SalesQty = sales
		take.ReceivedQty = received
		take.BookQty = take.OpeningQty.Add(received).Sub(sales)
		// positive means the dip found more than the books
		take.Variance = take.BookQty.Sub(take.ClosingDipQty).Neg()
	}
}

func validateTankDips(sc *shiftScope) error {
	for _, take := range sc.shift.TankStockTakes {
		tank := sc.station.TankByID(take.TankID)
		if tank == nil {
			return validationf("Tank %s does not belong to station %s", take.TankID, sc.station.Name)
		}
		if take.ClosingDipQty.GreaterThan(tank.MaxVolume) {
			return validationf("Closing dip for tank %s exceeds its maximum capacity of %s", tank.Name, tank.MaxVolume)
		}
	}
	return nil
}

// closeTankTakes enforces dip variance tolerances and makes each dip the
// tank's current volume. Out-of-tolerance variances need a station
// accountant and a reason.
func closeTankTakes(ctx context.Context, sc *shiftScope, actor Actor, stations repository.StationRepository) error {
	for _, take := range sc.shift.TankStockTakes {
		tank := sc.station.TankByID(take.TankID)
		if tank == nil {
			return validationf("Tank %s does not belong to station %s", take.TankID, sc.station.Name)
		}
		if take.Variance.Abs().GreaterThan(tank.AllowableVariance) {
			if !actor.IsStationAccountant() {
				return validationf("Dipping variance for tank %s exceeds the allowed variance range!", tank.Name)
			}
			if take.VarianceReason == "" {
				return validationf("Please add a dipping variance reason.")
			}
		}
		if err := stations.UpdateTankVolume(ctx, tank.ID, take.ClosingDipQty); err != nil {
			return err
		}
		tank.CurrentVolume = take.ClosingDipQty
	}
	return nil
}

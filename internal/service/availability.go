package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const availabilityHeader = "Following products do not have enough availability \n"

// forecastShortfall compares what the shift sold against what the station
// could have held (on hand plus received this shift). It never fails the
// caller on a shortfall: the returned text is advisory and empty when every
// product is covered.
func forecastShortfall(ctx context.Context, sc *shiftScope, inventory Inventory) (string, error) {
	s := sc.shift
	var b strings.Builder

	for _, tank := range sc.station.Tanks {
		sales := decimal.Zero
		for _, g := range s.GunSaleLines {
			if g.TankID == tank.ID {
				sales = sales.Add(g.NetSales)
			}
		}
		for _, d := range s.DirectSaleLines {
			if d.TankID == tank.ID {
				sales = sales.Add(d.Quantity)
			}
		}
		sales = sales.Add(sc.creditQuantity(tank.ProductID, nil, false))
		incoming := incomingQuantity(sc, tank.ProductID, tank.LocationID)
		onHand, err := inventory.AvailableQuantity(ctx, tank.ProductID, tank.LocationID)
		if err != nil {
			return "", err
		}
		forecast := onHand.Add(incoming)
		if sales.GreaterThan(forecast) {
			fmt.Fprintf(&b, "%s: Total sale: %s / Forecast: %s \n", sc.product(tank.ProductID).Name, sales, forecast)
		}
	}

	if loc := sc.station.DryStockLocationID; loc != nil {
		var seen []uuid.UUID
		sold := map[uuid.UUID]decimal.Decimal{}
		for _, d := range s.DrySaleLines {
			if _, ok := sold[d.ProductID]; !ok {
				seen = append(seen, d.ProductID)
			}
			sold[d.ProductID] = sold[d.ProductID].Add(d.Quantity)
		}
		for _, pid := range seen {
			sales := sold[pid].Add(sc.creditQuantity(pid, nil, false))
			onHand, err := inventory.AvailableQuantity(ctx, pid, *loc)
			if err != nil {
				return "", err
			}
			forecast := onHand.Add(incomingQuantity(sc, pid, *loc))
			if sales.GreaterThan(forecast) {
				fmt.Fprintf(&b, "%s: Total sale: %s / Forecast: %s \n", sc.product(pid).Name, sales, forecast)
			}
		}
	}

	if b.Len() == 0 {
		return "", nil
	}
	return availabilityHeader + b.String(), nil
}

func incomingQuantity(sc *shiftScope, productID, locationID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, t := range sc.shift.TransferLines {
		if t.ProductID == productID && t.LocationID == locationID {
			total = total.Add(t.Quantity)
		}
	}
	return total
}

// appendWarning joins warnings with a newline, skipping empty parts.
func appendWarning(current, next string) string {
	next = strings.TrimSpace(next)
	if next == "" {
		return current
	}
	if current == "" {
		return next
	}
	return current + "\n" + next
}

package service

import (
	"context"

	"fuelstation/internal/model"
	"fuelstation/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// shiftScope is a shift loaded together with everything its rules read:
// station configuration and the products/employees its lines reference.
// It is built once per action inside the action's transaction.
type shiftScope struct {
	shift     *model.Shift
	station   *model.Station
	products  map[uuid.UUID]model.Product
	employees map[uuid.UUID]model.Employee
}

func loadScope(ctx context.Context, shifts repository.ShiftRepository, stations repository.StationRepository,
	catalog repository.CatalogRepository, id uuid.UUID) (*shiftScope, error) {
	shift, err := shifts.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "shift", id)
	}
	station, err := stations.FindByID(ctx, shift.StationID)
	if err != nil {
		return nil, lookupErr(err, "station", shift.StationID)
	}
	sc := &shiftScope{shift: shift, station: station}
	if err := sc.refreshReferences(ctx, catalog); err != nil {
		return nil, err
	}
	return sc, nil
}

// refreshReferences reloads the products and employees referenced by the
// current lines; called again whenever lines are replaced.
func (sc *shiftScope) refreshReferences(ctx context.Context, catalog repository.CatalogRepository) error {
	productIDs := map[uuid.UUID]struct{}{}
	employeeIDs := map[uuid.UUID]struct{}{}
	addEmp := func(id *uuid.UUID) {
		if id != nil {
			employeeIDs[*id] = struct{}{}
		}
	}
	s := sc.shift
	for _, t := range sc.station.Tanks {
		productIDs[t.ProductID] = struct{}{}
	}
	for _, l := range s.GunSaleLines {
		productIDs[l.ProductID] = struct{}{}
		addEmp(l.EmployeeID)
	}
	for _, l := range s.DrySaleLines {
		productIDs[l.ProductID] = struct{}{}
		addEmp(l.EmployeeID)
	}
	for _, l := range s.OtherSaleLines {
		productIDs[l.ProductID] = struct{}{}
		addEmp(l.EmployeeID)
	}
	for _, l := range s.CreditSaleLines {
		productIDs[l.ProductID] = struct{}{}
		addEmp(l.EmployeeID)
	}
	for _, l := range s.DirectSaleLines {
		productIDs[l.ProductID] = struct{}{}
		addEmp(l.EmployeeID)
	}
	for _, l := range s.ExpenseLines {
		productIDs[l.ProductID] = struct{}{}
		addEmp(l.EmployeeID)
	}
	for _, l := range s.PettyCashLines {
		productIDs[l.ProductID] = struct{}{}
	}
	for _, l := range s.TransferLines {
		productIDs[l.ProductID] = struct{}{}
	}
	for _, l := range s.CollectionLines {
		addEmp(l.EmployeeID)
	}
	for _, l := range s.PaymentLines {
		addEmp(l.EmployeeID)
	}
	for _, l := range s.SummaryLines {
		addEmp(l.EmployeeID)
	}

	var err error
	if sc.products, err = catalog.FindProducts(ctx, keys(productIDs)); err != nil {
		return err
	}
	sc.employees, err = catalog.FindEmployees(ctx, keys(employeeIDs))
	return err
}

func keys(m map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

func (sc *shiftScope) product(id uuid.UUID) model.Product {
	return sc.products[id]
}

func (sc *shiftScope) employeeName(id *uuid.UUID) string {
	if id == nil {
		return "Unassigned"
	}
	if e, ok := sc.employees[*id]; ok {
		return e.Name
	}
	return id.String()
}

// productLocation is where a non-tank sale of product is taken from: the
// dry-stock location for dry-stock products, otherwise the location of the
// tank holding the product.
func (sc *shiftScope) productLocation(productID uuid.UUID) *uuid.UUID {
	if sc.product(productID).IsDryStock {
		return sc.station.DryStockLocationID
	}
	if t := sc.station.TankForProduct(productID); t != nil {
		loc := t.LocationID
		return &loc
	}
	return nil
}

func (sc *shiftScope) cashPartner() uuid.UUID {
	if sc.station.CashPartnerID == nil {
		return uuid.Nil
	}
	return *sc.station.CashPartnerID
}

// creditQuantity sums credit sale quantities of productID; when byEmployee
// is set only lines of that employee count.
func (sc *shiftScope) creditQuantity(productID uuid.UUID, employeeID *uuid.UUID, byEmployee bool) decimal.Decimal {
	total := decimal.Zero
	for _, c := range sc.shift.CreditSaleLines {
		if c.ProductID != productID {
			continue
		}
		if byEmployee && !sameEmployee(c.EmployeeID, employeeID) {
			continue
		}
		total = total.Add(c.Quantity)
	}
	return total
}

func sameEmployee(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (sc *shiftScope) gunName(id uuid.UUID) string {
	for _, t := range sc.station.Tanks {
		for _, g := range t.Guns {
			if g.ID == id {
				return g.Name
			}
		}
	}
	return id.String()
}

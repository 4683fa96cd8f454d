package erp

import (
	"context"
	"errors"

	"fuelstation/internal/model"
	"fuelstation/internal/repository"
	"fuelstation/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sales turns grouped order lines into confirmed orders, their delivery
// pickings and customer invoices.
type Sales struct {
	db         *gorm.DB
	accounting *Accounting
}

func NewSales(db *gorm.DB, accounting *Accounting) *Sales {
	return &Sales{db: db, accounting: accounting}
}

func (s *Sales) CreateOrder(ctx context.Context, req service.OrderRequest) (uuid.UUID, error) {
	if len(req.Lines) == 0 {
		return uuid.Nil, invalid("An order needs at least one line")
	}
	shiftID := req.ShiftID
	order := model.SaleOrder{
		ShiftID:     &shiftID,
		PartnerID:   req.PartnerID,
		PricelistID: req.PricelistID,
		Date:        req.Date,
		State:       model.OrderDraft,
	}
	for _, l := range req.Lines {
		order.Lines = append(order.Lines, model.SaleOrderLine{
			ProductID:  l.ProductID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			UomID:      l.UomID,
			PriceUnit:  l.PriceUnit,
			EmployeeID: l.EmployeeID,
			LocationID: l.LocationID,
		})
	}
	if err := repository.Conn(ctx, s.db).Create(&order).Error; err != nil {
		return uuid.Nil, err
	}
	return order.ID, nil
}

func (s *Sales) loadOrder(db *gorm.DB, id uuid.UUID) (*model.SaleOrder, error) {
	var order model.SaleOrder
	if err := db.Preload("Lines").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("Sale order " + id.String() + " does not exist")
		}
		return nil, err
	}
	return &order, nil
}

// ConfirmOrder confirms the order and creates one draft delivery picking per
// source location of its stockable lines. Service products and lines without
// a location ship nothing.
func (s *Sales) ConfirmOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	db := repository.Conn(ctx, s.db)
	order, err := s.loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	if order.State == model.OrderConfirmed {
		return nil, nil
	}
	products, err := orderProducts(db, order)
	if err != nil {
		return nil, err
	}

	var sources []uuid.UUID
	moves := map[uuid.UUID][]model.StockMove{}
	var customer uuid.UUID
	for _, l := range order.Lines {
		if l.LocationID == nil || products[l.ProductID].IsService {
			continue
		}
		if customer == uuid.Nil {
			if customer, err = customerLocation(db); err != nil {
				return nil, err
			}
		}
		src := *l.LocationID
		if _, ok := moves[src]; !ok {
			sources = append(sources, src)
		}
		moves[src] = append(moves[src], model.StockMove{
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			SourceLocationID: src,
			DestLocationID:   customer,
			State:            model.PickingConfirmed,
		})
	}

	var pickings []uuid.UUID
	for _, src := range sources {
		p := model.Picking{
			Origin:           order.ID.String(),
			ShiftID:          order.ShiftID,
			SaleOrderID:      &order.ID,
			SourceLocationID: src,
			DestLocationID:   customer,
			State:            model.PickingConfirmed,
			ScheduledDate:    order.Date,
			Moves:            moves[src],
		}
		if err := db.Create(&p).Error; err != nil {
			return nil, err
		}
		pickings = append(pickings, p.ID)
	}
	if err := db.Model(&model.SaleOrder{}).Where("id = ?", order.ID).
		Update("state", model.OrderConfirmed).Error; err != nil {
		return nil, err
	}
	return pickings, nil
}

// InvoiceOrder books one income line per order line on the product's income
// account in the first sale journal.
func (s *Sales) InvoiceOrder(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	db := repository.Conn(ctx, s.db)
	order, err := s.loadOrder(db, orderID)
	if err != nil {
		return uuid.Nil, err
	}
	if order.Invoiced {
		return uuid.Nil, invalid("Sale order " + order.ID.String() + " is already invoiced")
	}
	products, err := orderProducts(db, order)
	if err != nil {
		return uuid.Nil, err
	}
	var journal model.Journal
	if err := db.Where("type = ?", "sale").Order("name ASC").Limit(1).Find(&journal).Error; err != nil {
		return uuid.Nil, err
	}
	if journal.ID == uuid.Nil {
		return uuid.Nil, invalid("No sale journal is configured")
	}

	lines := make([]service.MoveLineRequest, 0, len(order.Lines))
	for _, l := range order.Lines {
		p := products[l.ProductID]
		if p.IncomeAccountID == nil {
			return uuid.Nil, invalid("Product " + p.Name + " has no income account")
		}
		pid := l.ProductID
		lines = append(lines, service.MoveLineRequest{
			AccountID: *p.IncomeAccountID,
			ProductID: &pid,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Credit:    l.Subtotal().Round(2),
		})
	}
	partner := order.PartnerID
	var shiftID uuid.UUID
	if order.ShiftID != nil {
		shiftID = *order.ShiftID
	}
	ref, err := invoiceRef(db, order)
	if err != nil {
		return uuid.Nil, err
	}
	moveID, err := s.accounting.CreateMove(ctx, service.MoveRequest{
		ShiftID:   shiftID,
		Type:      model.MoveOutInvoice,
		JournalID: journal.ID,
		PartnerID: &partner,
		Date:      order.Date,
		Ref:       ref,
		Lines:     lines,
	})
	if err != nil {
		return uuid.Nil, err
	}
	if err := db.Model(&model.Move{}).Where("id = ?", moveID).Update("sale_order_id", order.ID).Error; err != nil {
		return uuid.Nil, err
	}
	if err := db.Model(&model.SaleOrder{}).Where("id = ?", order.ID).Update("invoiced", true).Error; err != nil {
		return uuid.Nil, err
	}
	return moveID, nil
}

// invoiceRef labels an invoice "<shift> <partner>"; orders raised outside a
// shift keep their own id.
func invoiceRef(db *gorm.DB, order *model.SaleOrder) (string, error) {
	if order.ShiftID == nil {
		return order.ID.String(), nil
	}
	var shiftNames []string
	if err := db.Model(&model.Shift{}).Where("id = ?", *order.ShiftID).Limit(1).Pluck("name", &shiftNames).Error; err != nil {
		return "", err
	}
	if len(shiftNames) == 0 || shiftNames[0] == "" {
		return order.ID.String(), nil
	}
	var partnerNames []string
	if err := db.Model(&model.Partner{}).Where("id = ?", order.PartnerID).Limit(1).Pluck("name", &partnerNames).Error; err != nil {
		return "", err
	}
	if len(partnerNames) == 0 {
		return shiftNames[0], nil
	}
	return shiftNames[0] + " " + partnerNames[0], nil
}

func (s *Sales) PendingOrders(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := repository.Conn(ctx, s.db).Model(&model.SaleOrder{}).
		Where("id IN ? AND state <> ?", ids, model.OrderConfirmed).Count(&n).Error
	return int(n), err
}

func orderProducts(db *gorm.DB, order *model.SaleOrder) (map[uuid.UUID]model.Product, error) {
	ids := make([]uuid.UUID, 0, len(order.Lines))
	for _, l := range order.Lines {
		ids = append(ids, l.ProductID)
	}
	var rows []model.Product
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]model.Product, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

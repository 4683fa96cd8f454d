package erp

import (
	"context"
	"fmt"
	"time"

	"fuelstation/internal/model"
	"fuelstation/internal/repository"
	"fuelstation/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Location usages. Only internal locations hold quants.
const (
	UsageInternal = "internal"
	UsageSupplier = "supplier"
	UsageCustomer = "customer"
	UsageTransit  = "transit"
)

// Inventory keeps on-hand quantities per (product, internal location) and
// moves them with pickings.
type Inventory struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInventory(db *gorm.DB) *Inventory {
	return &Inventory{db: db, now: time.Now}
}

func (inv *Inventory) AvailableQuantity(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	var quants []model.StockQuant
	if err := repository.Conn(ctx, inv.db).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Find(&quants).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, q := range quants {
		total = total.Add(q.Quantity)
	}
	return total, nil
}

// Receive creates a one-move picking from SourceLocationID into
// DestLocationID and validates it immediately.
func (inv *Inventory) Receive(ctx context.Context, req service.ReceiptRequest) (uuid.UUID, error) {
	shiftID := req.ShiftID
	picking := model.Picking{
		Origin:           req.Origin,
		ShiftID:          &shiftID,
		SourceLocationID: req.SourceLocationID,
		DestLocationID:   req.DestLocationID,
		State:            model.PickingDraft,
		ScheduledDate:    req.Date,
		Moves: []model.StockMove{{
			ProductID:        req.ProductID,
			Quantity:         req.Quantity,
			SourceLocationID: req.SourceLocationID,
			DestLocationID:   req.DestLocationID,
			State:            model.PickingDraft,
		}},
	}
	if err := repository.Conn(ctx, inv.db).Create(&picking).Error; err != nil {
		return uuid.Nil, err
	}
	if err := inv.ValidatePickings(ctx, []uuid.UUID{picking.ID}); err != nil {
		return uuid.Nil, err
	}
	return picking.ID, nil
}

// ValidatePickings moves the quantities of every picking that is not done
// yet. A move out of an internal location that holds less than its quantity
// fails the whole call with service.ErrInsufficientStock.
func (inv *Inventory) ValidatePickings(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return repository.RunTx(ctx, inv.db, func(ctx context.Context) error {
		db := repository.Conn(ctx, inv.db)
		var pickings []model.Picking
		if err := db.Preload("Moves").Where("id IN ? AND state <> ?", ids, model.PickingDone).
			Find(&pickings).Error; err != nil {
			return err
		}
		usages, err := inv.locationUsages(ctx, pickings)
		if err != nil {
			return err
		}
		doneAt := inv.now()
		for _, p := range pickings {
			for _, m := range p.Moves {
				if usages[m.SourceLocationID] == UsageInternal {
					if err := inv.take(db, m.ProductID, m.SourceLocationID, m.Quantity); err != nil {
						return err
					}
				}
				if usages[m.DestLocationID] == UsageInternal {
					if err := inv.put(db, m.ProductID, m.DestLocationID, m.Quantity); err != nil {
						return err
					}
				}
			}
			if err := db.Model(&model.StockMove{}).Where("picking_id = ?", p.ID).
				Update("state", model.PickingDone).Error; err != nil {
				return err
			}
			if err := db.Model(&model.Picking{}).Where("id = ?", p.ID).
				Updates(map[string]interface{}{"state": model.PickingDone, "done_at": doneAt}).Error; err != nil {
				return err
			}
			log.Debug().Str("picking", p.ID.String()).Str("origin", p.Origin).Msg("picking validated")
		}
		return nil
	})
}

func (inv *Inventory) locationUsages(ctx context.Context, pickings []model.Picking) (map[uuid.UUID]string, error) {
	ids := map[uuid.UUID]struct{}{}
	for _, p := range pickings {
		for _, m := range p.Moves {
			ids[m.SourceLocationID] = struct{}{}
			ids[m.DestLocationID] = struct{}{}
		}
	}
	list := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	out := make(map[uuid.UUID]string, len(list))
	if len(list) == 0 {
		return out, nil
	}
	var locations []model.Location
	if err := repository.Conn(ctx, inv.db).Where("id IN ?", list).Find(&locations).Error; err != nil {
		return nil, err
	}
	for _, l := range locations {
		out[l.ID] = l.Usage
	}
	return out, nil
}

// take decrements the quant only when it covers qty; the guard lives in the
// UPDATE so concurrent takes cannot overdraw.
func (inv *Inventory) take(db *gorm.DB, productID, locationID uuid.UUID, qty decimal.Decimal) error {
	res := db.Model(&model.StockQuant{}).
		Where("product_id = ? AND location_id = ? AND quantity >= ?", productID, locationID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %s at location %s", service.ErrInsufficientStock, productID, locationID)
	}
	return nil
}

func (inv *Inventory) put(db *gorm.DB, productID, locationID uuid.UUID, qty decimal.Decimal) error {
	res := db.Model(&model.StockQuant{}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.Create(&model.StockQuant{ProductID: productID, LocationID: locationID, Quantity: qty}).Error
}

func (inv *Inventory) PendingPickings(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := repository.Conn(ctx, inv.db).Model(&model.Picking{}).
		Where("id IN ? AND state <> ?", ids, model.PickingDone).Count(&n).Error
	return int(n), err
}

// customerLocation returns the first customer location, creating one when
// the database has none.
func customerLocation(db *gorm.DB) (uuid.UUID, error) {
	var loc model.Location
	err := db.Where("usage = ?", UsageCustomer).Order("name ASC").Limit(1).Find(&loc).Error
	if err != nil {
		return uuid.Nil, err
	}
	if loc.ID != uuid.Nil {
		return loc.ID, nil
	}
	loc = model.Location{Name: "Customers", Usage: UsageCustomer}
	if err := db.Create(&loc).Error; err != nil {
		return uuid.Nil, err
	}
	return loc.ID, nil
}

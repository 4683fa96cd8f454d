package erp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fuelstation/internal/model"
	"fuelstation/internal/repository"
	"fuelstation/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pricing resolves unit prices from dated pricelist items, falling back to
// the product's list price.
type Pricing struct {
	db *gorm.DB
}

func NewPricing(db *gorm.DB) *Pricing { return &Pricing{db: db} }

// GetPrice picks the pricelist item valid on date with the highest minimum
// quantity not above qty; the most recent start date wins a tie.
func (p *Pricing) GetPrice(ctx context.Context, pricelistID *uuid.UUID, productID uuid.UUID, date time.Time, qty decimal.Decimal, _ *uuid.UUID) (decimal.Decimal, error) {
	db := repository.Conn(ctx, p.db)
	if pricelistID != nil {
		var item model.PricelistItem
		err := db.
			Where("pricelist_id = ? AND product_id = ? AND min_quantity <= ?", *pricelistID, productID, qty).
			Where("(date_start IS NULL OR date_start <= ?) AND (date_end IS NULL OR date_end >= ?)", date, date).
			Order("min_quantity DESC").Order("date_start DESC").
			First(&item).Error
		switch {
		case err == nil:
			return item.Price, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return decimal.Zero, err
		}
	}

	var product model.Product
	if err := db.Select("id", "list_price").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, fmt.Errorf("product %s: %w", productID, service.ErrNotFound)
		}
		return decimal.Zero, err
	}
	return product.ListPrice, nil
}

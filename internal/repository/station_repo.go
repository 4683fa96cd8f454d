package repository

import (
	"context"

	"fuelstation/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StationRepository reads station configuration and performs the few
// carry-forward writes a shift is allowed to make on its station.
type StationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Station, error)
	// NextSequence returns the station's next shift number and increments it.
	NextSequence(ctx context.Context, id uuid.UUID) (int, error)
	UpdateCash(ctx context.Context, id uuid.UUID, closingCash decimal.Decimal, lastShiftID uuid.UUID) error
	UpdateTankVolume(ctx context.Context, tankID uuid.UUID, volume decimal.Decimal) error
	UpdateGunReadings(ctx context.Context, gunID uuid.UUID, electronic, manual, cash decimal.Decimal) error
	ListShiftTypes(ctx context.Context) ([]model.ShiftType, error)
}

type stationRepo struct{ db *gorm.DB }

func NewStationRepository(db *gorm.DB) StationRepository { return &stationRepo{db: db} }

func (r *stationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Station, error) {
	var st model.Station
	err := Conn(ctx, r.db).
		Preload("Tanks", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Tanks.Product").
		Preload("Tanks.Guns", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("CreditPartners").
		Preload("BankingJournals.PaymentMethods").
		Preload("PaymentModes.PaymentMethods").
		Preload("UnbankedJournal.PaymentMethods").
		Preload("PettyCashJournal").
		Preload("ExpenseJournal").
		First(&st, "id = ?", id).Error
	return &st, err
}

func (r *stationRepo) NextSequence(ctx context.Context, id uuid.UUID) (int, error) {
	var st model.Station
	db := Conn(ctx, r.db)
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id", "next_sequence").First(&st, "id = ?", id).Error; err != nil {
		return 0, err
	}
	err := db.Model(&model.Station{}).Where("id = ?", id).
		Update("next_sequence", gorm.Expr("next_sequence + 1")).Error
	return st.NextSequence, err
}

func (r *stationRepo) UpdateCash(ctx context.Context, id uuid.UUID, closingCash decimal.Decimal, lastShiftID uuid.UUID) error {
	return Conn(ctx, r.db).Model(&model.Station{}).Where("id = ?", id).
		Updates(map[string]interface{}{"closing_cash": closingCash, "last_shift_id": lastShiftID}).Error
}

func (r *stationRepo) UpdateTankVolume(ctx context.Context, tankID uuid.UUID, volume decimal.Decimal) error {
	return Conn(ctx, r.db).Model(&model.Tank{}).Where("id = ?", tankID).
		Update("current_volume", volume).Error
}

func (r *stationRepo) UpdateGunReadings(ctx context.Context, gunID uuid.UUID, electronic, manual, cash decimal.Decimal) error {
	return Conn(ctx, r.db).Model(&model.Gun{}).Where("id = ?", gunID).
		Updates(map[string]interface{}{
			"last_electronic_reading": electronic,
			"last_manual_reading":     manual,
			"last_cash_reading":       cash,
		}).Error
}

func (r *stationRepo) ListShiftTypes(ctx context.Context) ([]model.ShiftType, error) {
	var types []model.ShiftType
	err := Conn(ctx, r.db).Where("active = ?", true).Order("sequence ASC, name ASC").Find(&types).Error
	return types, err
}

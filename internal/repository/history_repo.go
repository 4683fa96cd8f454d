package repository

import (
	"context"
	"errors"
	"time"

	"fuelstation/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoryRepository interface {
	ExistsForStation(ctx context.Context, stationID uuid.UUID) (bool, error)
	// FindSlot returns the history row of (station, type, date), or nil.
	FindSlot(ctx context.Context, stationID, typeID uuid.UUID, date time.Time) (*model.ShiftHistory, error)
	Create(ctx context.Context, h *model.ShiftHistory) error
	Link(ctx context.Context, id uuid.UUID, shiftID uuid.UUID) error
	UnlinkShift(ctx context.Context, shiftID uuid.UUID) error
	ListByStation(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]model.ShiftHistory, error)
}

type historyRepo struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) HistoryRepository { return &historyRepo{db: db} }

func (r *historyRepo) ExistsForStation(ctx context.Context, stationID uuid.UUID) (bool, error) {
	var n int64
	err := Conn(ctx, r.db).Model(&model.ShiftHistory{}).Where("station_id = ?", stationID).Limit(1).Count(&n).Error
	return n > 0, err
}

func (r *historyRepo) FindSlot(ctx context.Context, stationID, typeID uuid.UUID, date time.Time) (*model.ShiftHistory, error) {
	var h model.ShiftHistory
	err := Conn(ctx, r.db).Where("station_id = ? AND type_id = ? AND date = ?", stationID, typeID, date).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &h, err
}

func (r *historyRepo) Create(ctx context.Context, h *model.ShiftHistory) error {
	return Conn(ctx, r.db).Create(h).Error
}

func (r *historyRepo) Link(ctx context.Context, id uuid.UUID, shiftID uuid.UUID) error {
	return Conn(ctx, r.db).Model(&model.ShiftHistory{}).Where("id = ?", id).Update("shift_id", shiftID).Error
}

func (r *historyRepo) UnlinkShift(ctx context.Context, shiftID uuid.UUID) error {
	return Conn(ctx, r.db).Model(&model.ShiftHistory{}).Where("shift_id = ?", shiftID).Update("shift_id", nil).Error
}

func (r *historyRepo) ListByStation(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]model.ShiftHistory, error) {
	var rows []model.ShiftHistory
	err := Conn(ctx, r.db).
		Where("station_id = ? AND date >= ? AND date <= ?", stationID, from, to).
		Order("date ASC").Find(&rows).Error
	return rows, err
}

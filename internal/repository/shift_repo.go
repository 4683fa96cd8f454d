package repository

import (
	"context"
	"errors"
	"time"

	"fuelstation/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShiftRepository interface {
	Create(ctx context.Context, s *model.Shift) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	// Save writes the shift header and replaces every owned line collection.
	Save(ctx context.Context, s *model.Shift) error
	// FindActive returns another active shift of the station on date, or nil.
	FindActive(ctx context.Context, stationID uuid.UUID, date time.Time, excludeID uuid.UUID) (*model.Shift, error)
	CountSameSlot(ctx context.Context, stationID, typeID uuid.UUID, date time.Time, excludeID uuid.UUID) (int64, error)
	// FindLaterTypeOnDate returns a non-cancelled shift of the same station and
	// date whose type sequence is greater than sequence, or nil.
	FindLaterTypeOnDate(ctx context.Context, stationID uuid.UUID, date time.Time, sequence int, excludeID uuid.UUID) (*model.Shift, error)
	AddDocuments(ctx context.Context, docs []model.ShiftDocument) error
	ListByStation(ctx context.Context, stationID *uuid.UUID, from, to time.Time) ([]model.Shift, error)
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) Create(ctx context.Context, s *model.Shift) error {
	return Conn(ctx, r.db).Omit(clause.Associations).Create(s).Error
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Type").
		Preload("GunSaleLines").
		Preload("DrySaleLines").
		Preload("OtherSaleLines").
		Preload("CreditSaleLines").
		Preload("DirectSaleLines").
		Preload("CollectionLines").
		Preload("ExpenseLines").
		Preload("PettyCashLines").
		Preload("PaymentLines").
		Preload("TransferLines").
		Preload("SummaryLines").
		Preload("TankStockTakes").
		Preload("Documents")
}

func (r *shiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := preloadLines(Conn(ctx, r.db)).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *shiftRepo) Save(ctx context.Context, s *model.Shift) error {
	db := Conn(ctx, r.db)
	if err := db.Omit(clause.Associations).Save(s).Error; err != nil {
		return err
	}
	steps := []func() error{
		func() error { return replaceLines(db, s.ID, s.GunSaleLines) },
		func() error { return replaceLines(db, s.ID, s.DrySaleLines) },
		func() error { return replaceLines(db, s.ID, s.OtherSaleLines) },
		func() error { return replaceLines(db, s.ID, s.CreditSaleLines) },
		func() error { return replaceLines(db, s.ID, s.DirectSaleLines) },
		func() error { return replaceLines(db, s.ID, s.CollectionLines) },
		func() error { return replaceLines(db, s.ID, s.ExpenseLines) },
		func() error { return replaceLines(db, s.ID, s.PettyCashLines) },
		func() error { return replaceLines(db, s.ID, s.PaymentLines) },
		func() error { return replaceLines(db, s.ID, s.TransferLines) },
		func() error { return replaceLines(db, s.ID, s.SummaryLines) },
		func() error { return replaceLines(db, s.ID, s.TankStockTakes) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// replaceLines deletes the stored rows of one line table for the shift and
// inserts rows as they are now. Row ids are kept, so replacing is stable.
func replaceLines[T any](db *gorm.DB, shiftID uuid.UUID, rows []T) error {
	var zero T
	if err := db.Where("shift_id = ?", shiftID).Delete(&zero).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		setShiftID(&rows[i], shiftID)
	}
	return db.Create(&rows).Error
}

func setShiftID(row interface{}, shiftID uuid.UUID) {
	switch l := row.(type) {
	case *model.GunSaleLine:
		l.ShiftID = shiftID
	case *model.DrySaleLine:
		l.ShiftID = shiftID
	case *model.OtherSaleLine:
		l.ShiftID = shiftID
	case *model.CreditSaleLine:
		l.ShiftID = shiftID
	case *model.DirectSaleLine:
		l.ShiftID = shiftID
	case *model.CollectionLine:
		l.ShiftID = shiftID
	case *model.ExpenseLine:
		l.ShiftID = shiftID
	case *model.PettyCashLine:
		l.ShiftID = shiftID
	case *model.PaymentLine:
		l.ShiftID = shiftID
	case *model.TransferLine:
		l.ShiftID = shiftID
	case *model.SummaryLine:
		l.ShiftID = shiftID
	case *model.TankStockTake:
		l.ShiftID = shiftID
	}
}

func (r *shiftRepo) FindActive(ctx context.Context, stationID uuid.UUID, date time.Time, excludeID uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := Conn(ctx, r.db).
		Where("station_id = ? AND date = ? AND id <> ? AND state IN ?", stationID, date, excludeID, model.ActiveShiftStates).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *shiftRepo) CountSameSlot(ctx context.Context, stationID, typeID uuid.UUID, date time.Time, excludeID uuid.UUID) (int64, error) {
	var n int64
	err := Conn(ctx, r.db).Model(&model.Shift{}).
		Where("station_id = ? AND type_id = ? AND date = ? AND id <> ? AND state <> ?",
			stationID, typeID, date, excludeID, model.ShiftCancelled).
		Count(&n).Error
	return n, err
}

func (r *shiftRepo) FindLaterTypeOnDate(ctx context.Context, stationID uuid.UUID, date time.Time, sequence int, excludeID uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := Conn(ctx, r.db).
		Preload("Type").
		Joins("JOIN shift_types ON shift_types.id = shifts.type_id").
		Where("shifts.station_id = ? AND shifts.date = ? AND shifts.id <> ? AND shifts.state <> ? AND shift_types.sequence > ?",
			stationID, date, excludeID, model.ShiftCancelled, sequence).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *shiftRepo) AddDocuments(ctx context.Context, docs []model.ShiftDocument) error {
	if len(docs) == 0 {
		return nil
	}
	return Conn(ctx, r.db).Create(&docs).Error
}

// ListByStation returns non-draft, non-cancelled shifts between from and to
// ordered by date and type sequence. A nil station lists every station.
func (r *shiftRepo) ListByStation(ctx context.Context, stationID *uuid.UUID, from, to time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	q := preloadLines(Conn(ctx, r.db)).
		Joins("JOIN shift_types ON shift_types.id = shifts.type_id").
		Where("shifts.date >= ? AND shifts.date <= ? AND shifts.state NOT IN ?",
			from, to, []string{model.ShiftDraft, model.ShiftCancelled})
	if stationID != nil {
		q = q.Where("shifts.station_id = ?", *stationID)
	}
	err := q.Order("shifts.date ASC, shift_types.sequence ASC").Find(&shifts).Error
	return shifts, err
}

package service

import (
	"context"
	"errors"
	"testing"

	"fuelstation/internal/model"
	"fuelstation/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubShifts struct {
	repository.ShiftRepository
	shift *model.Shift
	err   error
}

func (r stubShifts) FindByID(context.Context, uuid.UUID) (*model.Shift, error) { return r.shift, r.err }

type stubStations struct {
	repository.StationRepository
	station *model.Station
	err     error
}

func (r stubStations) FindByID(context.Context, uuid.UUID) (*model.Station, error) {
	return r.station, r.err
}

func TestLoadScope_MissingRowsAreNotFound(t *testing.T) {
	_, err := loadScope(context.Background(), stubShifts{err: gorm.ErrRecordNotFound}, stubStations{}, nil, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))

	shift := &model.Shift{ID: uuid.New(), StationID: uuid.New()}
	_, err = loadScope(context.Background(), stubShifts{shift: shift},
		stubStations{err: gorm.ErrRecordNotFound}, nil, shift.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "station")
}

func TestLoadScope_StorageErrorsPassThrough(t *testing.T) {
	dbErr := errors.New("connection reset by peer")

	_, err := loadScope(context.Background(), stubShifts{err: dbErr}, stubStations{}, nil, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
	assert.False(t, errors.Is(err, ErrNotFound))

	shift := &model.Shift{ID: uuid.New(), StationID: uuid.New()}
	_, err = loadScope(context.Background(), stubShifts{shift: shift}, stubStations{err: dbErr}, nil, shift.ID)
	assert.True(t, errors.Is(err, dbErr))
	assert.False(t, errors.Is(err, ErrNotFound))
}

package service

import (
	"context"
	"time"

	"fuelstation/internal/model"
	"fuelstation/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sequencer keeps the per-station ledger of expected shift slots. Slots run
// round-robin over the active shift types ordered by sequence, one slot per
// type per day.
type Sequencer struct {
	history  repository.HistoryRepository
	stations repository.StationRepository
}

func NewSequencer(history repository.HistoryRepository, stations repository.StationRepository) *Sequencer {
	return &Sequencer{history: history, stations: stations}
}

// NextSlot returns the (type, date) slot following the shift's own slot.
// After the last type of a day it wraps to the first type of the next day.
func (q *Sequencer) NextSlot(ctx context.Context, shift *model.Shift) (uuid.UUID, time.Time, error) {
	types, err := q.stations.ListShiftTypes(ctx)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	if len(types) == 0 {
		return uuid.Nil, time.Time{}, validationf("No shift types are configured")
	}
	current := -1
	for _, t := range types {
		if t.ID == shift.TypeID {
			current = t.Sequence
			break
		}
	}
	for _, t := range types {
		if t.ID != shift.TypeID && t.Sequence > current {
			return t.ID, shift.Date, nil
		}
	}
	return types[0].ID, shift.Date.AddDate(0, 0, 1), nil
}

// Register finds or creates the history row of the shift's slot and links
// the shift to it. Calling it again for the same shift is a no-op.
func (q *Sequencer) Register(ctx context.Context, shift *model.Shift) (*model.ShiftHistory, error) {
	slot, err := q.history.FindSlot(ctx, shift.StationID, shift.TypeID, shift.Date)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		slot = &model.ShiftHistory{
			StationID: shift.StationID,
			TypeID:    shift.TypeID,
			Date:      shift.Date,
			ShiftID:   &shift.ID,
		}
		if err := q.history.Create(ctx, slot); err != nil {
			return nil, err
		}
		log.Info().Str("station_id", shift.StationID.String()).Str("shift", shift.Name).
			Time("date", shift.Date).Msg("shift slot registered")
		return slot, nil
	}
	if slot.ShiftID != nil {
		if *slot.ShiftID == shift.ID {
			return slot, nil
		}
		return nil, validationf("A shift history with the same station, period and date already exists. You might need to cancel this shift and create a new one")
	}
	if err := q.history.Link(ctx, slot.ID, shift.ID); err != nil {
		return nil, err
	}
	slot.ShiftID = &shift.ID
	return slot, nil
}

// ValidateLinear links the shift to its slot when the slot is the next
// expected one and makes sure the following slot exists. A station without
// history is bootstrapped from this shift. It reports false, without error,
// when the shift is out of sequence.
func (q *Sequencer) ValidateLinear(ctx context.Context, shift *model.Shift) (bool, error) {
	exists, err := q.history.ExistsForStation(ctx, shift.StationID)
	if err != nil {
		return false, err
	}
	if !exists {
		if _, err := q.Register(ctx, shift); err != nil {
			return false, err
		}
		return true, q.ensureNext(ctx, shift)
	}

	slot, err := q.history.FindSlot(ctx, shift.StationID, shift.TypeID, shift.Date)
	if err != nil {
		return false, err
	}
	if slot == nil || (slot.ShiftID != nil && *slot.ShiftID != shift.ID) {
		return false, nil
	}
	if slot.ShiftID == nil {
		if err := q.history.Link(ctx, slot.ID, shift.ID); err != nil {
			return false, err
		}
	}
	return true, q.ensureNext(ctx, shift)
}

func (q *Sequencer) ensureNext(ctx context.Context, shift *model.Shift) error {
	typeID, date, err := q.NextSlot(ctx, shift)
	if err != nil {
		return err
	}
	next, err := q.history.FindSlot(ctx, shift.StationID, typeID, date)
	if err != nil || next != nil {
		return err
	}
	log.Info().Str("station_id", shift.StationID.String()).Str("type_id", typeID.String()).
		Time("date", date).Msg("next shift slot created")
	return q.history.Create(ctx, &model.ShiftHistory{StationID: shift.StationID, TypeID: typeID, Date: date})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fuelstation/internal/dto"
	"fuelstation/internal/model"
	"fuelstation/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// ShiftService is the shift lifecycle: draft → running → done →
// waiting_approval → approved → interfaced, with cancellation from any
// active state. Every action runs in one transaction.
type ShiftService interface {
	Create(ctx context.Context, req dto.CreateShiftRequest) (*dto.ShiftResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ShiftResponse, error)
	UpdateEntries(ctx context.Context, id uuid.UUID, req dto.ShiftEntriesRequest) (*dto.ShiftResponse, error)

	Start(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)
	SkipStartingWarning(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)
	Compute(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)
	Done(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)
	RequestApproval(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)
	Approve(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)
	Reject(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)
	Post(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)
	Draft(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error)

	History(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]dto.ShiftHistoryResponse, error)
}

// ShiftDeps wires the lifecycle to storage and the ERP collaborators.
// Reports may be nil. DB nil runs actions without a transaction (unit tests).
type ShiftDeps struct {
	Shifts     repository.ShiftRepository
	Stations   repository.StationRepository
	History    repository.HistoryRepository
	Catalog    repository.CatalogRepository
	Prices     PriceLookup
	Inventory  Inventory
	Sales      Sales
	Accounting Accounting
	Reports    ReportDispatcher
	DB         *gorm.DB
	Now        func() time.Time
}

type shiftService struct {
	shifts     repository.ShiftRepository
	stations   repository.StationRepository
	history    repository.HistoryRepository
	catalog    repository.CatalogRepository
	sequencer  *Sequencer
	prices     PriceLookup
	inventory  Inventory
	sales      Sales
	accounting Accounting
	reports    ReportDispatcher
	db         *gorm.DB
	now        func() time.Time
}

func NewShiftService(d ShiftDeps) ShiftService {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &shiftService{
		shifts:     d.Shifts,
		stations:   d.Stations,
		history:    d.History,
		catalog:    d.Catalog,
		sequencer:  NewSequencer(d.History, d.Stations),
		prices:     d.Prices,
		inventory:  d.Inventory,
		sales:      d.Sales,
		accounting: d.Accounting,
		reports:    d.Reports,
		db:         d.DB,
		now:        now,
	}
}

// act loads the shift, applies fn and saves the shift in one transaction.
func (s *shiftService) act(ctx context.Context, id uuid.UUID, action string, actor Actor,
	fn func(ctx context.Context, sc *shiftScope) error) (*shiftScope, error) {
	var sc *shiftScope
	err := repository.RunTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		sc, err = loadScope(ctx, s.shifts, s.stations, s.catalog, id)
		if err != nil {
			return err
		}
		from := sc.shift.State
		if err := fn(ctx, sc); err != nil {
			return err
		}
		if err := s.shifts.Save(ctx, sc.shift); err != nil {
			return err
		}
		ev := log.Info().
			Str("shift", sc.shift.Name).
			Str("station", sc.station.Code).
			Str("action", action).
			Str("from", from).
			Str("to", sc.shift.State)
		if actor != nil {
			ev = ev.Str("employee_id", actor.EmployeeID().String())
		}
		ev.Msg("shift action applied")
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, validationf("Another shift for the same station already exists in the same period and status")
	}
	return sc, err
}

func (s *shiftService) respond(sc *shiftScope, err error) (*dto.ShiftResponse, error) {
	if err != nil {
		return nil, err
	}
	return toShiftResponse(sc), nil
}

// ── Create ───────────────────────────────────────────────────────────────────

func (s *shiftService) Create(ctx context.Context, req dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		return nil, validationf("invalid station_id")
	}
	typeID, err := uuid.Parse(req.TypeID)
	if err != nil {
		return nil, validationf("invalid type_id")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, validationf("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	var sc *shiftScope
	err = repository.RunTx(ctx, s.db, func(ctx context.Context) error {
		station, err := s.stations.FindByID(ctx, stationID)
		if err != nil {
			return lookupErr(err, "station", stationID)
		}
		shiftType, err := s.findShiftType(ctx, typeID)
		if err != nil {
			return err
		}

		same, err := s.shifts.CountSameSlot(ctx, stationID, typeID, date, uuid.Nil)
		if err != nil {
			return err
		}
		if same > 0 {
			return validationf("A shift for the same day and type already exists!")
		}
		later, err := s.shifts.FindLaterTypeOnDate(ctx, stationID, date, shiftType.Sequence, uuid.Nil)
		if err != nil {
			return err
		}
		if later != nil {
			laterName := ""
			if later.Type != nil {
				laterName = later.Type.Name
			}
			return validationf("Shift of type %s cannot be added after a shift of type %s!", shiftType.Name, laterName)
		}
		open, err := s.shifts.FindActive(ctx, stationID, date, uuid.Nil)
		if err != nil {
			return err
		}
		if open != nil {
			return validationf("You cannot create a shift while another shift is open: Shift %s", open.Name)
		}

		seq, err := s.stations.NextSequence(ctx, stationID)
		if err != nil {
			return err
		}
		shift := &model.Shift{
			Name:      fmt.Sprintf("FMS/%s/%04d", station.Code, seq),
			StationID: stationID,
			TypeID:    typeID,
			Type:      shiftType,
			Date:      date,
			State:     model.ShiftDraft,
		}
		if err := s.shifts.Create(ctx, shift); err != nil {
			return err
		}
		log.Info().Str("shift", shift.Name).Str("station", station.Code).
			Str("type", shiftType.Name).Str("date", req.Date).Msg("shift created")
		sc = &shiftScope{shift: shift, station: station}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = validationf("Another shift for the same station already exists in the same period and status")
	}
	return s.respond(sc, err)
}

func (s *shiftService) findShiftType(ctx context.Context, id uuid.UUID) (*model.ShiftType, error) {
	types, err := s.stations.ListShiftTypes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range types {
		if types[i].ID == id {
			return &types[i], nil
		}
	}
	return nil, validationf("Shift type %s does not exist or is archived", id)
}

func (s *shiftService) Get(ctx context.Context, id uuid.UUID) (*dto.ShiftResponse, error) {
	sc, err := loadScope(ctx, s.shifts, s.stations, s.catalog, id)
	return s.respond(sc, err)
}

// ── Start ────────────────────────────────────────────────────────────────────

func (s *shiftService) Start(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "start", actor, s.start))
}

func (s *shiftService) SkipStartingWarning(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "skip_starting_warning", actor, func(ctx context.Context, sc *shiftScope) error {
		if err := requireState(sc.shift, "start", model.ShiftDraft, model.ShiftCancelled); err != nil {
			return err
		}
		sc.shift.ShowStartingWarning = false
		if _, err := s.sequencer.Register(ctx, sc.shift); err != nil {
			return err
		}
		return s.start(ctx, sc)
	}))
}

func (s *shiftService) start(ctx context.Context, sc *shiftScope) error {
	shift, station := sc.shift, sc.station
	if err := requireState(shift, "start", model.ShiftDraft, model.ShiftCancelled); err != nil {
		return err
	}
	if shift.Date.After(s.today()) {
		return validationf("You cannot start a future shift!")
	}
	open, err := s.shifts.FindActive(ctx, shift.StationID, shift.Date, shift.ID)
	if err != nil {
		return err
	}
	if open != nil {
		return validationf("You cannot start a shift while another shift is open: Shift %s", open.Name)
	}

	ok, err := s.sequencer.ValidateLinear(ctx, shift)
	if err != nil {
		return err
	}
	if !ok {
		shift.HasStartingWarning = true
		shift.ShowStartingWarning = true
		log.Warn().Str("shift", shift.Name).Str("station", station.Code).
			Msg("shift is out of sequence, start needs an explicit override")
		return nil
	}

	s.populateOpening(sc)
	if err := sc.refreshReferences(ctx, s.catalog); err != nil {
		return err
	}
	for i := range shift.GunSaleLines {
		if err := (&gunLine{&shift.GunSaleLines[i]}).ComputePrice(ctx, sc, s.prices); err != nil {
			return err
		}
	}

	shift.OpeningBalance = station.ClosingCash
	shift.PettyCashOpening = decimal.Zero
	if station.LastShiftID != nil {
		last, err := s.shifts.FindByID(ctx, *station.LastShiftID)
		if err == nil {
			shift.PettyCashOpening = last.ClosingPettyCash()
		}
	}
	shift.ShowStartingWarning = false
	shift.State = model.ShiftRunning
	return nil
}

// populateOpening adds one gun line per station gun opened at the gun's last
// readings and one stock take per tank opened at its current volume. Lines
// that already exist are kept.
func (s *shiftService) populateOpening(sc *shiftScope) {
	shift := sc.shift
	hasGun := map[uuid.UUID]bool{}
	for _, l := range shift.GunSaleLines {
		hasGun[l.GunID] = true
	}
	hasTank := map[uuid.UUID]bool{}
	for _, t := range shift.TankStockTakes {
		hasTank[t.TankID] = true
	}
	for _, tank := range sc.station.Tanks {
		for _, gun := range tank.Guns {
			if hasGun[gun.ID] {
				continue
			}
			shift.GunSaleLines = append(shift.GunSaleLines, model.GunSaleLine{
				ShiftID:              shift.ID,
				GunID:                gun.ID,
				TankID:               tank.ID,
				ProductID:            tank.ProductID,
				OpeningReading:       gun.LastElectronicReading,
				ClosingReading:       gun.LastElectronicReading,
				ManualOpeningReading: gun.LastManualReading,
				ManualClosingReading: gun.LastManualReading,
				CashOpeningReading:   gun.LastCashReading,
				CashClosingReading:   gun.LastCashReading,
			})
		}
		if !hasTank[tank.ID] {
			shift.TankStockTakes = append(shift.TankStockTakes, model.TankStockTake{
				ShiftID:       shift.ID,
				TankID:        tank.ID,
				OpeningQty:    tank.CurrentVolume,
				ClosingDipQty: tank.CurrentVolume,
			})
		}
	}
}

func (s *shiftService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ── Compute / Done ───────────────────────────────────────────────────────────

func (s *shiftService) Compute(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "compute", actor, func(ctx context.Context, sc *shiftScope) error {
		if err := requireState(sc.shift, "compute", model.ShiftRunning); err != nil {
			return err
		}
		return s.compute(ctx, sc)
	}))
}

// compute validates every line, refreshes prices and derived amounts, then
// rebuilds the summary from scratch. Running it twice gives the same rows.
func (s *shiftService) compute(ctx context.Context, sc *shiftScope) error {
	shift := sc.shift
	for _, l := range shift.GunSaleLines {
		if l.EmployeeID == nil {
			return validationf("Missing Employee in Gun sales")
		}
	}
	if err := s.snapshotDryStock(ctx, sc); err != nil {
		return err
	}
	if err := s.validateReceivedStock(ctx, sc); err != nil {
		return err
	}
	for _, line := range saleLines(shift) {
		if err := line.ComputePrice(ctx, sc, s.prices); err != nil {
			return err
		}
		line.ComputeAmount(sc)
		if err := line.Validate(sc); err != nil {
			return err
		}
	}
	if err := validateTankDips(sc); err != nil {
		return err
	}
	updateTankOperations(sc)

	shift.OpeningBalance = sc.station.ClosingCash
	if err := validateCash(sc); err != nil {
		return err
	}
	shift.SummaryLines = buildSummary(sc)
	return nil
}

// snapshotDryStock records the quantity on hand at the dry-stock location
// before each dry sale.
func (s *shiftService) snapshotDryStock(ctx context.Context, sc *shiftScope) error {
	loc := sc.station.DryStockLocationID
	for i := range sc.shift.DrySaleLines {
		l := &sc.shift.DrySaleLines[i]
		if loc == nil {
			return validationf("Station %s has no dry stock location", sc.station.Name)
		}
		qty, err := s.inventory.AvailableQuantity(ctx, l.ProductID, *loc)
		if err != nil {
			return err
		}
		l.BeforeQuantity = qty
	}
	return nil
}

func (s *shiftService) validateReceivedStock(ctx context.Context, sc *shiftScope) error {
	for _, t := range sc.shift.TransferLines {
		if floatCompare(t.Quantity, t.LoadedQuantity) > 0 {
			return validationf("Offloaded quantity cannot be greater than loaded quantity")
		}
		if t.Driver == "" || t.Truck == "" {
			return validationf("Some Receiving stock lines have no driver or truck")
		}
		src := sc.station.ReceivingSourceLocationID
		if src == nil {
			return validationf("Station %s has no receiving source location", sc.station.Name)
		}
		available, err := s.inventory.AvailableQuantity(ctx, t.ProductID, *src)
		if err != nil {
			return err
		}
		if available.LessThan(t.Quantity) {
			return validationf("You cannot receive more quantity than there is for product %s", sc.product(t.ProductID).Name)
		}
	}
	return nil
}

func validateCash(sc *shiftScope) error {
	shift := sc.shift
	available := shift.OpeningBalance.Add(shift.CashCollected(sc.station.UnbankedJournalID))
	if shift.CashBanked().GreaterThan(available) {
		return validationf("Cash banked cannot exceed total cash available!")
	}
	if shift.PettyCashSpent().GreaterThan(shift.PettyCashOpening.Add(shift.PettyCashReimbursed)) {
		return validationf("Petty cash spent cannot exceed total petty cash available!")
	}
	return nil
}

func (s *shiftService) Done(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "done", actor, func(ctx context.Context, sc *shiftScope) error {
		shift := sc.shift
		if err := requireState(shift, "close", model.ShiftRunning); err != nil {
			return err
		}
		if err := s.compute(ctx, sc); err != nil {
			return err
		}
		shift.ClosingWarning = ""
		if err := closeTankTakes(ctx, sc, actor, s.stations); err != nil {
			return err
		}
		if err := validateGunClosing(sc, actor); err != nil {
			return err
		}
		if err := validateSummaryClosing(sc, actor); err != nil {
			return err
		}
		shortfall, err := forecastShortfall(ctx, sc, s.inventory)
		if err != nil {
			return err
		}
		if shortfall != "" {
			log.Warn().Str("shift", shift.Name).Msg("forecast shortfall at close")
			shift.ClosingWarning = appendWarning(shift.ClosingWarning, shortfall)
		}
		shift.OpeningBalance = sc.station.ClosingCash
		shift.State = model.ShiftDone
		return nil
	}))
}

// validateGunClosing checks each gun's electronic/manual cross-check against
// the tank tolerance. Accountants close with a warning; others are refused.
func validateGunClosing(sc *shiftScope, actor Actor) error {
	for _, l := range sc.shift.GunSaleLines {
		tank := sc.station.TankByID(l.TankID)
		if tank == nil {
			continue
		}
		if floatCompare(l.ReadingDifference.Abs(), tank.AllowableGunVariance) <= 0 {
			continue
		}
		if !actor.IsStationAccountant() {
			return validationf("Manual and electronic gun difference cannot exceed allowable gun difference")
		}
		log.Warn().Str("shift", sc.shift.Name).Str("gun", sc.gunName(l.GunID)).Msg("gun difference override")
		sc.shift.ClosingWarning = appendWarning(sc.shift.ClosingWarning,
			fmt.Sprintf("Manual and electronic gun difference exceeds allowable gun difference (%s)", sc.gunName(l.GunID)))
	}
	return nil
}

// ── Approval ─────────────────────────────────────────────────────────────────

func (s *shiftService) RequestApproval(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "request_approval", actor, func(_ context.Context, sc *shiftScope) error {
		if err := requireState(sc.shift, "request approval for", model.ShiftDone); err != nil {
			return err
		}
		sc.shift.State = model.ShiftWaitingApproval
		return nil
	}))
}

func (s *shiftService) Approve(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "approve", actor, func(ctx context.Context, sc *shiftScope) error {
		if err := requireState(sc.shift, "approve", model.ShiftWaitingApproval); err != nil {
			return err
		}
		if !actor.IsStationAccountant() {
			return validationf("Only a station accountant can approve a shift")
		}
		if err := s.carryGunReadings(ctx, sc); err != nil {
			return err
		}
		sc.shift.OpeningBalance = sc.station.ClosingCash
		sc.shift.State = model.ShiftApproved
		return nil
	}))
}

func (s *shiftService) Reject(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "reject", actor, func(ctx context.Context, sc *shiftScope) error {
		if err := requireState(sc.shift, "reject", model.ShiftApproved); err != nil {
			return err
		}
		if !actor.IsStationAccountant() {
			return validationf("Only a station accountant can reject a shift")
		}
		if err := s.restoreGunReadings(ctx, sc); err != nil {
			return err
		}
		sc.shift.State = model.ShiftDone
		return nil
	}))
}

// carryGunReadings makes the shift's closing readings the guns' last
// readings. It runs at most once while the carry-forward stands.
func (s *shiftService) carryGunReadings(ctx context.Context, sc *shiftScope) error {
	if sc.shift.ReadingsCarried {
		return nil
	}
	for _, l := range sc.shift.GunSaleLines {
		if err := s.stations.UpdateGunReadings(ctx, l.GunID, l.ClosingReading, l.ManualClosingReading, l.CashClosingReading); err != nil {
			return err
		}
	}
	sc.shift.ReadingsCarried = true
	return nil
}

func (s *shiftService) restoreGunReadings(ctx context.Context, sc *shiftScope) error {
	if !sc.shift.ReadingsCarried {
		return nil
	}
	for _, l := range sc.shift.GunSaleLines {
		if err := s.stations.UpdateGunReadings(ctx, l.GunID, l.OpeningReading, l.ManualOpeningReading, l.CashOpeningReading); err != nil {
			return err
		}
	}
	sc.shift.ReadingsCarried = false
	return nil
}

// restoreTankVolumes undoes the dip write-back of a closed shift.
func (s *shiftService) restoreTankVolumes(ctx context.Context, sc *shiftScope) error {
	for _, take := range sc.shift.TankStockTakes {
		if err := s.stations.UpdateTankVolume(ctx, take.TankID, take.OpeningQty); err != nil {
			return err
		}
	}
	return nil
}

// ── Post ─────────────────────────────────────────────────────────────────────

func (s *shiftService) Post(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	sc, err := s.act(ctx, id, "post", actor, func(ctx context.Context, sc *shiftScope) error {
		if err := requireState(sc.shift, "post", model.ShiftDone, model.ShiftApproved); err != nil {
			return err
		}
		return s.post(ctx, sc)
	})
	if err != nil {
		return nil, err
	}
	if s.reports != nil {
		if err := s.reports.EnqueueShiftReport(ctx, sc.shift.ID); err != nil {
			log.Error().Err(err).Str("shift", sc.shift.Name).Msg("could not enqueue shift report")
		}
	}
	return toShiftResponse(sc), nil
}

// ── Cancel / Draft ───────────────────────────────────────────────────────────

func (s *shiftService) Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "cancel", actor, func(ctx context.Context, sc *shiftScope) error {
		shift := sc.shift
		if !model.IsActiveState(shift.State) {
			return invalidState("cancel", shift.State)
		}
		if shift.State == model.ShiftDone || shift.State == model.ShiftWaitingApproval {
			if err := s.restoreTankVolumes(ctx, sc); err != nil {
				return err
			}
		}
		if err := s.history.UnlinkShift(ctx, shift.ID); err != nil {
			return err
		}
		shift.State = model.ShiftCancelled
		return nil
	}))
}

// Draft brings a cancelled shift back to draft and reopens a done shift.
func (s *shiftService) Draft(ctx context.Context, id uuid.UUID, actor Actor) (*dto.ShiftResponse, error) {
	return s.respond(s.act(ctx, id, "draft", actor, func(ctx context.Context, sc *shiftScope) error {
		shift := sc.shift
		switch shift.State {
		case model.ShiftCancelled:
			open, err := s.shifts.FindActive(ctx, shift.StationID, shift.Date, shift.ID)
			if err != nil {
				return err
			}
			if open != nil {
				return validationf("You cannot restore a shift while another shift is open: Shift %s", open.Name)
			}
			shift.State = model.ShiftDraft
		case model.ShiftDone:
			if err := s.restoreTankVolumes(ctx, sc); err != nil {
				return err
			}
			shift.State = model.ShiftRunning
		default:
			return invalidState("reset", shift.State)
		}
		return nil
	}))
}

// ── History ──────────────────────────────────────────────────────────────────

func (s *shiftService) History(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]dto.ShiftHistoryResponse, error) {
	rows, err := s.history.ListByStation(ctx, stationID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShiftHistoryResponse, 0, len(rows))
	for _, h := range rows {
		r := dto.ShiftHistoryResponse{
			ID:     h.ID.String(),
			TypeID: h.TypeID.String(),
			Date:   h.Date.Format(dateLayout),
		}
		if h.ShiftID != nil {
			id := h.ShiftID.String()
			r.ShiftID = &id
		}
		out = append(out, r)
	}
	return out, nil
}

func requireState(shift *model.Shift, action string, allowed ...string) error {
	for _, st := range allowed {
		if shift.State == st {
			return nil
		}
	}
	return invalidState(action, shift.State)
}

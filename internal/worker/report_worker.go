package worker

// report_worker.go
// Processes QueueShiftReport: renders the daily summary PDF of a freshly
// posted shift and, when the station has a report address, queues the email.

import (
	"context"
	"encoding/json"
	"fmt"

	"fuelstation/internal/dto"
	"fuelstation/internal/repository"
	"fuelstation/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailQueue accepts report emails. A nil queue disables mailing.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// RenderPDF writes the summary to storagePath and returns the file path.
type RenderPDF func(summary *dto.DailySummaryResponse, storagePath string) (string, error)

type ReportWorker struct {
	reports     service.ReportService
	shifts      repository.ShiftRepository
	stations    repository.StationRepository
	emails      EmailQueue
	render      RenderPDF
	storagePath string
}

func NewReportWorker(reports service.ReportService, shifts repository.ShiftRepository, stations repository.StationRepository,
	emails EmailQueue, render RenderPDF, storagePath string) *ReportWorker {
	return &ReportWorker{
		reports:     reports,
		shifts:      shifts,
		stations:    stations,
		emails:      emails,
		render:      render,
		storagePath: storagePath,
	}
}

func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ShiftReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return nil
	}
	shiftID, err := uuid.Parse(payload.ShiftID)
	if err != nil {
		log.Error().Str("shift_id", payload.ShiftID).Msg("report_worker: invalid shift_id")
		return nil
	}

	summary, err := w.reports.DailySummary(ctx, shiftID)
	if err != nil {
		return fmt.Errorf("report_worker: daily summary: %w", err)
	}
	path, err := w.render(summary, w.storagePath)
	if err != nil {
		return fmt.Errorf("report_worker: render: %w", err)
	}
	log.Info().Str("shift", summary.ShiftName).Str("pdf", path).Msg("report_worker: daily summary generated")

	shift, err := w.shifts.FindByID(ctx, shiftID)
	if err != nil {
		return fmt.Errorf("report_worker: load shift: %w", err)
	}
	station, err := w.stations.FindByID(ctx, shift.StationID)
	if err != nil {
		return fmt.Errorf("report_worker: load station: %w", err)
	}
	if w.emails == nil || station.ReportEmail == nil || *station.ReportEmail == "" {
		return nil
	}
	job := EmailJobPayload{
		To:      []string{*station.ReportEmail},
		Subject: fmt.Sprintf("Daily summary %s (%s)", summary.ShiftName, summary.Date),
		Body:    fmt.Sprintf("Attached is the daily summary of shift %s at %s.", summary.ShiftName, summary.Station),
		PDFPath: path,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("shift", summary.ShiftName).Msg("report_worker: failed to enqueue email")
	}
	return nil
}

package worker

// email_worker.go
// Processes email jobs from QueueEmail: daily summary PDFs mailed to the
// station's report address.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	PDFPath string   `json:"pdf_path"`
}

// ReportMailer sends a report with attachments.
type ReportMailer interface {
	SendReport(to []string, subject, body string, attachments ...string) error
}

type EmailWorker struct {
	mailer ReportMailer
}

func NewEmailWorker(mailer ReportMailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends an email with the PDF report as attachment.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if len(payload.To) == 0 {
		log.Warn().Msg("email_worker: no recipients, skipping")
		return nil
	}

	var attachments []string
	if payload.PDFPath != "" {
		attachments = append(attachments, payload.PDFPath)
	}
	if err := w.mailer.SendReport(payload.To, payload.Subject, payload.Body, attachments...); err != nil {
		return fmt.Errorf("email_worker: send to %v: %w", payload.To, err)
	}
	log.Info().Strs("to", payload.To).Msg("email_worker: report sent")
	return nil
}

package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/smuti/greydb-api/internal/domain/jobscheduler"
)

// jobDispatchRow is the insert shape of job_dispatches. Only the columns of
// the event's phase are set; the upsert merges them into the existing row.
type jobDispatchRow struct {
	DispatchID      string     `db:"dispatch_id"`
	JobName         string     `db:"job_name"`
	JobPath         string     `db:"job_path"`
	Scope           string     `db:"scope"`
	Payload         *string    `db:"payload"`
	Summary         *string    `db:"summary"`
	Status          string     `db:"status"`
	Deliveries      int        `db:"deliveries"`
	SentAt          *time.Time `db:"sent_at"`
	FinishedAt      *time.Time `db:"finished_at"`
	LastError       *string    `db:"last_error"`
	SentTraceID     *string    `db:"sent_trace_id"`
	FinishedTraceID *string    `db:"finished_trace_id"`
	FinishedSpanID  *string    `db:"finished_span_id"`
}

func jobDispatchRowFromEvent(event jobscheduler.DispatchEvent, now time.Time) (jobDispatchRow, error) {
	row := jobDispatchRow{
		DispatchID: strings.TrimSpace(event.DispatchID),
		JobName:    defaultString(event.JobName, "unknown"),
		JobPath:    defaultString(event.JobPath, "/unknown"),
		Scope:      defaultString(event.Scope, "all"),
		Status:     string(event.Status),
	}
	if row.DispatchID == "" {
		return jobDispatchRow{}, fmt.Errorf("dispatch id is required")
	}

	at := now.UTC()
	if !event.OccurredAt.IsZero() {
		at = event.OccurredAt.UTC()
	}

	var err error
	if row.Payload, err = optionalJSON(event.Payload); err != nil {
		return jobDispatchRow{}, fmt.Errorf("marshal job dispatch payload: %w", err)
	}
	if row.Summary, err = optionalJSON(event.Summary); err != nil {
		return jobDispatchRow{}, fmt.Errorf("marshal job dispatch summary: %w", err)
	}

	switch event.Status {
	case jobscheduler.StatusSent:
		row.SentAt = &at
		row.SentTraceID = optionalString(event.TraceID)
	case jobscheduler.StatusCompleted, jobscheduler.StatusFailed:
		row.Deliveries = 1
		row.FinishedAt = &at
		row.FinishedTraceID = optionalString(event.TraceID)
		row.FinishedSpanID = optionalString(event.SpanID)
		if event.Status == jobscheduler.StatusFailed {
			row.LastError = optionalString(event.ErrorMessage)
		}
	default:
		return jobDispatchRow{}, fmt.Errorf("unknown dispatch status %q", event.Status)
	}
	return row, nil
}

func optionalJSON(value map[string]any) (*string, error) {
	if len(value) == 0 {
		return nil, nil
	}
	raw, err := sonic.Marshal(value)
	if err != nil {
		return nil, err
	}
	encoded := string(raw)
	return &encoded, nil
}

func defaultString(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}

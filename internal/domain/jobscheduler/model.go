package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

const (
	JobReconcile = "reconcile"
	JobBackfill  = "backfill"
)

// DispatchEvent is one state change of a queued or directly executed job run.
// Events sharing a DispatchID collapse into a single dispatch row.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	Scope        string
	Status       DispatchStatus
	Payload      map[string]any
	Summary      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

func (e DispatchEvent) Terminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusFailed
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/jobscheduler"
	qb "github.com/smuti/greydb-api/internal/platform/querybuilder"
)

// Terminal states are sticky: a redelivered "sent" event never reopens a
// dispatch, while every completed or failed run bumps deliveries.
const jobDispatchMergeSuffix = `ON CONFLICT (dispatch_id) DO UPDATE SET
    job_name = EXCLUDED.job_name,
    job_path = EXCLUDED.job_path,
    scope = EXCLUDED.scope,
    payload = COALESCE(EXCLUDED.payload, job_dispatches.payload),
    summary = COALESCE(EXCLUDED.summary, job_dispatches.summary),
    status = CASE
        WHEN EXCLUDED.status = 'sent' AND job_dispatches.status <> 'sent' THEN job_dispatches.status
        ELSE EXCLUDED.status
    END,
    deliveries = job_dispatches.deliveries + EXCLUDED.deliveries,
    sent_at = COALESCE(job_dispatches.sent_at, EXCLUDED.sent_at),
    sent_trace_id = COALESCE(job_dispatches.sent_trace_id, EXCLUDED.sent_trace_id),
    finished_at = COALESCE(EXCLUDED.finished_at, job_dispatches.finished_at),
    finished_trace_id = COALESCE(EXCLUDED.finished_trace_id, job_dispatches.finished_trace_id),
    finished_span_id = COALESCE(EXCLUDED.finished_span_id, job_dispatches.finished_span_id),
    last_error = CASE EXCLUDED.status
        WHEN 'failed' THEN EXCLUDED.last_error
        WHEN 'completed' THEN NULL
        ELSE job_dispatches.last_error
    END,
    updated_at = NOW()`

type JobDispatchRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db, now: time.Now}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	row, err := jobDispatchRowFromEvent(event, r.now())
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("job_dispatches", row, jobDispatchMergeSuffix)
	if err != nil {
		return fmt.Errorf("build job dispatch upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch %s (%s): %w", row.DispatchID, row.Status, err)
	}
	return nil
}

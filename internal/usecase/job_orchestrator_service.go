package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/smuti/greydb-api/internal/domain/jobscheduler"
	"github.com/smuti/greydb-api/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const (
	ReconcileJobPath = "/v1/internal/jobs/reconcile"
	BackfillJobPath  = "/v1/internal/jobs/backfill"

	defaultReconcileInterval = 15 * time.Minute
	minReconcileInterval     = time.Minute
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type JobOrchestratorConfig struct {
	ReconcileInterval time.Duration
}

type ReconcileJobInput struct {
	DispatchID       string `json:"dispatch_id" validate:"omitempty,max=200"`
	LeagueProviderID int64  `json:"league_id" validate:"omitempty,gt=0"`
	LimitPerLeague   int    `json:"limit_per_league" validate:"omitempty,min=1,max=200"`
	MaxFixtures      int    `json:"max_fixtures" validate:"omitempty,min=1,max=2000"`
	DryRun           bool   `json:"dry_run"`
	EnqueueNext      bool   `json:"enqueue_next"`
}

type ReconcileJobResult struct {
	DispatchID     string     `json:"dispatch_id,omitempty"`
	Scan           ScanResult `json:"scan"`
	NextDispatchID string     `json:"next_dispatch_id,omitempty"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
}

type BackfillJobInput struct {
	DispatchID string `json:"dispatch_id" validate:"omitempty,max=200"`
	BackfillInput
}

type matchScanner interface {
	Scan(ctx context.Context, input ScanInput) (ScanResult, error)
}

type matchBackfiller interface {
	Run(ctx context.Context, input BackfillInput) (BackfillResult, error)
}

// JobOrchestratorService runs queue-triggered pipeline jobs and keeps the
// reconcile loop alive by enqueueing its next run.
type JobOrchestratorService struct {
	scanner      matchScanner
	backfiller   matchBackfiller
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          JobOrchestratorConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	scanner *ReconciliationService,
	backfiller *BackfillService,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}
	if cfg.ReconcileInterval < minReconcileInterval {
		cfg.ReconcileInterval = minReconcileInterval
	}

	svc := &JobOrchestratorService{
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
	if scanner != nil {
		svc.scanner = scanner
	}
	if backfiller != nil {
		svc.backfiller = backfiller
	}
	return svc
}

func (s *JobOrchestratorService) RunReconcileJob(ctx context.Context, input ReconcileJobInput) (ReconcileJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunReconcileJob")
	defer span.End()

	if s.scanner == nil {
		return ReconcileJobResult{}, fmt.Errorf("%w: reconciliation scanner is not configured", ErrDependencyUnavailable)
	}

	scope := reconcileScope(input.LeagueProviderID)
	payload := reconcilePayload(input)
	result := ReconcileJobResult{DispatchID: strings.TrimSpace(input.DispatchID)}

	scan, err := s.scanner.Scan(ctx, ScanInput{
		LeagueProviderID: input.LeagueProviderID,
		LimitPerLeague:   input.LimitPerLeague,
		MaxFixtures:      input.MaxFixtures,
		DryRun:           input.DryRun,
	})
	result.Scan = scan
	if err != nil {
		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   result.DispatchID,
			JobName:      jobscheduler.JobReconcile,
			JobPath:      ReconcileJobPath,
			Scope:        scope,
			Status:       jobscheduler.StatusFailed,
			Payload:      payload,
			Summary:      scanSummary(scan),
			ErrorMessage: err.Error(),
		})
		return result, fmt.Errorf("run reconcile scan scope=%s: %w", scope, err)
	}
	s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: result.DispatchID,
		JobName:    jobscheduler.JobReconcile,
		JobPath:    ReconcileJobPath,
		Scope:      scope,
		Status:     jobscheduler.StatusCompleted,
		Payload:    payload,
		Summary:    scanSummary(scan),
	})

	if !input.EnqueueNext {
		return result, nil
	}

	next := input
	next.DispatchID = ""
	dispatchID, runAt, err := s.EnqueueReconcile(ctx, next, s.cfg.ReconcileInterval)
	if err != nil {
		return result, err
	}
	result.NextDispatchID = dispatchID
	result.NextRunAt = &runAt
	return result, nil
}

// EnqueueReconcile schedules one reconcile run after delay. Runs landing in the
// same interval bucket share a deduplication id.
func (s *JobOrchestratorService) EnqueueReconcile(ctx context.Context, input ReconcileJobInput, delay time.Duration) (string, time.Time, error) {
	if delay < 0 {
		delay = 0
	}
	now := s.now().UTC()
	runAt := now.Add(delay)
	scope := reconcileScope(input.LeagueProviderID)

	dedupID := dedupKey(jobscheduler.JobReconcile, scope, runAt, s.cfg.ReconcileInterval)
	input.DispatchID = dedupID
	input.EnqueueNext = true
	payload := reconcilePayload(input)

	if err := s.queue.Enqueue(ctx, ReconcileJobPath, input, delay, dedupID); err != nil {
		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   dedupID,
			JobName:      jobscheduler.JobReconcile,
			JobPath:      ReconcileJobPath,
			Scope:        scope,
			Status:       jobscheduler.StatusFailed,
			Payload:      payload,
			ErrorMessage: err.Error(),
			OccurredAt:   now,
		})
		return "", time.Time{}, fmt.Errorf("enqueue reconcile scope=%s: %w", scope, err)
	}
	s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dedupID,
		JobName:    jobscheduler.JobReconcile,
		JobPath:    ReconcileJobPath,
		Scope:      scope,
		Status:     jobscheduler.StatusSent,
		Payload:    payload,
		OccurredAt: now,
	})
	return dedupID, runAt, nil
}

func (s *JobOrchestratorService) RunBackfillJob(ctx context.Context, input BackfillJobInput) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunBackfillJob")
	defer span.End()

	if s.backfiller == nil {
		return BackfillResult{}, fmt.Errorf("%w: backfill is not configured", ErrDependencyUnavailable)
	}

	dispatchID := strings.TrimSpace(input.DispatchID)
	payload := map[string]any{
		"limit":       input.Limit,
		"max_workers": input.MaxWorkers,
		"match_ids":   input.MatchIDs,
	}

	result, err := s.backfiller.Run(ctx, input.BackfillInput)
	if err != nil {
		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   dispatchID,
			JobName:      jobscheduler.JobBackfill,
			JobPath:      BackfillJobPath,
			Scope:        "all",
			Status:       jobscheduler.StatusFailed,
			Payload:      payload,
			ErrorMessage: err.Error(),
		})
		return BackfillResult{}, fmt.Errorf("run backfill: %w", err)
	}
	s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    jobscheduler.JobBackfill,
		JobPath:    BackfillJobPath,
		Scope:      "all",
		Status:     jobscheduler.StatusCompleted,
		Payload:    payload,
		Summary: map[string]any{
			"candidates": result.Candidates,
			"succeeded":  result.Succeeded,
			"skipped":    result.Skipped,
			"failed":     result.Failed,
		},
	})
	return result, nil
}

func reconcileScope(leagueProviderID int64) string {
	if leagueProviderID <= 0 {
		return "all"
	}
	return "league-" + strconv.FormatInt(leagueProviderID, 10)
}

func reconcilePayload(input ReconcileJobInput) map[string]any {
	return map[string]any{
		"dispatch_id":      input.DispatchID,
		"league_id":        input.LeagueProviderID,
		"limit_per_league": input.LimitPerLeague,
		"max_fixtures":     input.MaxFixtures,
		"dry_run":          input.DryRun,
		"enqueue_next":     input.EnqueueNext,
	}
}

func scanSummary(scan ScanResult) map[string]any {
	return map[string]any{
		"league_count":    scan.LeagueCount,
		"total_checked":   scan.TotalChecked,
		"finished_count":  scan.FinishedCount,
		"processed_count": scan.ProcessedCount,
		"error_count":     scan.ErrorCount,
		"cap_reached":     scan.CapReached,
	}
}

func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	scope = sanitizeDedupSegment(scope)
	return prefix + "-" + scope + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *JobOrchestratorService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

const (
	defaultBackfillBatchSize  = 100
	maxBackfillBatchSize      = 1000
	defaultBackfillMaxWorkers = 1
	maxBackfillWorkers        = 4

	backfillStatusSuccess = "success"
	backfillStatusSkipped = "skipped"
	backfillStatusFailed  = "failed"
)

var errBackfillUnfinished = errors.New("match has not finished")

type BackfillConfig struct {
	BatchSize  int
	MaxWorkers int
}

type BackfillInput struct {
	Limit      int     `json:"limit" validate:"omitempty,min=1,max=1000"`
	MaxWorkers int     `json:"max_workers" validate:"omitempty,min=1,max=4"`
	MatchIDs   []int64 `json:"match_ids" validate:"omitempty,max=1000,dive,gt=0"`
}

type BackfillMatchResult struct {
	MatchID         int64    `json:"match_id"`
	ProviderMatchID int64    `json:"provider_match_id"`
	Status          string   `json:"status"`
	WrittenSets     []string `json:"written_sets,omitempty"`
	Message         string   `json:"message,omitempty"`
	DurationMs      int64    `json:"duration_ms"`
}

type BackfillResult struct {
	Candidates  int                   `json:"candidates"`
	WorkerCount int                   `json:"worker_count"`
	Succeeded   int                   `json:"succeeded"`
	Skipped     int                   `json:"skipped"`
	Failed      int                   `json:"failed"`
	Errors      []string              `json:"errors"`
	Matches     []BackfillMatchResult `json:"matches"`
}

// BackfillService re-runs the dependent writers for rooted matches from their
// stored raw payload, without touching the provider or the match root.
type BackfillService struct {
	matchRepo match.Repository
	parser    MatchPayloadParser
	upserter  *MatchUpsertService
	cfg       BackfillConfig
	logger    *logging.Logger
}

func NewBackfillService(
	matchRepo match.Repository,
	parser MatchPayloadParser,
	upserter *MatchUpsertService,
	cfg BackfillConfig,
	logger *logging.Logger,
) *BackfillService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBackfillBatchSize
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultBackfillMaxWorkers
	}
	return &BackfillService{
		matchRepo: matchRepo,
		parser:    parser,
		upserter:  upserter,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *BackfillService) Run(ctx context.Context, input BackfillInput) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.Run")
	defer span.End()

	candidates, err := s.loadCandidates(ctx, input)
	if err != nil {
		return BackfillResult{}, err
	}

	workerCount := normalizeBackfillWorkerCount(firstPositive(input.MaxWorkers, s.cfg.MaxWorkers), len(candidates))
	result := BackfillResult{
		Candidates:  len(candidates),
		WorkerCount: workerCount,
		Errors:      []string{},
		Matches:     make([]BackfillMatchResult, 0, len(candidates)),
	}
	if len(candidates) == 0 {
		return result, nil
	}

	results := make(chan BackfillMatchResult, len(candidates))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, candidate := range candidates {
		candidate := candidate
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := s.backfillIsolated(ctx, candidate)
			switch row.Status {
			case backfillStatusSuccess:
				successCount.Add(1)
			case backfillStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return BackfillResult{}, fmt.Errorf("submit backfill task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Matches = append(result.Matches, row)
	}
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].MatchID < result.Matches[j].MatchID
	})
	for _, row := range result.Matches {
		if row.Status == backfillStatusFailed {
			result.Errors = append(result.Errors, fmt.Sprintf("match %d: %s", row.MatchID, row.Message))
		}
	}

	result.Succeeded = int(successCount.Load())
	result.Failed = int(failedCount.Load())
	result.Skipped = int(skippedCount.Load())

	s.logger.InfoContext(ctx, "backfill finished",
		"candidates", result.Candidates,
		"workers", result.WorkerCount,
		"succeeded", result.Succeeded,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *BackfillService) loadCandidates(ctx context.Context, input BackfillInput) ([]match.Match, error) {
	if len(input.MatchIDs) == 0 {
		limit := input.Limit
		if limit <= 0 {
			limit = s.cfg.BatchSize
		}
		if limit > maxBackfillBatchSize {
			limit = maxBackfillBatchSize
		}
		items, err := s.matchRepo.ListBackfillCandidates(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list backfill candidates: %w", err)
		}
		return items, nil
	}

	seen := make(map[int64]struct{}, len(input.MatchIDs))
	items := make([]match.Match, 0, len(input.MatchIDs))
	for _, id := range input.MatchIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: match id must be > 0", ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		item, exists, err := s.matchRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get match id=%d: %w", id, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: match id=%d", ErrNotFound, id)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *BackfillService) backfillIsolated(ctx context.Context, item match.Match) BackfillMatchResult {
	start := time.Now()
	row := BackfillMatchResult{
		MatchID:         item.ID,
		ProviderMatchID: item.ProviderMatchID,
	}

	var (
		report DependentReport
		err    error
	)
	var catcher panics.Catcher
	catcher.Try(func() {
		report, err = s.backfillOne(ctx, item)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = fmt.Errorf("backfill panicked: %w", recovered.AsError())
	}
	row.DurationMs = time.Since(start).Milliseconds()
	s.markAttempted(ctx, item.ID, err)

	switch {
	case errors.Is(err, errBackfillUnfinished):
		row.Status = backfillStatusSkipped
		row.Message = err.Error()
	case err != nil:
		row.Status = backfillStatusFailed
		row.Message = err.Error()
		s.logger.WarnContext(ctx, "backfill match failed", "match_id", item.ID, "error", err)
	case len(report.Written) == 0:
		row.Status = backfillStatusSkipped
		row.Message = "no dependent set was missing"
	default:
		row.Status = backfillStatusSuccess
		row.WrittenSets = report.Written
	}
	return row
}

func (s *BackfillService) backfillOne(ctx context.Context, item match.Match) (DependentReport, error) {
	if len(item.RawPayload) == 0 {
		return DependentReport{}, fmt.Errorf("%w: match has no stored payload", ErrInvalidInput)
	}
	parsed, err := s.parser.Parse(item.RawPayload)
	if err != nil {
		return DependentReport{}, err
	}
	if !parsed.HasFinalScore() {
		return DependentReport{}, errBackfillUnfinished
	}
	return s.upserter.WriteDependents(ctx, DependentTarget{
		MatchID:    item.ID,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
	}, parsed)
}

// markAttempted takes the match out of the candidate queue unless the failure
// may succeed on a later run.
func (s *BackfillService) markAttempted(ctx context.Context, matchID int64, err error) {
	if err != nil && !permanentBackfillFailure(err) {
		return
	}
	if ctx.Err() != nil {
		return
	}
	if markErr := s.matchRepo.MarkBackfillAttempted(ctx, matchID); markErr != nil {
		s.logger.WarnContext(ctx, "mark backfill attempted failed", "match_id", matchID, "error", markErr)
	}
}

func permanentBackfillFailure(err error) bool {
	return errors.Is(err, errBackfillUnfinished) ||
		errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrInvalidInput)
}

func normalizeBackfillWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = defaultBackfillMaxWorkers
	}
	if value > maxBackfillWorkers {
		value = maxBackfillWorkers
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}

func firstPositive(values ...int) int {
	for _, value := range values {
		if value > 0 {
			return value
		}
	}
	return 0
}

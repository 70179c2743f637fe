package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/smuti/greydb-api/internal/domain/fixture"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	defaultScanFetchInterval  = 400 * time.Millisecond
	defaultScanLimitPerLeague = 20
	defaultScanMaxFixtures    = 200
	maxCheckFinishedIDs       = 50
)

type ReconciliationConfig struct {
	FetchInterval  time.Duration
	LimitPerLeague int
	MaxFixtures    int
}

type ScanInput struct {
	LeagueProviderID int64 `json:"league_id"`
	LimitPerLeague   int   `json:"limit_per_league"`
	MaxFixtures      int   `json:"max_fixtures"`
	DryRun           bool  `json:"dry_run"`
}

type FinishedMatchInfo struct {
	FixtureID       int64  `json:"fixture_id"`
	ProviderMatchID int64  `json:"match_id"`
	LeagueName      string `json:"league_name"`
	HomeTeam        string `json:"home_team"`
	AwayTeam        string `json:"away_team"`
	HomeScore       int    `json:"home_score"`
	AwayScore       int    `json:"away_score"`
	Processed       bool   `json:"processed"`
}

type ScanResult struct {
	DryRun          bool                `json:"dry_run"`
	LeagueCount     int                 `json:"league_count"`
	TotalChecked    int                 `json:"total_checked"`
	FinishedCount   int                 `json:"finished_count"`
	ProcessedCount  int                 `json:"processed_count"`
	ErrorCount      int                 `json:"error_count"`
	CapReached      bool                `json:"cap_reached"`
	Errors          []string            `json:"errors"`
	FinishedMatches []FinishedMatchInfo `json:"finished_matches"`
}

func (r *ScanResult) addError(format string, args ...any) {
	r.ErrorCount++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

type CheckedMatch struct {
	ProviderMatchID int64  `json:"match_id"`
	Finished        bool   `json:"finished"`
	HomeTeam        string `json:"home_team,omitempty"`
	AwayTeam        string `json:"away_team,omitempty"`
	HomeScore       *int   `json:"home_score"`
	AwayScore       *int   `json:"away_score"`
	Error           string `json:"error,omitempty"`
}

type MatchDataSummary struct {
	Fixtures fixture.Summary `json:"upcoming_matches"`
	Matches  match.Summary   `json:"matches"`
}

// MatchIngester persists a parsed payload.
type MatchIngester interface {
	IngestParsed(ctx context.Context, parsed ParsedMatch, raw []byte) (IngestResult, error)
}

type scanOutcome int

const (
	scanContinue scanOutcome = iota
	scanStopLeague
)

// ReconciliationService walks due fixtures league by league in kickoff order,
// ingests the finished ones and marks them processed. Provider fetches are
// strictly sequential and paced.
type ReconciliationService struct {
	fixtureRepo fixture.Repository
	matchRepo   match.Repository
	provider    MatchProvider
	parser      MatchPayloadParser
	ingester    MatchIngester
	pacer       *rate.Limiter
	cfg         ReconciliationConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewReconciliationService(
	fixtureRepo fixture.Repository,
	matchRepo match.Repository,
	provider MatchProvider,
	parser MatchPayloadParser,
	ingester MatchIngester,
	cfg ReconciliationConfig,
	logger *logging.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FetchInterval <= 0 {
		cfg.FetchInterval = defaultScanFetchInterval
	}
	if cfg.LimitPerLeague <= 0 {
		cfg.LimitPerLeague = defaultScanLimitPerLeague
	}
	if cfg.MaxFixtures <= 0 {
		cfg.MaxFixtures = defaultScanMaxFixtures
	}

	return &ReconciliationService{
		fixtureRepo: fixtureRepo,
		matchRepo:   matchRepo,
		provider:    provider,
		parser:      parser,
		ingester:    ingester,
		pacer:       rate.NewLimiter(rate.Every(cfg.FetchInterval), 1),
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ReconciliationService) Scan(ctx context.Context, input ScanInput) (ScanResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.Scan",
		attribute.Int64("fotmob.league_id", input.LeagueProviderID),
		attribute.Bool("scan.dry_run", input.DryRun),
	)
	defer span.End()

	input = s.normalizeScanInput(input)
	now := s.now().UTC()

	leagues, err := s.fixtureRepo.ListDueLeagues(ctx, now, input.LeagueProviderID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("list leagues with due fixtures: %w", err)
	}

	result := ScanResult{
		DryRun:          input.DryRun,
		LeagueCount:     len(leagues),
		Errors:          []string{},
		FinishedMatches: []FinishedMatchInfo{},
	}
	for _, item := range leagues {
		if result.TotalChecked >= input.MaxFixtures {
			result.CapReached = true
			break
		}

		fixtures, err := s.fixtureRepo.ListDueByLeague(ctx, item.LeagueID, now, input.LimitPerLeague)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.addError("list due fixtures for league %d: %v", item.LeagueProviderID, err)
			s.logger.WarnContext(ctx, "list due fixtures failed", "league_id", item.LeagueID, "error", err)
			continue
		}
		if err := s.scanLeague(ctx, item, fixtures, input, &result); err != nil {
			return result, err
		}
	}

	s.logger.InfoContext(ctx, "reconciliation scan finished",
		"dry_run", result.DryRun,
		"league_count", result.LeagueCount,
		"checked", result.TotalChecked,
		"finished", result.FinishedCount,
		"processed", result.ProcessedCount,
		"errors", result.ErrorCount,
		"cap_reached", result.CapReached,
	)
	return result, nil
}

func (s *ReconciliationService) scanLeague(ctx context.Context, item fixture.DueLeague, fixtures []fixture.Fixture, input ScanInput, result *ScanResult) error {
	for _, candidate := range fixtures {
		if result.TotalChecked >= input.MaxFixtures {
			result.CapReached = true
			return nil
		}
		if err := s.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("wait for provider pacing: %w", err)
		}
		result.TotalChecked++

		outcome, err := s.checkFixture(ctx, candidate, input.DryRun, result)
		if err != nil {
			return err
		}
		if outcome == scanStopLeague {
			s.logger.DebugContext(ctx, "league queue paused at unfinished fixture",
				"league_id", item.LeagueID,
				"fixture_id", candidate.ID,
				"provider_match_id", candidate.ProviderMatchID,
			)
			return nil
		}
	}
	return nil
}

// checkFixture returns an error only when the scan must stop; per-fixture
// failures are recorded on result.
func (s *ReconciliationService) checkFixture(ctx context.Context, item fixture.Fixture, dryRun bool, result *ScanResult) (scanOutcome, error) {
	raw, err := s.provider.FetchMatchDetails(ctx, item.ProviderMatchID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return scanContinue, ctxErr
		}
		result.addError("provider error for match %d: %v", item.ProviderMatchID, err)
		s.logFixture(ctx, item, "fetch_failed", err)
		return scanContinue, nil
	}

	parsed, err := s.parser.Parse(raw)
	if err != nil {
		result.addError("%s: %v", fixtureLabel(item), err)
		s.logFixture(ctx, item, "parse_failed", err)
		return scanContinue, nil
	}
	if !parsed.HasFinalScore() {
		s.logFixture(ctx, item, "not_finished", nil)
		return scanStopLeague, nil
	}

	result.FinishedCount++
	info := FinishedMatchInfo{
		FixtureID:       item.ID,
		ProviderMatchID: item.ProviderMatchID,
		LeagueName:      item.LeagueName,
		HomeTeam:        firstNonBlank(item.HomeTeam, parsed.HomeTeam.Name),
		AwayTeam:        firstNonBlank(item.AwayTeam, parsed.AwayTeam.Name),
		HomeScore:       *parsed.HomeScore,
		AwayScore:       *parsed.AwayScore,
	}
	if dryRun {
		result.FinishedMatches = append(result.FinishedMatches, info)
		s.logFixture(ctx, item, "finished_dry_run", nil)
		return scanContinue, nil
	}

	if err := s.ingestIsolated(ctx, parsed, raw); err != nil {
		result.addError("%s: %v", fixtureLabel(item), err)
		result.FinishedMatches = append(result.FinishedMatches, info)
		s.logFixture(ctx, item, "ingest_failed", err)
		return scanContinue, nil
	}
	if err := s.fixtureRepo.MarkProcessed(ctx, item.ID, s.now().UTC()); err != nil {
		result.addError("%s: mark processed: %v", fixtureLabel(item), err)
		result.FinishedMatches = append(result.FinishedMatches, info)
		s.logFixture(ctx, item, "mark_failed", err)
		return scanContinue, nil
	}

	result.ProcessedCount++
	info.Processed = true
	result.FinishedMatches = append(result.FinishedMatches, info)
	s.logFixture(ctx, item, "processed", nil)
	return scanContinue, nil
}

func (s *ReconciliationService) ingestIsolated(ctx context.Context, parsed ParsedMatch, raw []byte) error {
	var ingestErr error
	var catcher panics.Catcher
	catcher.Try(func() {
		_, ingestErr = s.ingester.IngestParsed(ctx, parsed, raw)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return fmt.Errorf("ingestion panicked: %w", recovered.AsError())
	}
	return ingestErr
}

func (s *ReconciliationService) logFixture(ctx context.Context, item fixture.Fixture, outcome string, err error) {
	args := []any{
		"fixture_id", item.ID,
		"provider_match_id", item.ProviderMatchID,
		"league_id", item.LeagueID,
		"outcome", outcome,
	}
	if err != nil {
		s.logger.WarnContext(ctx, "fixture reconciliation failed", append(args, "error", err)...)
		return
	}
	s.logger.DebugContext(ctx, "fixture reconciled", args...)
}

// CheckFinished asks the provider about arbitrary match ids without persisting anything.
func (s *ReconciliationService) CheckFinished(ctx context.Context, providerMatchIDs []int64) ([]CheckedMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.CheckFinished")
	defer span.End()

	if len(providerMatchIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one match id is required", ErrInvalidInput)
	}
	if len(providerMatchIDs) > maxCheckFinishedIDs {
		return nil, fmt.Errorf("%w: at most %d match ids per request", ErrInvalidInput, maxCheckFinishedIDs)
	}

	out := make([]CheckedMatch, 0, len(providerMatchIDs))
	for _, id := range providerMatchIDs {
		if err := s.pacer.Wait(ctx); err != nil {
			return out, fmt.Errorf("wait for provider pacing: %w", err)
		}

		row := CheckedMatch{ProviderMatchID: id}
		raw, err := s.provider.FetchMatchDetails(ctx, id)
		if err != nil {
			row.Error = err.Error()
			out = append(out, row)
			continue
		}
		parsed, err := s.parser.Parse(raw)
		if err != nil {
			row.Error = err.Error()
			out = append(out, row)
			continue
		}
		row.Finished = parsed.HasFinalScore()
		row.HomeTeam = parsed.HomeTeam.Name
		row.AwayTeam = parsed.AwayTeam.Name
		row.HomeScore = parsed.HomeScore
		row.AwayScore = parsed.AwayScore
		out = append(out, row)
	}
	return out, nil
}

func (s *ReconciliationService) ListUnprocessed(ctx context.Context, leagueProviderID int64, limit int) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.ListUnprocessed")
	defer span.End()

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	items, err := s.fixtureRepo.ListDue(ctx, s.now().UTC(), leagueProviderID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed fixtures: %w", err)
	}
	return items, nil
}

func (s *ReconciliationService) Summary(ctx context.Context) (MatchDataSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.Summary")
	defer span.End()

	fixtures, err := s.fixtureRepo.Summary(ctx, s.now().UTC())
	if err != nil {
		return MatchDataSummary{}, fmt.Errorf("summarize fixtures: %w", err)
	}
	matches, err := s.matchRepo.Summary(ctx)
	if err != nil {
		return MatchDataSummary{}, fmt.Errorf("summarize matches: %w", err)
	}
	return MatchDataSummary{Fixtures: fixtures, Matches: matches}, nil
}

func (s *ReconciliationService) normalizeScanInput(input ScanInput) ScanInput {
	if input.LimitPerLeague <= 0 {
		input.LimitPerLeague = s.cfg.LimitPerLeague
	}
	if input.MaxFixtures <= 0 {
		input.MaxFixtures = s.cfg.MaxFixtures
	}
	if input.LeagueProviderID < 0 {
		input.LeagueProviderID = 0
	}
	return input
}

func fixtureLabel(item fixture.Fixture) string {
	if label := item.Label(); label != "" {
		return label
	}
	return "match " + strconv.FormatInt(item.ProviderMatchID, 10)
}

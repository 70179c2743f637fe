package usecase

import (
	"context"
	"fmt"

	"github.com/smuti/greydb-api/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type IngestResult struct {
	MatchID         int64    `json:"match_id"`
	ProviderMatchID int64    `json:"provider_match_id"`
	Inserted        bool     `json:"inserted"`
	Finished        bool     `json:"finished"`
	HomeScore       *int     `json:"home_score"`
	AwayScore       *int     `json:"away_score"`
	WrittenSets     []string `json:"written_sets"`
	SkippedSets     []string `json:"skipped_sets"`
}

// MatchIngestionService drives one payload through parse, entity resolution,
// root upsert and the dependent writers.
type MatchIngestionService struct {
	provider MatchProvider
	parser   MatchPayloadParser
	resolver *EntityResolver
	upserter *MatchUpsertService
	logger   *logging.Logger
}

func NewMatchIngestionService(
	provider MatchProvider,
	parser MatchPayloadParser,
	resolver *EntityResolver,
	upserter *MatchUpsertService,
	logger *logging.Logger,
) *MatchIngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchIngestionService{
		provider: provider,
		parser:   parser,
		resolver: resolver,
		upserter: upserter,
		logger:   logger,
	}
}

func (s *MatchIngestionService) IngestByProviderID(ctx context.Context, providerMatchID int64) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchIngestionService.IngestByProviderID",
		attribute.Int64("fotmob.match_id", providerMatchID),
	)
	defer span.End()

	if providerMatchID <= 0 {
		return IngestResult{}, fmt.Errorf("%w: provider match id must be > 0", ErrInvalidInput)
	}
	if s.provider == nil {
		return IngestResult{}, fmt.Errorf("%w: match provider is not configured", ErrDependencyUnavailable)
	}

	raw, err := s.provider.FetchMatchDetails(ctx, providerMatchID)
	if err != nil {
		return IngestResult{}, err
	}
	return s.IngestPayload(ctx, raw)
}

func (s *MatchIngestionService) IngestPayload(ctx context.Context, raw []byte) (IngestResult, error) {
	parsed, err := s.parser.Parse(raw)
	if err != nil {
		return IngestResult{}, err
	}
	return s.IngestParsed(ctx, parsed, raw)
}

// IngestParsed persists an already parsed payload; raw is stored on the match
// root for later backfill. Dependent sets are written only once the payload
// carries a final score.
func (s *MatchIngestionService) IngestParsed(ctx context.Context, parsed ParsedMatch, raw []byte) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchIngestionService.IngestParsed")
	defer span.End()

	leagueID, err := s.resolver.ResolveLeague(ctx, parsed.League)
	if err != nil {
		return IngestResult{}, err
	}
	homeTeamID, err := s.resolver.ResolveTeam(ctx, parsed.HomeTeam, leagueID)
	if err != nil {
		return IngestResult{}, fmt.Errorf("resolve home team: %w", err)
	}
	awayTeamID, err := s.resolver.ResolveTeam(ctx, parsed.AwayTeam, leagueID)
	if err != nil {
		return IngestResult{}, fmt.Errorf("resolve away team: %w", err)
	}

	outcome, err := s.upserter.UpsertMatch(ctx, parsed, MatchRefs{
		LeagueID:   leagueID,
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
	}, raw)
	if err != nil {
		return IngestResult{}, err
	}

	// Dependent sets are write-once, so a live or pre-match payload only
	// refreshes the root.
	report := DependentReport{Written: []string{}, Skipped: []string{}}
	if parsed.HasFinalScore() {
		report, err = s.upserter.WriteDependents(ctx, DependentTarget{
			MatchID:    outcome.ID,
			HomeTeamID: homeTeamID,
			AwayTeamID: awayTeamID,
		}, parsed)
		if err != nil {
			return IngestResult{}, err
		}
	}

	s.logger.InfoContext(ctx, "match ingested",
		"provider_match_id", parsed.ProviderMatchID,
		"match_id", outcome.ID,
		"inserted", outcome.Inserted,
		"finished", parsed.Finished,
		"written_sets", len(report.Written),
	)

	return IngestResult{
		MatchID:         outcome.ID,
		ProviderMatchID: parsed.ProviderMatchID,
		Inserted:        outcome.Inserted,
		Finished:        parsed.Finished,
		HomeScore:       parsed.HomeScore,
		AwayScore:       parsed.AwayScore,
		WrittenSets:     report.Written,
		SkippedSets:     report.Skipped,
	}, nil
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/smuti/greydb-api/internal/domain/h2h"
	"github.com/smuti/greydb-api/internal/domain/lineup"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/domain/playerstats"
	"github.com/smuti/greydb-api/internal/domain/teamstats"
	"github.com/smuti/greydb-api/internal/platform/logging"
)

const (
	SetStats         = "stats"
	SetAdvancedStats = "advanced_stats"
	SetContext       = "context"
	SetFormations    = "formations"
	SetLineups       = "lineups"
	SetPlayerStats   = "player_stats"
	SetEvents        = "events"
	SetAvailability  = "availability"
	SetH2H           = "h2h"
)

// MatchRefs carries the internal ids a parsed match resolves to.
type MatchRefs struct {
	LeagueID   int64
	HomeTeamID int64
	AwayTeamID int64
}

// DependentTarget identifies the rooted match dependent sets are written for.
type DependentTarget struct {
	MatchID    int64
	HomeTeamID int64
	AwayTeamID int64
}

func (t DependentTarget) teamID(side match.Side) int64 {
	if side == match.SideAway {
		return t.AwayTeamID
	}
	return t.HomeTeamID
}

// DependentReport lists which sets were written and which were already present
// or had nothing to record.
type DependentReport struct {
	Written []string `json:"written"`
	Skipped []string `json:"skipped"`
}

type MatchUpsertService struct {
	matchRepo       match.Repository
	factsRepo       match.FactsRepository
	statsRepo       teamstats.Repository
	lineupRepo      lineup.Repository
	playerStatsRepo playerstats.Repository
	h2hRepo         h2h.Repository
	logger          *logging.Logger
	now             func() time.Time
}

func NewMatchUpsertService(
	matchRepo match.Repository,
	factsRepo match.FactsRepository,
	statsRepo teamstats.Repository,
	lineupRepo lineup.Repository,
	playerStatsRepo playerstats.Repository,
	h2hRepo h2h.Repository,
	logger *logging.Logger,
) *MatchUpsertService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchUpsertService{
		matchRepo:       matchRepo,
		factsRepo:       factsRepo,
		statsRepo:       statsRepo,
		lineupRepo:      lineupRepo,
		playerStatsRepo: playerStatsRepo,
		h2hRepo:         h2hRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// UpsertMatch stores the match root. A known provider match id only gets its
// score, finished flag and raw payload refreshed.
func (s *MatchUpsertService) UpsertMatch(ctx context.Context, parsed ParsedMatch, refs MatchRefs, raw []byte) (match.UpsertOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchUpsertService.UpsertMatch")
	defer span.End()

	if parsed.ProviderMatchID <= 0 {
		return match.UpsertOutcome{}, fmt.Errorf("%w: provider match id must be > 0", ErrInvalidInput)
	}
	if refs.LeagueID <= 0 || refs.HomeTeamID <= 0 || refs.AwayTeamID <= 0 {
		return match.UpsertOutcome{}, fmt.Errorf("%w: league and team ids are required", ErrInvalidInput)
	}

	outcome, err := s.matchRepo.Upsert(ctx, match.Match{
		ProviderMatchID: parsed.ProviderMatchID,
		LeagueID:        refs.LeagueID,
		HomeTeamID:      refs.HomeTeamID,
		AwayTeamID:      refs.AwayTeamID,
		Round:           parsed.Round,
		RoundName:       parsed.RoundName,
		MatchDate:       parsed.MatchDate,
		HomeScore:       parsed.HomeScore,
		AwayScore:       parsed.AwayScore,
		Finished:        parsed.Finished,
		RawPayload:      raw,
	})
	if err != nil {
		return match.UpsertOutcome{}, fmt.Errorf("upsert match provider_match_id=%d: %w", parsed.ProviderMatchID, err)
	}
	return outcome, nil
}

// WriteDependents runs every dependent writer in a fixed order and stops at the
// first failure. Sets already present are reported as skipped.
func (s *MatchUpsertService) WriteDependents(ctx context.Context, target DependentTarget, parsed ParsedMatch) (DependentReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchUpsertService.WriteDependents")
	defer span.End()

	if target.MatchID <= 0 {
		return DependentReport{}, fmt.Errorf("%w: match id must be > 0", ErrInvalidInput)
	}

	steps := []struct {
		name  string
		write func() (bool, error)
	}{
		{SetStats, func() (bool, error) { return s.WriteStats(ctx, target.MatchID, parsed.Stats) }},
		{SetAdvancedStats, func() (bool, error) { return s.WriteAdvancedStats(ctx, target.MatchID, parsed.AdvancedStats) }},
		{SetContext, func() (bool, error) { return s.WriteContext(ctx, target.MatchID, parsed.Context) }},
		{SetFormations, func() (bool, error) { return s.WriteFormations(ctx, target.MatchID, parsed.Formations) }},
		{SetLineups, func() (bool, error) { return s.WriteLineups(ctx, target, parsed.Lineups) }},
		{SetPlayerStats, func() (bool, error) { return s.WritePlayerStats(ctx, target, parsed.PlayerStats) }},
		{SetEvents, func() (bool, error) { return s.WriteEvents(ctx, target, parsed.Events) }},
		{SetAvailability, func() (bool, error) { return s.WriteAvailability(ctx, target, parsed.Availability) }},
		{SetH2H, func() (bool, error) { return s.WriteH2H(ctx, target, parsed.H2H) }},
	}

	report := DependentReport{
		Written: make([]string, 0, len(steps)),
		Skipped: make([]string, 0, len(steps)),
	}
	for _, step := range steps {
		written, err := step.write()
		if err != nil {
			return report, err
		}
		if written {
			report.Written = append(report.Written, step.name)
		} else {
			report.Skipped = append(report.Skipped, step.name)
		}
	}

	s.logger.DebugContext(ctx, "dependent sets written",
		"match_id", target.MatchID,
		"written", report.Written,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (s *MatchUpsertService) WriteStats(ctx context.Context, matchID int64, item *teamstats.MatchStats) (bool, error) {
	if item == nil {
		return false, nil
	}
	row := *item
	row.MatchID = matchID
	written, err := s.statsRepo.InsertMatchStats(ctx, row)
	if err != nil {
		return false, fmt.Errorf("write stats match_id=%d: %w", matchID, err)
	}
	return written, nil
}

func (s *MatchUpsertService) WriteAdvancedStats(ctx context.Context, matchID int64, item *teamstats.AdvancedStats) (bool, error) {
	if item == nil {
		return false, nil
	}
	row := *item
	row.MatchID = matchID
	written, err := s.statsRepo.InsertAdvancedStats(ctx, row)
	if err != nil {
		return false, fmt.Errorf("write advanced stats match_id=%d: %w", matchID, err)
	}
	return written, nil
}

func (s *MatchUpsertService) WriteContext(ctx context.Context, matchID int64, item *match.Context) (bool, error) {
	if item == nil {
		return false, nil
	}
	row := *item
	row.MatchID = matchID
	written, err := s.factsRepo.InsertContext(ctx, row)
	if err != nil {
		return false, fmt.Errorf("write context match_id=%d: %w", matchID, err)
	}
	return written, nil
}

func (s *MatchUpsertService) WriteFormations(ctx context.Context, matchID int64, item *match.Formations) (bool, error) {
	if item == nil {
		return false, nil
	}
	row := *item
	row.MatchID = matchID
	written, err := s.factsRepo.InsertFormations(ctx, row)
	if err != nil {
		return false, fmt.Errorf("write formations match_id=%d: %w", matchID, err)
	}
	return written, nil
}

func (s *MatchUpsertService) WriteLineups(ctx context.Context, target DependentTarget, items []lineup.Player) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}
	rows := make([]lineup.Player, 0, len(items))
	for _, item := range items {
		item.MatchID = target.MatchID
		item.TeamID = target.teamID(item.Side)
		rows = append(rows, item)
	}
	written, err := s.lineupRepo.InsertPlayers(ctx, target.MatchID, rows)
	if err != nil {
		return false, fmt.Errorf("write lineups match_id=%d: %w", target.MatchID, err)
	}
	return written, nil
}

func (s *MatchUpsertService) WritePlayerStats(ctx context.Context, target DependentTarget, items []playerstats.MatchStat) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}
	rows := make([]playerstats.MatchStat, 0, len(items))
	for _, item := range items {
		item.MatchID = target.MatchID
		item.TeamID = target.teamID(item.Side)
		rows = append(rows, item)
	}
	written, err := s.playerStatsRepo.InsertMatchStats(ctx, target.MatchID, rows)
	if err != nil {
		return false, fmt.Errorf("write player stats match_id=%d: %w", target.MatchID, err)
	}
	return written, nil
}

func (s *MatchUpsertService) WriteEvents(ctx context.Context, target DependentTarget, items []match.Event) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}
	rows := make([]match.Event, 0, len(items))
	for _, item := range items {
		item.MatchID = target.MatchID
		item.TeamID = target.teamID(item.Side)
		rows = append(rows, item)
	}
	written, err := s.factsRepo.InsertEvents(ctx, target.MatchID, rows)
	if err != nil {
		return false, fmt.Errorf("write events match_id=%d: %w", target.MatchID, err)
	}
	return written, nil
}

func (s *MatchUpsertService) WriteAvailability(ctx context.Context, target DependentTarget, items []lineup.Availability) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}
	rows := make([]lineup.Availability, 0, len(items))
	for _, item := range items {
		item.MatchID = target.MatchID
		item.TeamID = target.teamID(item.Side)
		rows = append(rows, item)
	}
	written, err := s.lineupRepo.InsertAvailability(ctx, target.MatchID, rows)
	if err != nil {
		return false, fmt.Errorf("write availability match_id=%d: %w", target.MatchID, err)
	}
	return written, nil
}

// WriteH2H stores the head-to-head snapshot for the unordered team pair once.
// Later matches between the same pair leave the first snapshot untouched.
func (s *MatchUpsertService) WriteH2H(ctx context.Context, target DependentTarget, item *ParsedH2H) (bool, error) {
	if item == nil || item.Total() == 0 {
		return false, nil
	}
	if target.HomeTeamID <= 0 || target.AwayTeamID <= 0 || target.HomeTeamID == target.AwayTeamID {
		return false, nil
	}

	stat := h2h.Oriented(
		target.HomeTeamID,
		target.AwayTeamID,
		item.Total(),
		item.HomeWins,
		item.Draws,
		item.AwayWins,
		item.AvgHomeGoals,
		item.AvgAwayGoals,
	)
	stat.SourceMatchID = target.MatchID
	stat.ComputedAt = s.now().UTC()

	written, err := s.h2hRepo.InsertIfAbsent(ctx, stat)
	if err != nil {
		return false, fmt.Errorf("write h2h teams=%d,%d: %w", stat.TeamLowID, stat.TeamHighID, err)
	}
	return written, nil
}

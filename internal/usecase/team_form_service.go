package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/smuti/greydb-api/internal/domain/h2h"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/domain/team"
	"github.com/smuti/greydb-api/internal/platform/logging"
)

const (
	defaultFormLimit = 5
	maxFormLimit     = 20
	defaultH2HLimit  = 10
	maxH2HLimit      = 50
)

type TeamFormInput struct {
	TeamProviderID   int64
	LeagueProviderID int64
	Venue            string
	Limit            int
}

type FormMatch struct {
	MatchID            int64     `json:"match_id"`
	ProviderMatchID    int64     `json:"provider_match_id"`
	MatchDate          time.Time `json:"match_date"`
	Venue              string    `json:"venue"`
	OpponentProviderID int64     `json:"opponent_id"`
	Opponent           string    `json:"opponent"`
	GoalsFor           int       `json:"goals_for"`
	GoalsAgainst       int       `json:"goals_against"`
	Result             string    `json:"result"`
	LeagueName         string    `json:"league_name"`
}

type FormStats struct {
	Played          int     `json:"played"`
	Wins            int     `json:"wins"`
	Draws           int     `json:"draws"`
	Losses          int     `json:"losses"`
	Points          int     `json:"points"`
	GoalsFor        int     `json:"goals_for"`
	GoalsAgainst    int     `json:"goals_against"`
	GoalDiff        int     `json:"goal_diff"`
	AvgGoalsFor     float64 `json:"avg_goals_for"`
	AvgGoalsAgainst float64 `json:"avg_goals_against"`
	AvgTotalGoals   float64 `json:"avg_total_goals"`
	BTTSPct         float64 `json:"btts_pct"`
	FormString      string  `json:"form_string"`
}

type TeamForm struct {
	TeamProviderID int64       `json:"team_id"`
	TeamName       string      `json:"team_name,omitempty"`
	Venue          string      `json:"venue,omitempty"`
	Matches        []FormMatch `json:"matches"`
	Stats          *FormStats  `json:"stats"`
}

type HeadToHeadInput struct {
	Team1ProviderID int64
	Team2ProviderID int64
	HomeOnly        bool
	Limit           int
}

type HeadToHeadMatch struct {
	MatchID         int64     `json:"match_id"`
	ProviderMatchID int64     `json:"provider_match_id"`
	MatchDate       time.Time `json:"match_date"`
	HomeTeam        string    `json:"home_team"`
	AwayTeam        string    `json:"away_team"`
	HomeScore       int       `json:"home_score"`
	AwayScore       int       `json:"away_score"`
	Result          string    `json:"result"`
	LeagueName      string    `json:"league_name"`
	Season          string    `json:"season,omitempty"`
}

type HeadToHeadStats struct {
	TotalMatches  int     `json:"total_matches"`
	Team1Wins     int     `json:"team1_wins"`
	Team2Wins     int     `json:"team2_wins"`
	Draws         int     `json:"draws"`
	Team1Goals    int     `json:"team1_goals"`
	Team2Goals    int     `json:"team2_goals"`
	AvgTotalGoals float64 `json:"avg_total_goals"`
	BTTSPct       float64 `json:"btts_pct"`
}

// HeadToHeadSnapshot is the stored provider summary seen from team1.
type HeadToHeadSnapshot struct {
	TotalMatches  int       `json:"total_matches"`
	Team1Wins     int       `json:"team1_wins"`
	Team2Wins     int       `json:"team2_wins"`
	Draws         int       `json:"draws"`
	AvgGoals1     float64   `json:"avg_goals_team1"`
	AvgGoals2     float64   `json:"avg_goals_team2"`
	SourceMatchID int64     `json:"source_match_id"`
	ComputedAt    time.Time `json:"computed_at"`
}

type HeadToHead struct {
	Team1ProviderID int64               `json:"team1_id"`
	Team2ProviderID int64               `json:"team2_id"`
	Matches         []HeadToHeadMatch   `json:"matches"`
	Stats           *HeadToHeadStats    `json:"stats"`
	Snapshot        *HeadToHeadSnapshot `json:"snapshot,omitempty"`
}

// TeamFormService serves recent-form and head-to-head read models over
// finished matches.
type TeamFormService struct {
	matchRepo match.Repository
	teamRepo  team.Repository
	h2hRepo   h2h.Repository
	logger    *logging.Logger
}

func NewTeamFormService(matchRepo match.Repository, teamRepo team.Repository, h2hRepo h2h.Repository, logger *logging.Logger) *TeamFormService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamFormService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		h2hRepo:   h2hRepo,
		logger:    logger,
	}
}

func (s *TeamFormService) Form(ctx context.Context, input TeamFormInput) (TeamForm, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamFormService.Form")
	defer span.End()

	if input.TeamProviderID <= 0 {
		return TeamForm{}, fmt.Errorf("%w: team id must be > 0", ErrInvalidInput)
	}
	venue, err := parseVenue(input.Venue)
	if err != nil {
		return TeamForm{}, err
	}
	limit := clampLimit(input.Limit, defaultFormLimit, maxFormLimit)

	results, err := s.matchRepo.ListTeamResults(ctx, match.ResultQuery{
		TeamProviderID:   input.TeamProviderID,
		LeagueProviderID: input.LeagueProviderID,
		Venue:            venue,
		Limit:            limit,
	})
	if err != nil {
		return TeamForm{}, fmt.Errorf("list team results team_id=%d: %w", input.TeamProviderID, err)
	}

	out := TeamForm{
		TeamProviderID: input.TeamProviderID,
		Venue:          string(venue),
		Matches:        make([]FormMatch, 0, len(results)),
	}
	if item, exists, err := s.teamRepo.GetByProviderID(ctx, input.TeamProviderID); err != nil {
		s.logger.WarnContext(ctx, "lookup team name failed", "team_id", input.TeamProviderID, "error", err)
	} else if exists {
		out.TeamName = item.Name
	}

	for _, item := range results {
		out.Matches = append(out.Matches, formMatchFor(input.TeamProviderID, item))
	}
	out.Stats = ComputeFormStats(out.Matches)
	return out, nil
}

func (s *TeamFormService) HeadToHead(ctx context.Context, input HeadToHeadInput) (HeadToHead, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamFormService.HeadToHead")
	defer span.End()

	if input.Team1ProviderID <= 0 || input.Team2ProviderID <= 0 {
		return HeadToHead{}, fmt.Errorf("%w: both team ids must be > 0", ErrInvalidInput)
	}
	if input.Team1ProviderID == input.Team2ProviderID {
		return HeadToHead{}, fmt.Errorf("%w: team ids must differ", ErrInvalidInput)
	}
	limit := clampLimit(input.Limit, defaultH2HLimit, maxH2HLimit)

	results, err := s.matchRepo.ListHeadToHead(ctx, match.HeadToHeadQuery{
		TeamProviderID:     input.Team1ProviderID,
		OpponentProviderID: input.Team2ProviderID,
		HomeOnly:           input.HomeOnly,
		Limit:              limit,
	})
	if err != nil {
		return HeadToHead{}, fmt.Errorf("list head to head teams=%d,%d: %w", input.Team1ProviderID, input.Team2ProviderID, err)
	}

	out := HeadToHead{
		Team1ProviderID: input.Team1ProviderID,
		Team2ProviderID: input.Team2ProviderID,
		Matches:         make([]HeadToHeadMatch, 0, len(results)),
	}
	for _, item := range results {
		out.Matches = append(out.Matches, HeadToHeadMatch{
			MatchID:         item.MatchID,
			ProviderMatchID: item.ProviderMatchID,
			MatchDate:       item.MatchDate,
			HomeTeam:        item.HomeTeamName,
			AwayTeam:        item.AwayTeamName,
			HomeScore:       item.HomeScore,
			AwayScore:       item.AwayScore,
			Result:          venueResult(item.HomeScore, item.AwayScore),
			LeagueName:      item.LeagueName,
			Season:          item.Season,
		})
	}
	out.Stats = ComputeHeadToHeadStats(input.Team1ProviderID, results)

	snapshot, err := s.loadSnapshot(ctx, input.Team1ProviderID, input.Team2ProviderID)
	if err != nil {
		return HeadToHead{}, err
	}
	out.Snapshot = snapshot
	return out, nil
}

func (s *TeamFormService) loadSnapshot(ctx context.Context, team1ProviderID, team2ProviderID int64) (*HeadToHeadSnapshot, error) {
	if s.h2hRepo == nil {
		return nil, nil
	}
	team1, exists, err := s.teamRepo.GetByProviderID(ctx, team1ProviderID)
	if err != nil {
		return nil, fmt.Errorf("get team provider_id=%d: %w", team1ProviderID, err)
	}
	if !exists {
		return nil, nil
	}
	team2, exists, err := s.teamRepo.GetByProviderID(ctx, team2ProviderID)
	if err != nil {
		return nil, fmt.Errorf("get team provider_id=%d: %w", team2ProviderID, err)
	}
	if !exists {
		return nil, nil
	}

	stat, exists, err := s.h2hRepo.GetByPair(ctx, team1.ID, team2.ID)
	if err != nil {
		return nil, fmt.Errorf("get h2h snapshot teams=%d,%d: %w", team1.ID, team2.ID, err)
	}
	if !exists {
		return nil, nil
	}

	out := &HeadToHeadSnapshot{
		TotalMatches:  stat.TotalMatches,
		Draws:         stat.Draws,
		SourceMatchID: stat.SourceMatchID,
		ComputedAt:    stat.ComputedAt,
	}
	if team1.ID == stat.TeamLowID {
		out.Team1Wins, out.Team2Wins = stat.TeamLowWins, stat.TeamHighWins
		out.AvgGoals1, out.AvgGoals2 = stat.AvgGoalsLow, stat.AvgGoalsHigh
	} else {
		out.Team1Wins, out.Team2Wins = stat.TeamHighWins, stat.TeamLowWins
		out.AvgGoals1, out.AvgGoals2 = stat.AvgGoalsHigh, stat.AvgGoalsLow
	}
	return out, nil
}

// ComputeFormStats aggregates matches already seen from one team. It returns nil
// for an empty list.
func ComputeFormStats(matches []FormMatch) *FormStats {
	if len(matches) == 0 {
		return nil
	}

	stats := &FormStats{Played: len(matches)}
	var form strings.Builder
	btts := 0
	for _, item := range matches {
		switch item.Result {
		case "W":
			stats.Wins++
			stats.Points += 3
		case "D":
			stats.Draws++
			stats.Points++
		default:
			stats.Losses++
		}
		stats.GoalsFor += item.GoalsFor
		stats.GoalsAgainst += item.GoalsAgainst
		if item.GoalsFor > 0 && item.GoalsAgainst > 0 {
			btts++
		}
		form.WriteString(item.Result)
	}

	played := float64(stats.Played)
	stats.GoalDiff = stats.GoalsFor - stats.GoalsAgainst
	stats.AvgGoalsFor = roundTo(float64(stats.GoalsFor)/played, 2)
	stats.AvgGoalsAgainst = roundTo(float64(stats.GoalsAgainst)/played, 2)
	stats.AvgTotalGoals = roundTo(float64(stats.GoalsFor+stats.GoalsAgainst)/played, 2)
	stats.BTTSPct = roundTo(float64(btts)/played*100, 1)
	stats.FormString = form.String()
	return stats
}

// ComputeHeadToHeadStats aggregates meetings from team1's point of view. It
// returns nil for an empty list.
func ComputeHeadToHeadStats(team1ProviderID int64, results []match.Result) *HeadToHeadStats {
	if len(results) == 0 {
		return nil
	}

	stats := &HeadToHeadStats{TotalMatches: len(results)}
	totalGoals := 0
	btts := 0
	for _, item := range results {
		team1Goals, team2Goals := item.HomeScore, item.AwayScore
		if item.HomeTeamProviderID != team1ProviderID {
			team1Goals, team2Goals = item.AwayScore, item.HomeScore
		}
		stats.Team1Goals += team1Goals
		stats.Team2Goals += team2Goals
		switch {
		case team1Goals > team2Goals:
			stats.Team1Wins++
		case team1Goals < team2Goals:
			stats.Team2Wins++
		default:
			stats.Draws++
		}
		totalGoals += item.HomeScore + item.AwayScore
		if item.HomeScore > 0 && item.AwayScore > 0 {
			btts++
		}
	}

	total := float64(stats.TotalMatches)
	stats.AvgTotalGoals = roundTo(float64(totalGoals)/total, 2)
	stats.BTTSPct = roundTo(float64(btts)/total*100, 1)
	return stats
}

func formMatchFor(teamProviderID int64, item match.Result) FormMatch {
	out := FormMatch{
		MatchID:         item.MatchID,
		ProviderMatchID: item.ProviderMatchID,
		MatchDate:       item.MatchDate,
		LeagueName:      item.LeagueName,
	}
	if item.HomeTeamProviderID == teamProviderID {
		out.Venue = string(match.VenueHome)
		out.OpponentProviderID = item.AwayTeamProviderID
		out.Opponent = item.AwayTeamName
		out.GoalsFor, out.GoalsAgainst = item.HomeScore, item.AwayScore
	} else {
		out.Venue = string(match.VenueAway)
		out.OpponentProviderID = item.HomeTeamProviderID
		out.Opponent = item.HomeTeamName
		out.GoalsFor, out.GoalsAgainst = item.AwayScore, item.HomeScore
	}
	switch {
	case out.GoalsFor > out.GoalsAgainst:
		out.Result = "W"
	case out.GoalsFor < out.GoalsAgainst:
		out.Result = "L"
	default:
		out.Result = "D"
	}
	return out
}

// venueResult labels a score as home win, away win or draw.
func venueResult(homeScore, awayScore int) string {
	switch {
	case homeScore > awayScore:
		return "H"
	case homeScore < awayScore:
		return "A"
	default:
		return "D"
	}
}

func parseVenue(value string) (match.Venue, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return match.VenueAny, nil
	case "home":
		return match.VenueHome, nil
	case "away":
		return match.VenueAway, nil
	default:
		return "", fmt.Errorf("%w: venue must be home, away or all", ErrInvalidInput)
	}
}

func clampLimit(value, fallback, max int) int {
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

package usecase

import (
	"context"
	"time"

	"github.com/smuti/greydb-api/internal/domain/lineup"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/domain/playerstats"
	"github.com/smuti/greydb-api/internal/domain/teamstats"
)

// MatchProvider fetches raw matchDetails documents. Implementations do not retry;
// callers pace requests.
type MatchProvider interface {
	FetchMatchDetails(ctx context.Context, providerMatchID int64) ([]byte, error)
}

// MatchPayloadParser converts a raw document into its normalized sections.
type MatchPayloadParser interface {
	Parse(raw []byte) (ParsedMatch, error)
}

type ExternalLeague struct {
	ProviderID  int64
	Name        string
	CountryCode string
	Season      string
}

type ExternalTeam struct {
	ProviderID int64
	Name       string
	ShortName  string
}

// ParsedH2H is the provider head-to-head summary seen from the home side.
type ParsedH2H struct {
	HomeWins     int
	Draws        int
	AwayWins     int
	AvgHomeGoals float64
	AvgAwayGoals float64
}

func (h ParsedH2H) Total() int {
	return h.HomeWins + h.Draws + h.AwayWins
}

// ParsedMatch is one matchDetails document split per sub-domain. Nil or empty
// sections mean the payload had nothing to record for them. Dependent rows carry
// a Side; match and team ids are filled in by the upsert engine.
type ParsedMatch struct {
	ProviderMatchID int64
	League          ExternalLeague
	HomeTeam        ExternalTeam
	AwayTeam        ExternalTeam
	Round           int
	RoundName       string
	MatchDate       *time.Time
	HomeScore       *int
	AwayScore       *int
	Finished        bool

	Stats         *teamstats.MatchStats
	AdvancedStats *teamstats.AdvancedStats
	Context       *match.Context
	Formations    *match.Formations
	Lineups       []lineup.Player
	Events        []match.Event
	Availability  []lineup.Availability
	PlayerStats   []playerstats.MatchStat
	H2H           *ParsedH2H
}

// HasFinalScore reports whether the provider marks the match finished with both scores.
func (p ParsedMatch) HasFinalScore() bool {
	return p.Finished && p.HomeScore != nil && p.AwayScore != nil
}

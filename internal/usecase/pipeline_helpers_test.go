package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/smuti/greydb-api/internal/domain/fixture"
	"github.com/smuti/greydb-api/internal/domain/lineup"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/domain/playerstats"
	"github.com/smuti/greydb-api/internal/domain/teamstats"
	"github.com/smuti/greydb-api/internal/infrastructure/repository/memory"
)

var errStubProvider = errors.New("stub provider failure")

// stubProvider serves payloads keyed by provider match id. A payload is the
// decimal id itself; stubParser maps it back to a ParsedMatch.
type stubProvider struct {
	mu      sync.Mutex
	failing map[int64]error
	calls   []int64
}

func newStubProvider() *stubProvider {
	return &stubProvider{failing: make(map[int64]error)}
}

func (p *stubProvider) FetchMatchDetails(_ context.Context, providerMatchID int64) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, providerMatchID)
	if err, ok := p.failing[providerMatchID]; ok {
		return nil, err
	}
	return []byte(strconv.FormatInt(providerMatchID, 10)), nil
}

func (p *stubProvider) fetched() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.calls...)
}

type stubParser struct {
	mu    sync.Mutex
	items map[string]ParsedMatch
}

func newStubParser() *stubParser {
	return &stubParser{items: make(map[string]ParsedMatch)}
}

func (p *stubParser) put(item ParsedMatch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[strconv.FormatInt(item.ProviderMatchID, 10)] = item
}

func (p *stubParser) Parse(raw []byte) (ParsedMatch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, ok := p.items[string(raw)]
	if !ok {
		return ParsedMatch{}, ErrMalformedPayload
	}
	return item, nil
}

type testPipeline struct {
	store       *memory.Store
	leagues     *memory.LeagueRepository
	teams       *memory.TeamRepository
	matches     *memory.MatchRepository
	facts       *memory.FactsRepository
	stats       *memory.TeamStatsRepository
	lineups     *memory.LineupRepository
	playerStats *memory.PlayerStatsRepository
	h2h         *memory.H2HRepository
	fixtures    *memory.FixtureRepository
	dispatches  *memory.JobDispatchRepository

	provider *stubProvider
	parser   *stubParser

	resolver  *EntityResolver
	upserter  *MatchUpsertService
	ingestion *MatchIngestionService
	scanner   *ReconciliationService
	backfill  *BackfillService
}

func newTestPipeline() *testPipeline {
	store := memory.NewStore()
	p := &testPipeline{
		store:       store,
		leagues:     memory.NewLeagueRepository(store),
		teams:       memory.NewTeamRepository(store),
		matches:     memory.NewMatchRepository(store),
		facts:       memory.NewFactsRepository(store),
		stats:       memory.NewTeamStatsRepository(store),
		lineups:     memory.NewLineupRepository(store),
		playerStats: memory.NewPlayerStatsRepository(store),
		h2h:         memory.NewH2HRepository(store),
		fixtures:    memory.NewFixtureRepository(store),
		dispatches:  memory.NewJobDispatchRepository(),
		provider:    newStubProvider(),
		parser:      newStubParser(),
	}

	p.resolver = NewEntityResolver(p.leagues, p.teams, "", nil)
	p.upserter = NewMatchUpsertService(p.matches, p.facts, p.stats, p.lineups, p.playerStats, p.h2h, nil)
	p.ingestion = NewMatchIngestionService(p.provider, p.parser, p.resolver, p.upserter, nil)
	p.scanner = NewReconciliationService(p.fixtures, p.matches, p.provider, p.parser, p.ingestion, ReconciliationConfig{
		FetchInterval: time.Millisecond,
	}, nil)
	p.backfill = NewBackfillService(p.matches, p.parser, p.upserter, BackfillConfig{}, nil)
	return p
}

// seedFixture stores an upcoming fixture for leagueProviderID, creating the league when needed.
func (p *testPipeline) seedFixture(leagueProviderID, providerMatchID int64, kickoff time.Time) int64 {
	ctx := context.Background()
	leagueID, err := p.resolver.ResolveLeague(ctx, ExternalLeague{ProviderID: leagueProviderID, Name: "League " + strconv.FormatInt(leagueProviderID, 10)})
	if err != nil {
		panic(err)
	}
	id, err := p.fixtures.Add(ctx, fixture.Fixture{
		ProviderMatchID: providerMatchID,
		LeagueID:        leagueID,
		HomeTeam:        "Home " + strconv.FormatInt(providerMatchID, 10),
		AwayTeam:        "Away " + strconv.FormatInt(providerMatchID, 10),
		KickoffAt:       kickoff,
	})
	if err != nil {
		panic(err)
	}
	return id
}

func intRef(v int) *int {
	return &v
}

func floatRef(v float64) *float64 {
	return &v
}

// finishedMatch builds a fully populated parsed match between two teams.
func finishedMatch(providerMatchID, leagueProviderID, homeProviderID, awayProviderID int64, homeScore, awayScore int) ParsedMatch {
	kickoff := time.Date(2024, time.December, 7, 17, 0, 0, 0, time.UTC).Add(time.Duration(providerMatchID) * time.Hour)
	return ParsedMatch{
		ProviderMatchID: providerMatchID,
		League: ExternalLeague{
			ProviderID:  leagueProviderID,
			Name:        "League " + strconv.FormatInt(leagueProviderID, 10),
			CountryCode: "TUR",
			Season:      "2024/2025",
		},
		HomeTeam:  ExternalTeam{ProviderID: homeProviderID, Name: "Team " + strconv.FormatInt(homeProviderID, 10)},
		AwayTeam:  ExternalTeam{ProviderID: awayProviderID, Name: "Team " + strconv.FormatInt(awayProviderID, 10)},
		Round:     14,
		RoundName: "14",
		MatchDate: &kickoff,
		HomeScore: intRef(homeScore),
		AwayScore: intRef(awayScore),
		Finished:  true,
		Stats: &teamstats.MatchStats{
			Home: teamstats.SideStats{XG: floatRef(1.8), Shots: 15, ShotsOnTarget: 6, Possession: floatRef(58)},
			Away: teamstats.SideStats{XG: floatRef(0.9), Shots: 8, ShotsOnTarget: 3, Possession: floatRef(42)},
		},
		AdvancedStats: &teamstats.AdvancedStats{
			Home: teamstats.AdvancedSideStats{TotalPasses: intRef(455), PassAccuracy: floatRef(86)},
			Away: teamstats.AdvancedSideStats{TotalPasses: intRef(310), PassAccuracy: floatRef(79)},
		},
		Context:    &match.Context{StadiumName: "Rams Park", Referee: "Halil Umut Meler"},
		Formations: &match.Formations{HomeFormation: "4-2-3-1", AwayFormation: "4-4-2"},
		Lineups: []lineup.Player{
			{Side: match.SideHome, ProviderID: 1, PlayerName: "Home Keeper", IsStarter: true, PositionRole: "GK"},
			{Side: match.SideAway, ProviderID: 2, PlayerName: "Away Keeper", IsStarter: true, PositionRole: "GK"},
		},
		Events: []match.Event{
			{Side: match.SideHome, Type: match.EventGoal, Minute: intRef(12), PlayerName: "Home Striker"},
			{Side: match.SideAway, Type: match.EventYellowCard, Minute: intRef(30), PlayerName: "Away Back"},
		},
		Availability: []lineup.Availability{
			{Side: match.SideAway, PlayerName: "Away Winger", Status: lineup.StatusUnavailable, Reason: "Knee injury"},
		},
		PlayerStats: []playerstats.MatchStat{
			{Side: match.SideHome, ProviderPlayerID: 1, PlayerName: "Home Keeper", IsGoalkeeper: true, Saves: intRef(3)},
		},
		H2H: &ParsedH2H{HomeWins: 5, Draws: 2, AwayWins: 3, AvgHomeGoals: 1.6, AvgAwayGoals: 1.1},
	}
}

func unfinishedMatch(providerMatchID, leagueProviderID, homeProviderID, awayProviderID int64) ParsedMatch {
	item := finishedMatch(providerMatchID, leagueProviderID, homeProviderID, awayProviderID, 0, 0)
	item.Finished = false
	item.HomeScore = nil
	item.AwayScore = nil
	return item
}

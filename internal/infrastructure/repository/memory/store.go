package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/smuti/greydb-api/internal/domain/fixture"
	"github.com/smuti/greydb-api/internal/domain/h2h"
	"github.com/smuti/greydb-api/internal/domain/league"
	"github.com/smuti/greydb-api/internal/domain/lineup"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/domain/playerstats"
	"github.com/smuti/greydb-api/internal/domain/team"
	"github.com/smuti/greydb-api/internal/domain/teamstats"
)

var (
	// ErrMissingReference mirrors a foreign key violation.
	ErrMissingReference = errors.New("memory: referenced row does not exist")
	// ErrDuplicateKey mirrors a unique violation.
	ErrDuplicateKey = errors.New("memory: duplicate key")
)

// Store holds every table behind one lock so repositories sharing it see a
// consistent view, the way they would share one database.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	nextLeagueID  int64
	nextTeamID    int64
	nextMatchID   int64
	nextFixtureID int64

	leagues          map[int64]league.League
	leagueByProvider map[int64]int64
	teams            map[int64]team.Team
	teamByProvider   map[int64]int64
	matches          map[int64]match.Match
	matchByProvider  map[int64]int64
	fixtures         map[int64]fixture.Fixture
	fixtureOrder     []int64

	stats         map[int64]teamstats.MatchStats
	advancedStats map[int64]teamstats.AdvancedStats
	contexts      map[int64]match.Context
	formations    map[int64]match.Formations
	dependentSets map[setKey]time.Time
	lineups       map[int64][]lineup.Player
	availability  map[int64][]lineup.Availability
	events        map[int64][]match.Event
	playerStats   map[int64][]playerstats.MatchStat
	h2h           map[pairKey]h2h.Stat
}

type setKey struct {
	matchID int64
	name    string
}

type pairKey struct {
	low  int64
	high int64
}

func NewStore() *Store {
	return &Store{
		now:              time.Now,
		leagues:          make(map[int64]league.League),
		leagueByProvider: make(map[int64]int64),
		teams:            make(map[int64]team.Team),
		teamByProvider:   make(map[int64]int64),
		matches:          make(map[int64]match.Match),
		matchByProvider:  make(map[int64]int64),
		fixtures:         make(map[int64]fixture.Fixture),
		stats:            make(map[int64]teamstats.MatchStats),
		advancedStats:    make(map[int64]teamstats.AdvancedStats),
		contexts:         make(map[int64]match.Context),
		formations:       make(map[int64]match.Formations),
		dependentSets:    make(map[setKey]time.Time),
		lineups:          make(map[int64][]lineup.Player),
		availability:     make(map[int64][]lineup.Availability),
		events:           make(map[int64][]match.Event),
		playerStats:      make(map[int64][]playerstats.MatchStat),
		h2h:              make(map[pairKey]h2h.Stat),
	}
}

// SetClock overrides the clock used for created/updated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// claimSetLocked reserves a 1:N dependent set for a match. It reports false
// when the set was claimed before.
func (s *Store) claimSetLocked(matchID int64, name string) (bool, error) {
	if _, ok := s.matches[matchID]; !ok {
		return false, ErrMissingReference
	}
	key := setKey{matchID: matchID, name: name}
	if _, ok := s.dependentSets[key]; ok {
		return false, nil
	}
	s.dependentSets[key] = s.now().UTC()
	return true, nil
}

func (s *Store) requireMatchLocked(matchID int64) error {
	if _, ok := s.matches[matchID]; !ok {
		return ErrMissingReference
	}
	return nil
}

// Counts reports stored rows per dependent set for one match.
func (s *Store) Counts(matchID int64) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]int{
		"lineups":      len(s.lineups[matchID]),
		"events":       len(s.events[matchID]),
		"availability": len(s.availability[matchID]),
		"player_stats": len(s.playerStats[matchID]),
	}
	if _, ok := s.stats[matchID]; ok {
		out["stats"] = 1
	}
	if _, ok := s.advancedStats[matchID]; ok {
		out["advanced_stats"] = 1
	}
	if _, ok := s.contexts[matchID]; ok {
		out["context"] = 1
	}
	if _, ok := s.formations[matchID]; ok {
		out["formations"] = 1
	}
	return out
}

// LeagueCount and TeamCount expose table sizes for assertions.
func (s *Store) LeagueCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leagues)
}

func (s *Store) TeamCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teams)
}

func (s *Store) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTimePtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

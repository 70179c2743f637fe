package fixture

import "time"

// Fixture is a scheduled match awaiting result confirmation from the provider.
type Fixture struct {
	ID               int64
	ProviderMatchID  int64
	LeagueID         int64
	LeagueProviderID int64
	LeagueName       string
	HomeTeam         string
	AwayTeam         string
	Round            int
	KickoffAt        time.Time
	Processed        bool
	ProcessedAt      *time.Time
}

// Label identifies a fixture in human readable diagnostics.
func (f Fixture) Label() string {
	if f.HomeTeam == "" && f.AwayTeam == "" {
		return ""
	}
	return f.HomeTeam + " vs " + f.AwayTeam
}

// DueLeague groups the unprocessed past fixtures of one league.
type DueLeague struct {
	LeagueID         int64
	LeagueProviderID int64
	LeagueName       string
	DueCount         int
}

type Summary struct {
	Total          int `json:"total"`
	Processed      int `json:"processed"`
	Unprocessed    int `json:"unprocessed"`
	ReadyToProcess int `json:"ready_to_process"`
}

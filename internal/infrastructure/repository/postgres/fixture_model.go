package postgres

import "time"

type fixtureTableModel struct {
	ID               int64      `db:"id"`
	ProviderMatchID  int64      `db:"provider_match_id"`
	LeagueID         int64      `db:"league_id"`
	LeagueProviderID int64      `db:"league_provider_id"`
	LeagueName       string     `db:"league_name"`
	HomeTeam         string     `db:"home_team_name"`
	AwayTeam         string     `db:"away_team_name"`
	Round            *int       `db:"round"`
	KickoffAt        time.Time  `db:"match_date"`
	Processed        bool       `db:"is_processed"`
	ProcessedAt      *time.Time `db:"processed_at"`
}

type dueLeagueRow struct {
	LeagueID         int64  `db:"league_id"`
	LeagueProviderID int64  `db:"league_provider_id"`
	LeagueName       string `db:"league_name"`
	DueCount         int    `db:"due_count"`
}

type fixtureSummaryRow struct {
	Total          int `db:"total"`
	Processed      int `db:"processed"`
	Unprocessed    int `db:"unprocessed"`
	ReadyToProcess int `db:"ready_to_process"`
}

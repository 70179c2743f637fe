package postgres

import "time"

type matchTableModel struct {
	ID                  int64      `db:"id"`
	ProviderMatchID     int64      `db:"provider_match_id"`
	LeagueID            int64      `db:"league_id"`
	HomeTeamID          int64      `db:"home_team_id"`
	AwayTeamID          int64      `db:"away_team_id"`
	Round               *int       `db:"round"`
	RoundName           *string    `db:"round_name"`
	MatchDate           *time.Time `db:"match_date"`
	HomeScore           *int       `db:"home_score"`
	AwayScore           *int       `db:"away_score"`
	Finished            bool       `db:"finished"`
	RawPayload          []byte     `db:"raw_payload"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	BackfillAttemptedAt *time.Time `db:"backfill_attempted_at"`
}

type matchUpsertModel struct {
	ProviderMatchID int64      `db:"provider_match_id"`
	LeagueID        int64      `db:"league_id"`
	HomeTeamID      int64      `db:"home_team_id"`
	AwayTeamID      int64      `db:"away_team_id"`
	Round           *int       `db:"round"`
	RoundName       *string    `db:"round_name"`
	MatchDate       *time.Time `db:"match_date"`
	HomeScore       *int       `db:"home_score"`
	AwayScore       *int       `db:"away_score"`
	Finished        bool       `db:"finished"`
	RawPayload      *string    `db:"raw_payload"`
}

type matchUpsertRow struct {
	ID       int64 `db:"id"`
	Inserted bool  `db:"inserted"`
}

type matchResultRow struct {
	MatchID            int64      `db:"match_id"`
	ProviderMatchID    int64      `db:"provider_match_id"`
	MatchDate          *time.Time `db:"match_date"`
	LeagueProviderID   int64      `db:"league_provider_id"`
	LeagueName         string     `db:"league_name"`
	Season             *string    `db:"season"`
	HomeTeamProviderID int64      `db:"home_team_provider_id"`
	HomeTeamName       string     `db:"home_team_name"`
	AwayTeamProviderID int64      `db:"away_team_provider_id"`
	AwayTeamName       string     `db:"away_team_name"`
	HomeScore          int        `db:"home_score"`
	AwayScore          int        `db:"away_score"`
}

type matchSummaryRow struct {
	Total     int `db:"total"`
	WithScore int `db:"with_score"`
	Finished  int `db:"finished"`
}

package postgres

import "time"

type h2hTableModel struct {
	TeamLowID     int64     `db:"team_low_id"`
	TeamHighID    int64     `db:"team_high_id"`
	TotalMatches  int       `db:"total_matches"`
	TeamLowWins   int       `db:"team_low_wins"`
	TeamHighWins  int       `db:"team_high_wins"`
	Draws         int       `db:"draws"`
	AvgGoalsLow   float64   `db:"avg_goals_low"`
	AvgGoalsHigh  float64   `db:"avg_goals_high"`
	SourceMatchID *int64    `db:"source_match_id"`
	ComputedAt    time.Time `db:"computed_at"`
}

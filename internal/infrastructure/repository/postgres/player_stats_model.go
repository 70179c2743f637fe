package postgres

type matchPlayerStatInsertModel struct {
	MatchID          int64    `db:"match_id"`
	TeamID           int64    `db:"team_id"`
	Side             string   `db:"side"`
	ProviderPlayerID *int64   `db:"provider_player_id"`
	PlayerName       string   `db:"player_name"`
	IsGoalkeeper     bool     `db:"is_goalkeeper"`
	Rating           *float64 `db:"rating"`
	MinutesPlayed    *int     `db:"minutes_played"`
	Goals            int      `db:"goals"`
	Assists          int      `db:"assists"`
	XG               *float64 `db:"xg"`
	XA               *float64 `db:"xa"`
	TotalShots       int      `db:"total_shots"`
	ShotsOnTarget    int      `db:"shots_on_target"`
	Touches          int      `db:"touches"`
	TotalPasses      int      `db:"total_passes"`
	AccuratePasses   int      `db:"accurate_passes"`
	KeyPasses        int      `db:"key_passes"`
	Tackles          int      `db:"tackles"`
	Interceptions    int      `db:"interceptions"`
	Clearances       int      `db:"clearances"`
	DuelsWon         int      `db:"duels_won"`
	DuelsLost        int      `db:"duels_lost"`
	FoulsCommitted   int      `db:"fouls_committed"`
	FoulsWon         int      `db:"fouls_won"`
	Saves            *int     `db:"saves"`
	GoalsConceded    *int     `db:"goals_conceded"`
}

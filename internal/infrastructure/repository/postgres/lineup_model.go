package postgres

type matchLineupInsertModel struct {
	MatchID      int64    `db:"match_id"`
	TeamID       int64    `db:"team_id"`
	Side         string   `db:"side"`
	ProviderID   *int64   `db:"provider_player_id"`
	PlayerName   string   `db:"player_name"`
	ShirtNumber  *int     `db:"shirt_number"`
	Position     *string  `db:"position"`
	PositionRole *string  `db:"position_role"`
	IsStarter    bool     `db:"is_starter"`
	MarketValueM *float64 `db:"market_value_m"`
	Age          *int     `db:"age"`
	SeasonRating *float64 `db:"season_rating"`
}

type playerAvailabilityInsertModel struct {
	MatchID    int64   `db:"match_id"`
	TeamID     int64   `db:"team_id"`
	Side       string  `db:"side"`
	PlayerName string  `db:"player_name"`
	Status     string  `db:"status"`
	Reason     *string `db:"reason"`
}

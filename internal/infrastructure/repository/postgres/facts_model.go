package postgres

type matchContextInsertModel struct {
	MatchID          int64    `db:"match_id"`
	StadiumName      *string  `db:"stadium_name"`
	StadiumLat       *float64 `db:"stadium_lat"`
	StadiumLon       *float64 `db:"stadium_lon"`
	StadiumCapacity  *int     `db:"stadium_capacity"`
	Referee          *string  `db:"referee"`
	RefereeCountry   *string  `db:"referee_country"`
	Attendance       *int     `db:"attendance"`
	WeatherCondition *string  `db:"weather_condition"`
	WeatherTemp      *float64 `db:"weather_temp"`
}

type matchFormationsInsertModel struct {
	MatchID       int64   `db:"match_id"`
	HomeFormation *string `db:"home_formation"`
	AwayFormation *string `db:"away_formation"`
}

type matchEventInsertModel struct {
	MatchID    int64   `db:"match_id"`
	TeamID     int64   `db:"team_id"`
	Side       string  `db:"side"`
	EventType  string  `db:"event_type"`
	Minute     *int    `db:"minute"`
	AddedTime  *int    `db:"added_time"`
	PlayerName *string `db:"player_name"`
	AssistedBy *string `db:"assisted_by"`
	PlayerIn   *string `db:"player_in"`
	PlayerOut  *string `db:"player_out"`
	IsOwnGoal  bool    `db:"is_own_goal"`
	IsPenalty  bool    `db:"is_penalty"`
	RawEvent   *string `db:"raw_event"`
}

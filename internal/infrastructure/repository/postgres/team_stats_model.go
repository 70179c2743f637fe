package postgres

type matchStatsInsertModel struct {
	MatchID           int64    `db:"match_id"`
	HomeXG            *float64 `db:"home_xg"`
	AwayXG            *float64 `db:"away_xg"`
	HomeShots         int      `db:"home_shots"`
	AwayShots         int      `db:"away_shots"`
	HomeShotsOnTarget int      `db:"home_shots_on_target"`
	AwayShotsOnTarget int      `db:"away_shots_on_target"`
	HomePossession    *float64 `db:"home_possession"`
	AwayPossession    *float64 `db:"away_possession"`
	HomeCorners       int      `db:"home_corners"`
	AwayCorners       int      `db:"away_corners"`
	HomeFouls         int      `db:"home_fouls"`
	AwayFouls         int      `db:"away_fouls"`
	HomeYellowCards   int      `db:"home_yellow_cards"`
	AwayYellowCards   int      `db:"away_yellow_cards"`
	HomeRedCards      int      `db:"home_red_cards"`
	AwayRedCards      int      `db:"away_red_cards"`
}

// advancedSideColumns lists the per-side advanced metric columns in
// AdvancedSideStats field order; the table prefixes each with home_ or away_.
var advancedSideColumns = []string{
	"open_play_xg",
	"set_piece_xg",
	"xgot",
	"shots_blocked",
	"shots_off_target",
	"shots_inside_box",
	"shots_outside_box",
	"total_passes",
	"pass_accuracy",
	"long_passes",
	"long_pass_accuracy",
	"crosses",
	"cross_accuracy",
	"passes_own_half",
	"passes_opp_half",
	"touches_in_box",
	"tackles",
	"interceptions",
	"blocks",
	"clearances",
	"goalkeeper_saves",
	"duels_won",
	"duels_won_pct",
	"aerial_duels_won",
	"aerial_duels_pct",
	"dribbles_successful",
	"dribbles_pct",
	"offsides",
}

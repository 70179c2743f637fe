package playerstats

import "github.com/smuti/greydb-api/internal/domain/match"

// MatchStat is one player's box score for a single match.
type MatchStat struct {
	MatchID          int64
	TeamID           int64
	Side             match.Side
	ProviderPlayerID int64
	PlayerName       string
	IsGoalkeeper     bool
	Rating           *float64
	MinutesPlayed    *int
	Goals            int
	Assists          int
	XG               *float64
	XA               *float64
	TotalShots       int
	ShotsOnTarget    int
	Touches          int
	TotalPasses      int
	AccuratePasses   int
	KeyPasses        int
	Tackles          int
	Interceptions    int
	Clearances       int
	DuelsWon         int
	DuelsLost        int
	FoulsCommitted   int
	FoulsWon         int
	Saves            *int
	GoalsConceded    *int
}

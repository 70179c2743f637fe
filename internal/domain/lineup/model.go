package lineup

import "github.com/smuti/greydb-api/internal/domain/match"

const StatusUnavailable = "UNAVAILABLE"

// Player is one named squad member listed on a team sheet.
type Player struct {
	MatchID      int64
	TeamID       int64
	Side         match.Side
	ProviderID   int64
	PlayerName   string
	ShirtNumber  *int
	Position     string
	PositionRole string
	IsStarter    bool
	MarketValueM *float64
	Age          *int
	SeasonRating *float64
}

// Availability records a player ruled out before kickoff.
type Availability struct {
	MatchID    int64
	TeamID     int64
	Side       match.Side
	PlayerName string
	Status     string
	Reason     string
}

// PositionRole maps a provider position id to a coarse role.
func PositionRole(positionID int) string {
	switch {
	case positionID <= 0:
		return ""
	case positionID == 11:
		return "GK"
	case positionID < 50:
		return "DEF"
	case positionID < 100:
		return "MID"
	default:
		return "FWD"
	}
}

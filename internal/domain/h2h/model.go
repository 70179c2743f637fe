package h2h

import "time"

// Stat is a point-in-time head-to-head snapshot for an unordered team pair.
// TeamLowID is always the smaller internal team id.
type Stat struct {
	TeamLowID     int64
	TeamHighID    int64
	TotalMatches  int
	TeamLowWins   int
	TeamHighWins  int
	Draws         int
	AvgGoalsLow   float64
	AvgGoalsHigh  float64
	SourceMatchID int64
	ComputedAt    time.Time
}

// Pair orders two team ids into the canonical (low, high) key.
func Pair(a, b int64) (int64, int64) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Oriented builds a canonical Stat from figures expressed from homeID's perspective.
func Oriented(homeID, awayID int64, total, homeWins, draws, awayWins int, avgHome, avgAway float64) Stat {
	if homeID <= awayID {
		return Stat{
			TeamLowID:    homeID,
			TeamHighID:   awayID,
			TotalMatches: total,
			TeamLowWins:  homeWins,
			TeamHighWins: awayWins,
			Draws:        draws,
			AvgGoalsLow:  avgHome,
			AvgGoalsHigh: avgAway,
		}
	}
	return Stat{
		TeamLowID:    awayID,
		TeamHighID:   homeID,
		TotalMatches: total,
		TeamLowWins:  awayWins,
		TeamHighWins: homeWins,
		Draws:        draws,
		AvgGoalsLow:  avgAway,
		AvgGoalsHigh: avgHome,
	}
}

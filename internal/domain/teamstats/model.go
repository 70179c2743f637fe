package teamstats

// SideStats are the summary counters of one side.
type SideStats struct {
	XG            *float64
	Shots         int
	ShotsOnTarget int
	Possession    *float64
	Corners       int
	Fouls         int
	YellowCards   int
	RedCards      int
}

// MatchStats pairs the summary counters of both sides.
type MatchStats struct {
	MatchID int64
	Home    SideStats
	Away    SideStats
}

// AdvancedSideStats are the derived metrics of one side. Pct fields hold
// percentages decomposed from "count(pct%)" encodings.
type AdvancedSideStats struct {
	OpenPlayXG         *float64
	SetPieceXG         *float64
	XGOT               *float64
	ShotsBlocked       *int
	ShotsOffTarget     *int
	ShotsInsideBox     *int
	ShotsOutsideBox    *int
	TotalPasses        *int
	PassAccuracy       *float64
	LongPasses         *int
	LongPassAccuracy   *float64
	Crosses            *int
	CrossAccuracy      *float64
	PassesOwnHalf      *int
	PassesOppHalf      *int
	TouchesInBox       *int
	Tackles            *int
	Interceptions      *int
	Blocks             *int
	Clearances         *int
	GoalkeeperSaves    *int
	DuelsWon           *int
	DuelsWonPct        *float64
	AerialDuelsWon     *int
	AerialDuelsPct     *float64
	DribblesSuccessful *int
	DribblesPct        *float64
	Offsides           *int
}

func (s AdvancedSideStats) IsZero() bool {
	return s == AdvancedSideStats{}
}

type AdvancedStats struct {
	MatchID int64
	Home    AdvancedSideStats
	Away    AdvancedSideStats
}

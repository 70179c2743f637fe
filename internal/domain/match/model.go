package match

import "time"

type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Match is the root record every dependent set hangs off.
type Match struct {
	ID                  int64
	ProviderMatchID     int64
	LeagueID            int64
	HomeTeamID          int64
	AwayTeamID          int64
	Round               int
	RoundName           string
	MatchDate           *time.Time
	HomeScore           *int
	AwayScore           *int
	Finished            bool
	RawPayload          []byte
	CreatedAt           time.Time
	UpdatedAt           time.Time
	// BackfillAttemptedAt is nil until the backfill runner first re-parses the payload.
	BackfillAttemptedAt *time.Time
}

// TeamID returns the internal team id playing on side.
func (m Match) TeamID(side Side) int64 {
	if side == SideAway {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

// UpsertOutcome reports the id of the stored match and whether the row was created.
type UpsertOutcome struct {
	ID       int64
	Inserted bool
}

// Result is a finished match flattened with league and team names for read models.
type Result struct {
	MatchID            int64
	ProviderMatchID    int64
	MatchDate          time.Time
	LeagueProviderID   int64
	LeagueName         string
	Season             string
	HomeTeamProviderID int64
	HomeTeamName       string
	AwayTeamProviderID int64
	AwayTeamName       string
	HomeScore          int
	AwayScore          int
}

type Venue string

const (
	VenueAny  Venue = ""
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// ResultQuery selects the most recent finished matches of one team.
type ResultQuery struct {
	TeamProviderID   int64
	LeagueProviderID int64
	Venue            Venue
	Limit            int
}

// HeadToHeadQuery selects finished meetings of two teams, newest first. With
// HomeOnly set only meetings hosted by TeamProviderID qualify.
type HeadToHeadQuery struct {
	TeamProviderID     int64
	OpponentProviderID int64
	HomeOnly           bool
	Limit              int
}

type Summary struct {
	Total     int `json:"total"`
	WithScore int `json:"with_score"`
	Finished  int `json:"finished"`
}

package match

// Context holds venue, officiating and weather details from the match facts section.
type Context struct {
	MatchID          int64
	StadiumName      string
	StadiumLat       *float64
	StadiumLon       *float64
	StadiumCapacity  *int
	Referee          string
	RefereeCountry   string
	Attendance       *int
	WeatherCondition string
	WeatherTemp      *float64
}

type Formations struct {
	MatchID       int64
	HomeFormation string
	AwayFormation string
}

type EventType string

const (
	EventGoal         EventType = "GOAL"
	EventYellowCard   EventType = "YELLOW_CARD"
	EventRedCard      EventType = "RED_CARD"
	EventSubstitution EventType = "SUBSTITUTION"
)

// Event is one goal, card, substitution or other timeline entry.
type Event struct {
	MatchID    int64
	TeamID     int64
	Side       Side
	Type       EventType
	Minute     *int
	AddedTime  *int
	PlayerName string
	AssistedBy string
	PlayerIn   string
	PlayerOut  string
	IsOwnGoal  bool
	IsPenalty  bool
	RawEvent   []byte
}

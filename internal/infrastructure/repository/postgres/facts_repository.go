package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/match"
)

const (
	setEvents       = "events"
	setLineups      = "lineups"
	setAvailability = "availability"
	setPlayerStats  = "player_stats"
)

// FactsRepository writes context, formations and the event timeline of a match.
type FactsRepository struct {
	db *sqlx.DB
}

func NewFactsRepository(db *sqlx.DB) *FactsRepository {
	return &FactsRepository{db: db}
}

func (r *FactsRepository) InsertContext(ctx context.Context, item match.Context) (bool, error) {
	return insertOnce(ctx, r.db, "match_context", matchContextInsertModel{
		MatchID:          item.MatchID,
		StadiumName:      optionalString(item.StadiumName),
		StadiumLat:       item.StadiumLat,
		StadiumLon:       item.StadiumLon,
		StadiumCapacity:  item.StadiumCapacity,
		Referee:          optionalString(item.Referee),
		RefereeCountry:   optionalString(item.RefereeCountry),
		Attendance:       item.Attendance,
		WeatherCondition: optionalString(item.WeatherCondition),
		WeatherTemp:      item.WeatherTemp,
	})
}

func (r *FactsRepository) InsertFormations(ctx context.Context, item match.Formations) (bool, error) {
	return insertOnce(ctx, r.db, "match_formations", matchFormationsInsertModel{
		MatchID:       item.MatchID,
		HomeFormation: optionalString(item.HomeFormation),
		AwayFormation: optionalString(item.AwayFormation),
	})
}

func (r *FactsRepository) InsertEvents(ctx context.Context, matchID int64, items []match.Event) (bool, error) {
	rows := make([]matchEventInsertModel, 0, len(items))
	for _, item := range items {
		rows = append(rows, matchEventInsertModel{
			MatchID:    matchID,
			TeamID:     item.TeamID,
			Side:       string(item.Side),
			EventType:  string(item.Type),
			Minute:     item.Minute,
			AddedTime:  item.AddedTime,
			PlayerName: optionalString(item.PlayerName),
			AssistedBy: optionalString(item.AssistedBy),
			PlayerIn:   optionalString(item.PlayerIn),
			PlayerOut:  optionalString(item.PlayerOut),
			IsOwnGoal:  item.IsOwnGoal,
			IsPenalty:  item.IsPenalty,
			RawEvent:   jsonbParam(item.RawEvent),
		})
	}
	return insertSet(ctx, r.db, "match_events", setEvents, matchID, rows)
}

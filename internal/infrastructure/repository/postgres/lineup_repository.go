package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/lineup"
)

type LineupRepository struct {
	db *sqlx.DB
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

func (r *LineupRepository) InsertPlayers(ctx context.Context, matchID int64, items []lineup.Player) (bool, error) {
	rows := make([]matchLineupInsertModel, 0, len(items))
	for _, item := range items {
		row := matchLineupInsertModel{
			MatchID:      matchID,
			TeamID:       item.TeamID,
			Side:         string(item.Side),
			PlayerName:   item.PlayerName,
			ShirtNumber:  item.ShirtNumber,
			Position:     optionalString(item.Position),
			PositionRole: optionalString(item.PositionRole),
			IsStarter:    item.IsStarter,
			MarketValueM: item.MarketValueM,
			Age:          item.Age,
			SeasonRating: item.SeasonRating,
		}
		if item.ProviderID > 0 {
			providerID := item.ProviderID
			row.ProviderID = &providerID
		}
		rows = append(rows, row)
	}
	return insertSet(ctx, r.db, "match_lineups", setLineups, matchID, rows)
}

func (r *LineupRepository) InsertAvailability(ctx context.Context, matchID int64, items []lineup.Availability) (bool, error) {
	rows := make([]playerAvailabilityInsertModel, 0, len(items))
	for _, item := range items {
		status := item.Status
		if status == "" {
			status = lineup.StatusUnavailable
		}
		rows = append(rows, playerAvailabilityInsertModel{
			MatchID:    matchID,
			TeamID:     item.TeamID,
			Side:       string(item.Side),
			PlayerName: item.PlayerName,
			Status:     status,
			Reason:     optionalString(item.Reason),
		})
	}
	return insertSet(ctx, r.db, "player_availability", setAvailability, matchID, rows)
}

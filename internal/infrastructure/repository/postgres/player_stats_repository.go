package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/smuti/greydb-api/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) InsertMatchStats(ctx context.Context, matchID int64, items []playerstats.MatchStat) (bool, error) {
	rows := make([]matchPlayerStatInsertModel, 0, len(items))
	for _, item := range items {
		row := matchPlayerStatInsertModel{
			MatchID:        matchID,
			TeamID:         item.TeamID,
			Side:           string(item.Side),
			PlayerName:     item.PlayerName,
			IsGoalkeeper:   item.IsGoalkeeper,
			Rating:         item.Rating,
			MinutesPlayed:  item.MinutesPlayed,
			Goals:          item.Goals,
			Assists:        item.Assists,
			XG:             item.XG,
			XA:             item.XA,
			TotalShots:     item.TotalShots,
			ShotsOnTarget:  item.ShotsOnTarget,
			Touches:        item.Touches,
			TotalPasses:    item.TotalPasses,
			AccuratePasses: item.AccuratePasses,
			KeyPasses:      item.KeyPasses,
			Tackles:        item.Tackles,
			Interceptions:  item.Interceptions,
			Clearances:     item.Clearances,
			DuelsWon:       item.DuelsWon,
			DuelsLost:      item.DuelsLost,
			FoulsCommitted: item.FoulsCommitted,
			FoulsWon:       item.FoulsWon,
			Saves:          item.Saves,
			GoalsConceded:  item.GoalsConceded,
		}
		if item.ProviderPlayerID > 0 {
			providerID := item.ProviderPlayerID
			row.ProviderPlayerID = &providerID
		}
		rows = append(rows, row)
	}
	return insertSet(ctx, r.db, "match_player_stats", setPlayerStats, matchID, rows)
}

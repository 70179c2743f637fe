package memory

import (
	"context"

	"github.com/smuti/greydb-api/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	store *Store
}

func NewPlayerStatsRepository(store *Store) *PlayerStatsRepository {
	return &PlayerStatsRepository{store: store}
}

func (r *PlayerStatsRepository) InsertMatchStats(_ context.Context, matchID int64, items []playerstats.MatchStat) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	claimed, err := r.store.claimSetLocked(matchID, setPlayerStats)
	if err != nil || !claimed {
		return false, err
	}
	rows := make([]playerstats.MatchStat, 0, len(items))
	for _, item := range items {
		item.MatchID = matchID
		rows = append(rows, item)
	}
	r.store.playerStats[matchID] = rows
	return true, nil
}

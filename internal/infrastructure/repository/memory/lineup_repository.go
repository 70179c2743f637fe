package memory

import (
	"context"

	"github.com/smuti/greydb-api/internal/domain/lineup"
)

type LineupRepository struct {
	store *Store
}

func NewLineupRepository(store *Store) *LineupRepository {
	return &LineupRepository{store: store}
}

func (r *LineupRepository) InsertPlayers(_ context.Context, matchID int64, items []lineup.Player) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	claimed, err := r.store.claimSetLocked(matchID, setLineups)
	if err != nil || !claimed {
		return false, err
	}
	rows := make([]lineup.Player, 0, len(items))
	for _, item := range items {
		item.MatchID = matchID
		rows = append(rows, item)
	}
	r.store.lineups[matchID] = rows
	return true, nil
}

func (r *LineupRepository) InsertAvailability(_ context.Context, matchID int64, items []lineup.Availability) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	claimed, err := r.store.claimSetLocked(matchID, setAvailability)
	if err != nil || !claimed {
		return false, err
	}
	rows := make([]lineup.Availability, 0, len(items))
	for _, item := range items {
		item.MatchID = matchID
		rows = append(rows, item)
	}
	r.store.availability[matchID] = rows
	return true, nil
}

func (r *LineupRepository) Players(matchID int64) []lineup.Player {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]lineup.Player(nil), r.store.lineups[matchID]...)
}

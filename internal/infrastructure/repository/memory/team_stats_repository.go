package memory

import (
	"context"

	"github.com/smuti/greydb-api/internal/domain/teamstats"
)

type TeamStatsRepository struct {
	store *Store
}

func NewTeamStatsRepository(store *Store) *TeamStatsRepository {
	return &TeamStatsRepository{store: store}
}

func (r *TeamStatsRepository) InsertMatchStats(_ context.Context, item teamstats.MatchStats) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.requireMatchLocked(item.MatchID); err != nil {
		return false, err
	}
	if _, ok := r.store.stats[item.MatchID]; ok {
		return false, nil
	}
	r.store.stats[item.MatchID] = item
	return true, nil
}

func (r *TeamStatsRepository) InsertAdvancedStats(_ context.Context, item teamstats.AdvancedStats) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.requireMatchLocked(item.MatchID); err != nil {
		return false, err
	}
	if _, ok := r.store.advancedStats[item.MatchID]; ok {
		return false, nil
	}
	r.store.advancedStats[item.MatchID] = item
	return true, nil
}

func (r *TeamStatsRepository) MatchStats(matchID int64) (teamstats.MatchStats, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	item, ok := r.store.stats[matchID]
	return item, ok
}

package memory

import (
	"context"

	"github.com/smuti/greydb-api/internal/domain/h2h"
)

type H2HRepository struct {
	store *Store
}

func NewH2HRepository(store *Store) *H2HRepository {
	return &H2HRepository{store: store}
}

func (r *H2HRepository) InsertIfAbsent(_ context.Context, item h2h.Stat) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if item.TeamLowID >= item.TeamHighID {
		return false, ErrDuplicateKey
	}
	if _, ok := r.store.teams[item.TeamLowID]; !ok {
		return false, ErrMissingReference
	}
	if _, ok := r.store.teams[item.TeamHighID]; !ok {
		return false, ErrMissingReference
	}
	key := pairKey{low: item.TeamLowID, high: item.TeamHighID}
	if _, ok := r.store.h2h[key]; ok {
		return false, nil
	}
	r.store.h2h[key] = item
	return true, nil
}

func (r *H2HRepository) GetByPair(_ context.Context, teamA, teamB int64) (h2h.Stat, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	low, high := h2h.Pair(teamA, teamB)
	item, ok := r.store.h2h[pairKey{low: low, high: high}]
	return item, ok, nil
}

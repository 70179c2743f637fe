package memory

import (
	"context"

	"github.com/smuti/greydb-api/internal/domain/match"
)

const (
	setEvents       = "events"
	setLineups      = "lineups"
	setAvailability = "availability"
	setPlayerStats  = "player_stats"
)

type FactsRepository struct {
	store *Store
}

func NewFactsRepository(store *Store) *FactsRepository {
	return &FactsRepository{store: store}
}

func (r *FactsRepository) InsertContext(_ context.Context, item match.Context) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.requireMatchLocked(item.MatchID); err != nil {
		return false, err
	}
	if _, ok := r.store.contexts[item.MatchID]; ok {
		return false, nil
	}
	r.store.contexts[item.MatchID] = item
	return true, nil
}

func (r *FactsRepository) InsertFormations(_ context.Context, item match.Formations) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.requireMatchLocked(item.MatchID); err != nil {
		return false, err
	}
	if _, ok := r.store.formations[item.MatchID]; ok {
		return false, nil
	}
	r.store.formations[item.MatchID] = item
	return true, nil
}

func (r *FactsRepository) InsertEvents(_ context.Context, matchID int64, items []match.Event) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	claimed, err := r.store.claimSetLocked(matchID, setEvents)
	if err != nil || !claimed {
		return false, err
	}
	rows := make([]match.Event, 0, len(items))
	for _, item := range items {
		item.MatchID = matchID
		rows = append(rows, item)
	}
	r.store.events[matchID] = rows
	return true, nil
}

// Events returns the stored events of a match.
func (r *FactsRepository) Events(matchID int64) []match.Event {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]match.Event(nil), r.store.events[matchID]...)
}

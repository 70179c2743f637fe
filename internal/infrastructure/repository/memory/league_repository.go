package memory

import (
	"context"

	"github.com/smuti/greydb-api/internal/domain/league"
)

type LeagueRepository struct {
	store *Store
}

func NewLeagueRepository(store *Store) *LeagueRepository {
	return &LeagueRepository{store: store}
}

func (r *LeagueRepository) GetByProviderID(_ context.Context, providerID int64) (league.League, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.leagueByProvider[providerID]
	if !ok {
		return league.League{}, false, nil
	}
	return r.store.leagues[id], true, nil
}

func (r *LeagueRepository) Ensure(_ context.Context, item league.League) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if id, ok := r.store.leagueByProvider[item.ProviderID]; ok {
		return id, nil
	}
	r.store.nextLeagueID++
	item.ID = r.store.nextLeagueID
	r.store.leagues[item.ID] = item
	r.store.leagueByProvider[item.ProviderID] = item.ID
	return item.ID, nil
}

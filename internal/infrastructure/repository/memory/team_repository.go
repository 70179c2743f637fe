package memory

import (
	"context"

	"github.com/smuti/greydb-api/internal/domain/team"
)

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) GetByProviderID(_ context.Context, providerID int64) (team.Team, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.teamByProvider[providerID]
	if !ok {
		return team.Team{}, false, nil
	}
	return r.store.teams[id], true, nil
}

func (r *TeamRepository) Ensure(_ context.Context, item team.Team) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if id, ok := r.store.teamByProvider[item.ProviderID]; ok {
		return id, nil
	}
	if item.LeagueID > 0 {
		if _, ok := r.store.leagues[item.LeagueID]; !ok {
			return 0, ErrMissingReference
		}
	}
	r.store.nextTeamID++
	item.ID = r.store.nextTeamID
	r.store.teams[item.ID] = item
	r.store.teamByProvider[item.ProviderID] = item.ID
	return item.ID, nil
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/smuti/greydb-api/internal/domain/fixture"
)

type FixtureRepository struct {
	store *Store
}

func NewFixtureRepository(store *Store) *FixtureRepository {
	return &FixtureRepository{store: store}
}

// Add stores an upcoming fixture the way the upstream fixture feed would.
// The league must exist; its provider id and name are denormalized onto item.
func (r *FixtureRepository) Add(_ context.Context, item fixture.Fixture) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	leagueRow, ok := r.store.leagues[item.LeagueID]
	if !ok {
		return 0, ErrMissingReference
	}
	for _, existing := range r.store.fixtures {
		if existing.ProviderMatchID == item.ProviderMatchID {
			return 0, ErrDuplicateKey
		}
	}
	r.store.nextFixtureID++
	item.ID = r.store.nextFixtureID
	item.LeagueProviderID = leagueRow.ProviderID
	item.LeagueName = leagueRow.Name
	item.KickoffAt = item.KickoffAt.UTC()
	r.store.fixtures[item.ID] = item
	r.store.fixtureOrder = append(r.store.fixtureOrder, item.ID)
	return item.ID, nil
}

func (r *FixtureRepository) Get(fixtureID int64) (fixture.Fixture, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	item, ok := r.store.fixtures[fixtureID]
	return item, ok
}

func (r *FixtureRepository) ListDueLeagues(_ context.Context, now time.Time, leagueProviderID int64) ([]fixture.DueLeague, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byLeague := make(map[int64]*fixture.DueLeague)
	for _, item := range r.dueLocked(now, leagueProviderID) {
		row, ok := byLeague[item.LeagueID]
		if !ok {
			row = &fixture.DueLeague{
				LeagueID:         item.LeagueID,
				LeagueProviderID: item.LeagueProviderID,
				LeagueName:       item.LeagueName,
			}
			byLeague[item.LeagueID] = row
		}
		row.DueCount++
	}

	out := make([]fixture.DueLeague, 0, len(byLeague))
	for _, row := range byLeague {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeagueID < out[j].LeagueID })
	return out, nil
}

func (r *FixtureRepository) ListDueByLeague(_ context.Context, leagueID int64, now time.Time, limit int) ([]fixture.Fixture, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]fixture.Fixture, 0)
	for _, item := range r.dueLocked(now, 0) {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FixtureRepository) ListDue(_ context.Context, now time.Time, leagueProviderID int64, limit int) ([]fixture.Fixture, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := r.dueLocked(now, leagueProviderID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FixtureRepository) MarkProcessed(_ context.Context, fixtureID int64, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.fixtures[fixtureID]
	if !ok {
		return ErrMissingReference
	}
	at = at.UTC()
	item.Processed = true
	item.ProcessedAt = &at
	r.store.fixtures[fixtureID] = item
	return nil
}

func (r *FixtureRepository) Summary(_ context.Context, now time.Time) (fixture.Summary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := fixture.Summary{Total: len(r.store.fixtures)}
	for _, item := range r.store.fixtures {
		if item.Processed {
			out.Processed++
			continue
		}
		out.Unprocessed++
		if item.KickoffAt.Before(now) {
			out.ReadyToProcess++
		}
	}
	return out, nil
}

// dueLocked returns unprocessed fixtures that kicked off before now, ordered by
// kickoff then id.
func (r *FixtureRepository) dueLocked(now time.Time, leagueProviderID int64) []fixture.Fixture {
	out := make([]fixture.Fixture, 0)
	for _, id := range r.store.fixtureOrder {
		item := r.store.fixtures[id]
		if item.Processed || !item.KickoffAt.Before(now) {
			continue
		}
		if leagueProviderID > 0 && item.LeagueProviderID != leagueProviderID {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

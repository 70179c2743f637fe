package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/smuti/greydb-api/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) Upsert(_ context.Context, item match.Match) (match.UpsertOutcome, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now().UTC()
	if id, ok := r.store.matchByProvider[item.ProviderMatchID]; ok {
		existing := r.store.matches[id]
		existing.HomeScore = cloneIntPtr(item.HomeScore)
		existing.AwayScore = cloneIntPtr(item.AwayScore)
		existing.Finished = item.Finished
		existing.RawPayload = append([]byte(nil), item.RawPayload...)
		existing.UpdatedAt = now
		r.store.matches[id] = existing
		return match.UpsertOutcome{ID: id, Inserted: false}, nil
	}

	if _, ok := r.store.leagues[item.LeagueID]; !ok {
		return match.UpsertOutcome{}, ErrMissingReference
	}
	if _, ok := r.store.teams[item.HomeTeamID]; !ok {
		return match.UpsertOutcome{}, ErrMissingReference
	}
	if _, ok := r.store.teams[item.AwayTeamID]; !ok {
		return match.UpsertOutcome{}, ErrMissingReference
	}

	r.store.nextMatchID++
	item.ID = r.store.nextMatchID
	item.HomeScore = cloneIntPtr(item.HomeScore)
	item.AwayScore = cloneIntPtr(item.AwayScore)
	item.MatchDate = cloneTimePtr(item.MatchDate)
	item.RawPayload = append([]byte(nil), item.RawPayload...)
	item.BackfillAttemptedAt = nil
	item.CreatedAt = now
	item.UpdatedAt = now
	r.store.matches[item.ID] = item
	r.store.matchByProvider[item.ProviderMatchID] = item.ID
	return match.UpsertOutcome{ID: item.ID, Inserted: true}, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.matches[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) GetByProviderID(_ context.Context, providerMatchID int64) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.matchByProvider[providerMatchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(r.store.matches[id]), true, nil
}

func (r *MatchRepository) ListBackfillCandidates(_ context.Context, limit int) ([]match.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Match, 0)
	for id, item := range r.store.matches {
		if !item.Finished || len(item.RawPayload) == 0 {
			continue
		}
		if _, ok := r.store.stats[id]; ok {
			continue
		}
		if item.BackfillAttemptedAt != nil && !item.BackfillAttemptedAt.Before(item.UpdatedAt) {
			continue
		}
		out = append(out, cloneMatch(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MatchRepository) MarkBackfillAttempted(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.matches[id]
	if !ok {
		return fmt.Errorf("mark backfill attempted match_id=%d: %w", id, ErrMissingReference)
	}
	at := r.store.now().UTC()
	item.BackfillAttemptedAt = &at
	r.store.matches[id] = item
	return nil
}

func (r *MatchRepository) ListTeamResults(_ context.Context, query match.ResultQuery) ([]match.Result, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.results(query.Limit, func(row match.Result) bool {
		if query.LeagueProviderID > 0 && row.LeagueProviderID != query.LeagueProviderID {
			return false
		}
		switch query.Venue {
		case match.VenueHome:
			return row.HomeTeamProviderID == query.TeamProviderID
		case match.VenueAway:
			return row.AwayTeamProviderID == query.TeamProviderID
		default:
			return row.HomeTeamProviderID == query.TeamProviderID || row.AwayTeamProviderID == query.TeamProviderID
		}
	}), nil
}

func (r *MatchRepository) ListHeadToHead(_ context.Context, query match.HeadToHeadQuery) ([]match.Result, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.results(query.Limit, func(row match.Result) bool {
		if row.HomeTeamProviderID == query.TeamProviderID && row.AwayTeamProviderID == query.OpponentProviderID {
			return true
		}
		if query.HomeOnly {
			return false
		}
		return row.HomeTeamProviderID == query.OpponentProviderID && row.AwayTeamProviderID == query.TeamProviderID
	}), nil
}

func (r *MatchRepository) Summary(_ context.Context) (match.Summary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := match.Summary{Total: len(r.store.matches)}
	for _, item := range r.store.matches {
		if item.HomeScore != nil && item.AwayScore != nil {
			out.WithScore++
		}
		if item.Finished {
			out.Finished++
		}
	}
	return out, nil
}

// results returns finished matches with both scores, newest first. Callers hold the read lock.
func (r *MatchRepository) results(limit int, keep func(match.Result) bool) []match.Result {
	out := make([]match.Result, 0)
	for _, item := range r.store.matches {
		if !item.Finished || item.HomeScore == nil || item.AwayScore == nil {
			continue
		}
		row := r.resultRow(item)
		if keep(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MatchDate.Equal(out[j].MatchDate) {
			return out[i].MatchDate.After(out[j].MatchDate)
		}
		return out[i].MatchID > out[j].MatchID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *MatchRepository) resultRow(item match.Match) match.Result {
	leagueRow := r.store.leagues[item.LeagueID]
	home := r.store.teams[item.HomeTeamID]
	away := r.store.teams[item.AwayTeamID]
	row := match.Result{
		MatchID:            item.ID,
		ProviderMatchID:    item.ProviderMatchID,
		LeagueProviderID:   leagueRow.ProviderID,
		LeagueName:         leagueRow.Name,
		Season:             leagueRow.Season,
		HomeTeamProviderID: home.ProviderID,
		HomeTeamName:       home.Name,
		AwayTeamProviderID: away.ProviderID,
		AwayTeamName:       away.Name,
		HomeScore:          *item.HomeScore,
		AwayScore:          *item.AwayScore,
	}
	if item.MatchDate != nil {
		row.MatchDate = *item.MatchDate
	}
	return row
}

func cloneMatch(item match.Match) match.Match {
	item.HomeScore = cloneIntPtr(item.HomeScore)
	item.AwayScore = cloneIntPtr(item.AwayScore)
	item.MatchDate = cloneTimePtr(item.MatchDate)
	item.BackfillAttemptedAt = cloneTimePtr(item.BackfillAttemptedAt)
	item.RawPayload = append([]byte(nil), item.RawPayload...)
	return item
}

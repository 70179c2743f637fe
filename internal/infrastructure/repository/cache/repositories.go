package cache

import (
	"context"
	"strconv"

	"github.com/smuti/greydb-api/internal/domain/h2h"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/domain/team"
	basecache "github.com/smuti/greydb-api/internal/platform/cache"
)

const (
	matchReadPrefix = "match:read:"
	teamPrefix      = "team:provider:"
	h2hPrefix       = "h2h:pair:"
)

// MatchRepository caches the finished-match read models. Any upsert drops
// them all because a score change can move several teams' results.
type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) (match.UpsertOutcome, error) {
	out, err := r.next.Upsert(ctx, item)
	if err != nil {
		return match.UpsertOutcome{}, err
	}
	r.cache.DeletePrefix(ctx, matchReadPrefix)
	return out, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *MatchRepository) GetByProviderID(ctx context.Context, providerMatchID int64) (match.Match, bool, error) {
	return r.next.GetByProviderID(ctx, providerMatchID)
}

func (r *MatchRepository) ListBackfillCandidates(ctx context.Context, limit int) ([]match.Match, error) {
	return r.next.ListBackfillCandidates(ctx, limit)
}

func (r *MatchRepository) MarkBackfillAttempted(ctx context.Context, id int64) error {
	return r.next.MarkBackfillAttempted(ctx, id)
}

func (r *MatchRepository) ListTeamResults(ctx context.Context, query match.ResultQuery) ([]match.Result, error) {
	key := matchReadPrefix + "team:" + join(query.TeamProviderID, query.LeagueProviderID, int64(query.Limit)) + ":" + string(query.Venue)
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]match.Result, error) {
		return r.next.ListTeamResults(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return append([]match.Result(nil), items...), nil
}

func (r *MatchRepository) ListHeadToHead(ctx context.Context, query match.HeadToHeadQuery) ([]match.Result, error) {
	key := matchReadPrefix + "h2h:" + join(query.TeamProviderID, query.OpponentProviderID, int64(query.Limit)) + ":" + strconv.FormatBool(query.HomeOnly)
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]match.Result, error) {
		return r.next.ListHeadToHead(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return append([]match.Result(nil), items...), nil
}

func (r *MatchRepository) Summary(ctx context.Context) (match.Summary, error) {
	return basecache.Load(ctx, r.cache, matchReadPrefix+"summary", r.next.Summary)
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByProviderID(ctx context.Context, providerID int64) (team.Team, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, teamPrefix+strconv.FormatInt(providerID, 10), func(ctx context.Context) (cachedLookup[team.Team], error) {
		item, exists, err := r.next.GetByProviderID(ctx, providerID)
		return cachedLookup[team.Team]{value: item, exists: exists}, err
	})
	if err != nil {
		return team.Team{}, false, err
	}
	return cached.value, cached.exists, nil
}

// Ensure drops a cached miss for the provider id so later lookups see the new row.
func (r *TeamRepository) Ensure(ctx context.Context, item team.Team) (int64, error) {
	id, err := r.next.Ensure(ctx, item)
	if err != nil {
		return 0, err
	}
	r.cache.Delete(ctx, teamPrefix+strconv.FormatInt(item.ProviderID, 10))
	return id, nil
}

type H2HRepository struct {
	next  h2h.Repository
	cache *basecache.Store
}

func NewH2HRepository(next h2h.Repository, cache *basecache.Store) *H2HRepository {
	return &H2HRepository{next: next, cache: cache}
}

func (r *H2HRepository) InsertIfAbsent(ctx context.Context, item h2h.Stat) (bool, error) {
	written, err := r.next.InsertIfAbsent(ctx, item)
	if err != nil {
		return false, err
	}
	if written {
		r.cache.Delete(ctx, pairKey(item.TeamLowID, item.TeamHighID))
	}
	return written, nil
}

func (r *H2HRepository) GetByPair(ctx context.Context, teamA, teamB int64) (h2h.Stat, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, pairKey(teamA, teamB), func(ctx context.Context) (cachedLookup[h2h.Stat], error) {
		item, exists, err := r.next.GetByPair(ctx, teamA, teamB)
		return cachedLookup[h2h.Stat]{value: item, exists: exists}, err
	})
	if err != nil {
		return h2h.Stat{}, false, err
	}
	return cached.value, cached.exists, nil
}

type cachedLookup[T any] struct {
	value  T
	exists bool
}

func pairKey(teamA, teamB int64) string {
	low, high := h2h.Pair(teamA, teamB)
	return h2hPrefix + join(low, high)
}

func join(parts ...int64) string {
	buf := make([]byte, 0, 24*len(parts))
	for i, part := range parts {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = strconv.AppendInt(buf, part, 10)
	}
	return string(buf)
}

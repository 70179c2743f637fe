package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rootOnly stores the match root and raw payload without any dependent set,
// the state backfill exists to repair.
func rootOnly(t *testing.T, p *testPipeline, parsed ParsedMatch) int64 {
	t.Helper()

	ctx := context.Background()
	leagueID, err := p.resolver.ResolveLeague(ctx, parsed.League)
	require.NoError(t, err)
	homeID, err := p.resolver.ResolveTeam(ctx, parsed.HomeTeam, leagueID)
	require.NoError(t, err)
	awayID, err := p.resolver.ResolveTeam(ctx, parsed.AwayTeam, leagueID)
	require.NoError(t, err)

	outcome, err := p.upserter.UpsertMatch(ctx, parsed, MatchRefs{LeagueID: leagueID, HomeTeamID: homeID, AwayTeamID: awayID}, []byte(strconv.FormatInt(parsed.ProviderMatchID, 10)))
	require.NoError(t, err)
	return outcome.ID
}

func TestBackfillService_Run_FillsMissingSets(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()

	missing := finishedMatch(10, 71, 1, 2, 1, 0)
	p.parser.put(missing)
	missingID := rootOnly(t, p, missing)

	complete := finishedMatch(11, 71, 3, 4, 0, 0)
	p.parser.put(complete)
	_, err := p.ingestion.IngestParsed(ctx, complete, []byte("11"))
	require.NoError(t, err)

	result, err := p.backfill.Run(ctx, BackfillInput{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.WorkerCount)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, missingID, result.Matches[0].MatchID)
	assert.Len(t, result.Matches[0].WrittenSets, 9)

	_, ok := p.stats.MatchStats(missingID)
	assert.True(t, ok)

	again, err := p.backfill.Run(ctx, BackfillInput{})
	require.NoError(t, err)
	assert.Zero(t, again.Candidates)
}

func TestBackfillService_Run_IsolatesFailures(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()

	good := finishedMatch(20, 71, 1, 2, 2, 2)
	p.parser.put(good)
	goodID := rootOnly(t, p, good)

	// The parser forgets this payload, so re-parsing it fails.
	badID := rootOnly(t, p, finishedMatch(21, 71, 3, 4, 1, 0))

	result, err := p.backfill.Run(ctx, BackfillInput{MaxWorkers: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, 2, result.WorkerCount)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], strconv.FormatInt(badID, 10))

	_, ok := p.stats.MatchStats(goodID)
	assert.True(t, ok)
}

func TestBackfillService_Run_ExplicitIDs(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()

	parsed := finishedMatch(30, 71, 1, 2, 1, 1)
	p.parser.put(parsed)
	result, err := p.ingestion.IngestParsed(ctx, parsed, []byte("30"))
	require.NoError(t, err)

	out, err := p.backfill.Run(ctx, BackfillInput{MatchIDs: []int64{result.MatchID, result.MatchID}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Candidates)
	assert.Equal(t, 1, out.Skipped)

	_, err = p.backfill.Run(ctx, BackfillInput{MatchIDs: []int64{9999}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBackfillService_Run_QueueDrainsPastStatslessMatches(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()

	// Finished payloads without a stats section never produce a stats row.
	var statsless []int64
	for _, providerID := range []int64{40, 41} {
		parsed := finishedMatch(providerID, 71, 1, 2, 0, 0)
		parsed.Stats = nil
		p.parser.put(parsed)
		statsless = append(statsless, rootOnly(t, p, parsed))
	}
	live := unfinishedMatch(42, 71, 3, 4)
	p.parser.put(live)
	liveID := rootOnly(t, p, live)

	ready := finishedMatch(43, 71, 5, 6, 3, 1)
	p.parser.put(ready)
	readyID := rootOnly(t, p, ready)

	first, err := p.backfill.Run(ctx, BackfillInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Matches, 2)
	assert.Equal(t, statsless, []int64{first.Matches[0].MatchID, first.Matches[1].MatchID})

	second, err := p.backfill.Run(ctx, BackfillInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, second.Matches, 1)
	assert.Equal(t, readyID, second.Matches[0].MatchID)
	assert.Equal(t, 1, second.Succeeded)

	_, ok := p.stats.MatchStats(readyID)
	assert.True(t, ok)
	_, ok = p.stats.MatchStats(liveID)
	assert.False(t, ok)

	third, err := p.backfill.Run(ctx, BackfillInput{Limit: 2})
	require.NoError(t, err)
	assert.Zero(t, third.Candidates)
}

func TestBackfillService_Run_SkipsUnfinishedPayload(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()

	live := unfinishedMatch(50, 71, 1, 2)
	p.parser.put(live)
	liveID := rootOnly(t, p, live)

	out, err := p.backfill.Run(ctx, BackfillInput{MatchIDs: []int64{liveID}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Skipped)
	assert.Zero(t, out.Failed)
	require.Len(t, out.Matches, 1)
	assert.Contains(t, out.Matches[0].Message, "not finished")

	_, ok := p.stats.MatchStats(liveID)
	assert.False(t, ok)

	final, err := p.ingestion.IngestParsed(ctx, finishedMatch(50, 71, 1, 2, 1, 1), []byte("50"))
	require.NoError(t, err)
	assert.Equal(t, liveID, final.MatchID)
	assert.Len(t, final.WrittenSets, 9)
}

func TestPermanentBackfillFailure(t *testing.T) {
	t.Parallel()

	assert.True(t, permanentBackfillFailure(errBackfillUnfinished))
	assert.True(t, permanentBackfillFailure(fmt.Errorf("parse: %w", ErrMalformedPayload)))
	assert.True(t, permanentBackfillFailure(ErrInvalidInput))
	assert.False(t, permanentBackfillFailure(ErrPersistenceConflict))
	assert.False(t, permanentBackfillFailure(errors.New("connection reset by peer")))
}

func TestNormalizeBackfillWorkerCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value int
		tasks int
		want  int
	}{
		{value: 0, tasks: 10, want: 1},
		{value: 3, tasks: 10, want: 3},
		{value: 9, tasks: 10, want: maxBackfillWorkers},
		{value: 4, tasks: 2, want: 2},
		{value: 2, tasks: 0, want: 1},
	}
	for _, tc := range cases {
		if got := normalizeBackfillWorkerCount(tc.value, tc.tasks); got != tc.want {
			t.Fatalf("unexpected worker count value=%d tasks=%d: got=%d want=%d", tc.value, tc.tasks, got, tc.want)
		}
	}
}

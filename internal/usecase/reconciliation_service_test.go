package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scanBase = time.Date(2024, time.December, 7, 12, 0, 0, 0, time.UTC)

func TestReconciliationService_Scan_StopsLeagueAtFirstUnfinished(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()

	t1 := p.seedFixture(71, 101, scanBase.Add(-3*time.Hour))
	t2 := p.seedFixture(71, 102, scanBase.Add(-2*time.Hour))
	t3 := p.seedFixture(71, 103, scanBase.Add(-1*time.Hour))
	p.parser.put(finishedMatch(101, 71, 10, 20, 1, 0))
	p.parser.put(unfinishedMatch(102, 71, 30, 40))
	p.parser.put(finishedMatch(103, 71, 50, 60, 2, 2))

	result, err := p.scanner.Scan(ctx, ScanInput{})
	require.NoError(t, err)

	assert.Equal(t, []int64{101, 102}, p.provider.fetched())
	assert.Equal(t, 1, result.LeagueCount)
	assert.Equal(t, 2, result.TotalChecked)
	assert.Equal(t, 1, result.FinishedCount)
	assert.Equal(t, 1, result.ProcessedCount)
	assert.Zero(t, result.ErrorCount)

	first, _ := p.fixtures.Get(t1)
	second, _ := p.fixtures.Get(t2)
	third, _ := p.fixtures.Get(t3)
	assert.True(t, first.Processed)
	assert.False(t, second.Processed)
	assert.False(t, third.Processed)
}

func TestReconciliationService_Scan_ContinuesWithOtherLeagues(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	p.seedFixture(71, 201, scanBase.Add(-2*time.Hour))
	p.seedFixture(71, 202, scanBase.Add(-1*time.Hour))
	p.seedFixture(47, 301, scanBase.Add(-2*time.Hour))
	p.parser.put(unfinishedMatch(201, 71, 10, 20))
	p.parser.put(finishedMatch(202, 71, 30, 40, 1, 1))
	p.parser.put(finishedMatch(301, 47, 50, 60, 3, 0))

	result, err := p.scanner.Scan(context.Background(), ScanInput{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.LeagueCount)
	assert.ElementsMatch(t, []int64{201, 301}, p.provider.fetched())
	assert.Equal(t, 1, result.ProcessedCount)
	require.Len(t, result.FinishedMatches, 1)
	assert.Equal(t, int64(301), result.FinishedMatches[0].ProviderMatchID)
	assert.True(t, result.FinishedMatches[0].Processed)
}

func TestReconciliationService_Scan_IsolatesFixtureFailures(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	failing := p.seedFixture(71, 401, scanBase.Add(-3*time.Hour))
	malformed := p.seedFixture(71, 402, scanBase.Add(-2*time.Hour))
	healthy := p.seedFixture(71, 403, scanBase.Add(-1*time.Hour))
	p.provider.failing[401] = errStubProvider
	p.parser.put(finishedMatch(403, 71, 10, 20, 2, 0))

	result, err := p.scanner.Scan(context.Background(), ScanInput{})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalChecked)
	assert.Equal(t, 2, result.ErrorCount)
	assert.Equal(t, 1, result.ProcessedCount)
	require.Len(t, result.Errors, 2)
	assert.True(t, strings.HasPrefix(result.Errors[0], "provider error for match 401"), result.Errors[0])
	assert.Contains(t, result.Errors[1], "Home 402 vs Away 402")

	for _, id := range []int64{failing, malformed} {
		item, _ := p.fixtures.Get(id)
		assert.False(t, item.Processed, "fixture %d must stay eligible", id)
	}
	item, _ := p.fixtures.Get(healthy)
	assert.True(t, item.Processed)
	require.NotNil(t, item.ProcessedAt)
}

func TestReconciliationService_Scan_RecoversIngestionPanic(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	id := p.seedFixture(71, 501, scanBase.Add(-time.Hour))
	p.parser.put(finishedMatch(501, 71, 10, 20, 1, 0))
	p.scanner.ingester = panickingIngester{}

	result, err := p.scanner.Scan(context.Background(), ScanInput{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FinishedCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Zero(t, result.ProcessedCount)
	assert.Contains(t, result.Errors[0], "panicked")

	item, _ := p.fixtures.Get(id)
	assert.False(t, item.Processed)
}

func TestReconciliationService_Scan_DryRunLeavesFixtures(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	id := p.seedFixture(71, 601, scanBase.Add(-time.Hour))
	p.parser.put(finishedMatch(601, 71, 10, 20, 4, 1))

	result, err := p.scanner.Scan(context.Background(), ScanInput{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.FinishedCount)
	assert.Zero(t, result.ProcessedCount)
	require.Len(t, result.FinishedMatches, 1)
	assert.Equal(t, 4, result.FinishedMatches[0].HomeScore)
	assert.False(t, result.FinishedMatches[0].Processed)
	assert.Zero(t, p.store.MatchCount())

	item, _ := p.fixtures.Get(id)
	assert.False(t, item.Processed)
}

func TestReconciliationService_Scan_HonoursCapAndFilters(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	p.seedFixture(71, 701, scanBase.Add(-3*time.Hour))
	p.seedFixture(71, 702, scanBase.Add(-2*time.Hour))
	p.seedFixture(47, 801, scanBase.Add(-2*time.Hour))
	p.seedFixture(71, 703, time.Now().Add(24*time.Hour))
	for _, id := range []int64{701, 702} {
		p.parser.put(finishedMatch(id, 71, id*10, id*10+1, 1, 0))
	}
	p.parser.put(finishedMatch(801, 47, 90, 91, 1, 0))

	result, err := p.scanner.Scan(context.Background(), ScanInput{LeagueProviderID: 71, MaxFixtures: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, result.LeagueCount)
	assert.Equal(t, 1, result.TotalChecked)
	assert.True(t, result.CapReached)
	assert.Equal(t, []int64{701}, p.provider.fetched())
}

func TestReconciliationService_Scan_ReturnsPartialResultOnCancel(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	p.seedFixture(71, 901, scanBase.Add(-2*time.Hour))
	p.seedFixture(71, 902, scanBase.Add(-time.Hour))
	p.parser.put(finishedMatch(901, 71, 10, 20, 1, 0))
	p.parser.put(finishedMatch(902, 71, 30, 40, 1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.scanner.Scan(ctx, ScanInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Zero(t, result.ProcessedCount)
	assert.Empty(t, p.provider.fetched())
}

func TestReconciliationService_CheckFinished(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	p.parser.put(finishedMatch(11, 71, 10, 20, 2, 1))
	p.parser.put(unfinishedMatch(12, 71, 30, 40))
	p.provider.failing[13] = errStubProvider

	rows, err := p.scanner.CheckFinished(context.Background(), []int64{11, 12, 13})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.True(t, rows[0].Finished)
	assert.Equal(t, 2, *rows[0].HomeScore)
	assert.False(t, rows[1].Finished)
	assert.Nil(t, rows[1].HomeScore)
	assert.NotEmpty(t, rows[2].Error)
	assert.Zero(t, p.store.MatchCount())

	_, err = p.scanner.CheckFinished(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReconciliationService_ListUnprocessedAndSummary(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()
	p.seedFixture(71, 1001, scanBase.Add(-2*time.Hour))
	p.seedFixture(71, 1002, scanBase.Add(-time.Hour))
	p.seedFixture(71, 1003, time.Now().Add(48*time.Hour))
	p.parser.put(finishedMatch(1001, 71, 10, 20, 1, 0))
	p.parser.put(unfinishedMatch(1002, 71, 30, 40))

	_, err := p.scanner.Scan(ctx, ScanInput{})
	require.NoError(t, err)

	pending, err := p.scanner.ListUnprocessed(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1002), pending[0].ProviderMatchID)

	summary, err := p.scanner.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Fixtures.Total)
	assert.Equal(t, 1, summary.Fixtures.Processed)
	assert.Equal(t, 2, summary.Fixtures.Unprocessed)
	assert.Equal(t, 1, summary.Fixtures.ReadyToProcess)
	assert.Equal(t, 1, summary.Matches.Total)
	assert.Equal(t, 1, summary.Matches.Finished)
}

type panickingIngester struct{}

func (panickingIngester) IngestParsed(context.Context, ParsedMatch, []byte) (IngestResult, error) {
	panic("boom")
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smuti/greydb-api/internal/domain/fixture"
	"github.com/smuti/greydb-api/internal/domain/league"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/infrastructure/repository/memory"
	fixturemock "github.com/smuti/greydb-api/internal/mocks/domain/fixture"
	leaguemock "github.com/smuti/greydb-api/internal/mocks/domain/league"
	matchmock "github.com/smuti/greydb-api/internal/mocks/domain/match"
	"github.com/stretchr/testify/mock"
)

func TestReconciliationService_Scan_ListLeaguesFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixtureRepo := fixturemock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	provider := newStubProvider()

	fixtureRepo.
		On("ListDueLeagues", mock.Anything, mock.AnythingOfType("time.Time"), int64(71)).
		Return(nil, errors.New("connection reset")).
		Once()

	svc := NewReconciliationService(fixtureRepo, matchRepo, provider, newStubParser(), nil, ReconciliationConfig{FetchInterval: time.Millisecond}, nil)
	_, err := svc.Scan(ctx, ScanInput{LeagueProviderID: 71})
	if err == nil {
		t.Fatalf("expected list failure")
	}
	if len(provider.fetched()) != 0 {
		t.Fatalf("provider must not be called: got=%v", provider.fetched())
	}
}

func TestReconciliationService_Scan_MarkFailureKeepsFixtureEligibleUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := newTestPipeline()
	fixtureRepo := fixturemock.NewRepository(t)
	due := fixture.Fixture{ID: 7, ProviderMatchID: 5001, LeagueID: 1, HomeTeam: "A", AwayTeam: "B"}

	fixtureRepo.
		On("ListDueLeagues", mock.Anything, mock.Anything, int64(0)).
		Return([]fixture.DueLeague{{LeagueID: 1, DueCount: 1}}, nil).
		Once()
	fixtureRepo.
		On("ListDueByLeague", mock.Anything, int64(1), mock.Anything, defaultScanLimitPerLeague).
		Return([]fixture.Fixture{due}, nil).
		Once()
	fixtureRepo.
		On("MarkProcessed", mock.Anything, int64(7), mock.Anything).
		Return(errors.New("deadlock detected")).
		Once()

	p.parser.put(finishedMatch(5001, 71, 10, 20, 1, 0))
	svc := NewReconciliationService(fixtureRepo, p.matches, p.provider, p.parser, p.ingestion, ReconciliationConfig{FetchInterval: time.Millisecond}, nil)

	result, err := svc.Scan(ctx, ScanInput{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.ProcessedCount != 0 || result.ErrorCount != 1 {
		t.Fatalf("unexpected counters: processed=%d errors=%d", result.ProcessedCount, result.ErrorCount)
	}
	if p.store.MatchCount() != 1 {
		t.Fatalf("match must be ingested before marking: got=%d want=1", p.store.MatchCount())
	}
}

func TestReconciliationService_Scan_LeagueListFailureMovesOnUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := newTestPipeline()
	fixtureRepo := fixturemock.NewRepository(t)
	due := fixture.Fixture{ID: 9, ProviderMatchID: 6001, LeagueID: 2, HomeTeam: "C", AwayTeam: "D"}

	fixtureRepo.
		On("ListDueLeagues", mock.Anything, mock.Anything, int64(0)).
		Return([]fixture.DueLeague{{LeagueID: 1, LeagueProviderID: 71, DueCount: 3}, {LeagueID: 2, LeagueProviderID: 47, DueCount: 1}}, nil).
		Once()
	fixtureRepo.
		On("ListDueByLeague", mock.Anything, int64(1), mock.Anything, defaultScanLimitPerLeague).
		Return([]fixture.Fixture(nil), errors.New("canceling statement due to statement timeout")).
		Once()
	fixtureRepo.
		On("ListDueByLeague", mock.Anything, int64(2), mock.Anything, defaultScanLimitPerLeague).
		Return([]fixture.Fixture{due}, nil).
		Once()
	fixtureRepo.
		On("MarkProcessed", mock.Anything, int64(9), mock.Anything).
		Return(nil).
		Once()

	p.parser.put(finishedMatch(6001, 47, 10, 20, 0, 2))
	svc := NewReconciliationService(fixtureRepo, p.matches, p.provider, p.parser, p.ingestion, ReconciliationConfig{FetchInterval: time.Millisecond}, nil)

	result, err := svc.Scan(ctx, ScanInput{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.ErrorCount != 1 || result.ProcessedCount != 1 {
		t.Fatalf("unexpected counters: processed=%d errors=%d", result.ProcessedCount, result.ErrorCount)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "league 71") {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestEntityResolver_ResolveLeague_StorageFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	storageErr := errors.New("too many connections")

	leagueRepo.
		On("GetByProviderID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), int64(71)).
		Return(league.League{}, false, nil).
		Once()
	leagueRepo.
		On("Ensure", mock.Anything, mock.MatchedBy(func(item league.League) bool {
			return item.ProviderID == 71 && item.Name == "Super Lig" && item.Season == "2025/2026"
		})).
		Return(int64(0), storageErr).
		Once()

	resolver := NewEntityResolver(leagueRepo, memory.NewTeamRepository(memory.NewStore()), "2025/2026", nil)
	_, err := resolver.ResolveLeague(ctx, ExternalLeague{ProviderID: 71, Name: "Super Lig"})
	if !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestBackfillService_Run_CandidateListFailureUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	matchRepo.
		On("ListBackfillCandidates", mock.Anything, 25).
		Return([]match.Match(nil), errors.New("statement timeout")).
		Once()

	svc := NewBackfillService(matchRepo, newStubParser(), nil, BackfillConfig{BatchSize: 25}, nil)
	if _, err := svc.Run(context.Background(), BackfillInput{}); err == nil {
		t.Fatalf("expected candidate list failure")
	}
}

func TestBackfillService_Run_MarksPermanentFailuresUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	matchRepo.
		On("ListBackfillCandidates", mock.Anything, 25).
		Return([]match.Match{{ID: 7, ProviderMatchID: 70, Finished: true}}, nil).
		Once()
	matchRepo.
		On("MarkBackfillAttempted", mock.Anything, int64(7)).
		Return(nil).
		Once()

	svc := NewBackfillService(matchRepo, newStubParser(), nil, BackfillConfig{BatchSize: 25}, nil)
	result, err := svc.Run(context.Background(), BackfillInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("expected the payload-less match to fail, got %+v", result)
	}
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFormStats(t *testing.T) {
	t.Parallel()

	got := ComputeFormStats([]FormMatch{
		{GoalsFor: 2, GoalsAgainst: 1, Result: "W"},
		{GoalsFor: 0, GoalsAgainst: 0, Result: "D"},
		{GoalsFor: 1, GoalsAgainst: 3, Result: "L"},
	})
	require.NotNil(t, got)

	assert.Equal(t, 3, got.Played)
	assert.Equal(t, 4, got.Points)
	assert.Equal(t, -1, got.GoalDiff)
	assert.Equal(t, 1.0, got.AvgGoalsFor)
	assert.Equal(t, 1.33, got.AvgGoalsAgainst)
	assert.Equal(t, 2.33, got.AvgTotalGoals)
	assert.Equal(t, 66.7, got.BTTSPct)
	assert.Equal(t, "WDL", got.FormString)

	assert.Nil(t, ComputeFormStats(nil))
}

func TestComputeHeadToHeadStats_OrientsToTeam1(t *testing.T) {
	t.Parallel()

	results := []match.Result{
		{HomeTeamProviderID: 1, AwayTeamProviderID: 2, HomeScore: 2, AwayScore: 0},
		{HomeTeamProviderID: 2, AwayTeamProviderID: 1, HomeScore: 1, AwayScore: 1},
		{HomeTeamProviderID: 2, AwayTeamProviderID: 1, HomeScore: 3, AwayScore: 1},
	}

	got := ComputeHeadToHeadStats(1, results)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.TotalMatches)
	assert.Equal(t, 1, got.Team1Wins)
	assert.Equal(t, 1, got.Team2Wins)
	assert.Equal(t, 1, got.Draws)
	assert.Equal(t, 4, got.Team1Goals)
	assert.Equal(t, 4, got.Team2Goals)
	assert.Equal(t, 2.67, got.AvgTotalGoals)
	assert.Equal(t, 66.7, got.BTTSPct)
}

func TestTeamFormService_FormAndHeadToHead(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	ctx := context.Background()
	svc := NewTeamFormService(p.matches, p.teams, p.h2h, nil)

	games := []ParsedMatch{
		finishedMatch(1, 71, 10, 20, 2, 0),
		finishedMatch(2, 71, 30, 10, 1, 1),
		finishedMatch(3, 71, 20, 10, 3, 1),
		unfinishedMatch(4, 71, 10, 30),
	}
	for _, item := range games {
		_, err := p.ingestion.IngestParsed(ctx, item, nil)
		require.NoError(t, err)
	}

	form, err := svc.Form(ctx, TeamFormInput{TeamProviderID: 10})
	require.NoError(t, err)
	assert.Equal(t, "Team 10", form.TeamName)
	require.Len(t, form.Matches, 3)
	assert.Equal(t, int64(3), form.Matches[0].ProviderMatchID, "newest first")
	require.NotNil(t, form.Stats)
	assert.Equal(t, "LDW", form.Stats.FormString)

	home, err := svc.Form(ctx, TeamFormInput{TeamProviderID: 10, Venue: "home"})
	require.NoError(t, err)
	require.Len(t, home.Matches, 1)
	assert.Equal(t, "W", home.Matches[0].Result)

	_, err = svc.Form(ctx, TeamFormInput{TeamProviderID: 10, Venue: "neutral"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	h2hView, err := svc.HeadToHead(ctx, HeadToHeadInput{Team1ProviderID: 10, Team2ProviderID: 20})
	require.NoError(t, err)
	require.Len(t, h2hView.Matches, 2)
	require.NotNil(t, h2hView.Stats)
	assert.Equal(t, 1, h2hView.Stats.Team1Wins)
	assert.Equal(t, 1, h2hView.Stats.Team2Wins)
	assert.Equal(t, "H", h2hView.Matches[0].Result)

	// The snapshot comes from match 1 where team 10 hosted.
	require.NotNil(t, h2hView.Snapshot)
	assert.Equal(t, 5, h2hView.Snapshot.Team1Wins)
	assert.Equal(t, 3, h2hView.Snapshot.Team2Wins)
	assert.InDelta(t, 1.6, h2hView.Snapshot.AvgGoals1, 1e-9)

	reversed, err := svc.HeadToHead(ctx, HeadToHeadInput{Team1ProviderID: 20, Team2ProviderID: 10})
	require.NoError(t, err)
	require.NotNil(t, reversed.Snapshot)
	assert.Equal(t, 3, reversed.Snapshot.Team1Wins)

	homeOnly, err := svc.HeadToHead(ctx, HeadToHeadInput{Team1ProviderID: 10, Team2ProviderID: 20, HomeOnly: true})
	require.NoError(t, err)
	assert.Len(t, homeOnly.Matches, 1)

	empty, err := svc.HeadToHead(ctx, HeadToHeadInput{Team1ProviderID: 10, Team2ProviderID: 999})
	require.NoError(t, err)
	assert.Empty(t, empty.Matches)
	assert.Nil(t, empty.Stats)
	assert.Nil(t, empty.Snapshot)
}

func TestTeamFormService_ValidatesInput(t *testing.T) {
	t.Parallel()

	p := newTestPipeline()
	svc := NewTeamFormService(p.matches, p.teams, p.h2h, nil)

	_, err := svc.Form(context.Background(), TeamFormInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.HeadToHead(context.Background(), HeadToHeadInput{Team1ProviderID: 5, Team2ProviderID: 5})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	if got := clampLimit(0, 5, 20); got != 5 {
		t.Fatalf("unexpected default limit: got=%d want=5", got)
	}
	if got := clampLimit(50, 5, 20); got != 20 {
		t.Fatalf("unexpected capped limit: got=%d want=20", got)
	}
}

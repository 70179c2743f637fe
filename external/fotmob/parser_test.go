package fotmob

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/smuti/greydb-api/internal/domain/lineup"
	"github.com/smuti/greydb-api/internal/domain/match"
	"github.com/smuti/greydb-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return raw
}

func TestParseRound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input any
		want  int
	}{
		{name: "nil", input: nil, want: 0},
		{name: "empty", input: "  ", want: 0},
		{name: "number", input: float64(7), want: 7},
		{name: "numeric string", input: "14", want: 14},
		{name: "round of sixteen fraction", input: "1/16", want: 16},
		{name: "quarter fraction", input: "1/4", want: 4},
		{name: "semi fraction", input: "1/2", want: 2},
		{name: "non unit fraction", input: "2/3", want: 0},
		{name: "final", input: "Final", want: 1},
		{name: "finale", input: "FINALE", want: 1},
		{name: "semi final", input: "Semi-finals", want: 2},
		{name: "quarter final", input: "Quarter-final", want: 4},
		{name: "embedded digits", input: "Round 23 (replay 2)", want: 23},
		{name: "no digits", input: "Group stage", want: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseRound(tc.input); got != tc.want {
				t.Fatalf("unexpected round: got=%d want=%d", got, tc.want)
			}
		})
	}
}

func TestParseRound_FractionDenominators(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 64; n++ {
		label := "1/" + strconv.Itoa(n)
		if got := ParseRound(label); got != n {
			t.Fatalf("unexpected round for %q: got=%d want=%d", label, got, n)
		}
	}
}

func TestParseCountPct(t *testing.T) {
	t.Parallel()

	count, pct := ParseCountPct("45(23.5%)")
	require.NotNil(t, count)
	require.NotNil(t, pct)
	assert.Equal(t, 45, *count)
	assert.InDelta(t, 23.5, *pct, 1e-9)

	count, pct = ParseCountPct("455 (86%)")
	require.NotNil(t, count)
	require.NotNil(t, pct)
	assert.Equal(t, 455, *count)
	assert.InDelta(t, 86.0, *pct, 1e-9)

	count, pct = ParseCountPct("67%")
	assert.Nil(t, count)
	require.NotNil(t, pct)
	assert.InDelta(t, 67.0, *pct, 1e-9)

	count, pct = ParseCountPct(nil)
	assert.Nil(t, count)
	assert.Nil(t, pct)

	count, pct = ParseCountPct(float64(12))
	require.NotNil(t, count)
	assert.Equal(t, 12, *count)
	assert.Nil(t, pct)

	count, pct = ParseCountPct("n/a")
	assert.Nil(t, count)
	assert.Nil(t, pct)
}

func TestParser_ParseFinishedMatch(t *testing.T) {
	t.Parallel()

	parsed, err := NewParser().Parse(loadFixture(t, "match_details_finished.json"))
	require.NoError(t, err)

	assert.Equal(t, int64(4506263), parsed.ProviderMatchID)
	assert.Equal(t, usecase.ExternalLeague{ProviderID: 71, Name: "Super Lig", CountryCode: "TUR", Season: "2024/2025"}, parsed.League)
	assert.Equal(t, int64(8637), parsed.HomeTeam.ProviderID)
	assert.Equal(t, "Besiktas", parsed.AwayTeam.Name)
	assert.Equal(t, 14, parsed.Round)
	require.NotNil(t, parsed.MatchDate)
	assert.True(t, parsed.MatchDate.Equal(time.Date(2024, time.December, 7, 17, 0, 0, 0, time.UTC)))
	assert.True(t, parsed.HasFinalScore())
	assert.Equal(t, 2, *parsed.HomeScore)
	assert.Equal(t, 1, *parsed.AwayScore)
}

func TestParser_ParseStats(t *testing.T) {
	t.Parallel()

	parsed, err := NewParser().Parse(loadFixture(t, "match_details_finished.json"))
	require.NoError(t, err)
	require.NotNil(t, parsed.Stats)

	stats := parsed.Stats
	require.NotNil(t, stats.Home.XG)
	require.NotNil(t, stats.Away.XG)
	assert.InDelta(t, 1.8, *stats.Home.XG, 1e-9)
	assert.InDelta(t, 0.9, *stats.Away.XG, 1e-9)
	assert.Equal(t, 15, stats.Home.Shots)
	assert.Equal(t, 3, stats.Away.ShotsOnTarget)
	assert.InDelta(t, 58.0, *stats.Home.Possession, 1e-9)
	assert.Equal(t, 7, stats.Home.Corners)
	assert.Equal(t, 14, stats.Away.Fouls)
	assert.Equal(t, 3, stats.Away.YellowCards)
	assert.Equal(t, 0, stats.Home.RedCards)

	adv := parsed.AdvancedStats
	require.NotNil(t, adv)
	assert.InDelta(t, 86.0, *adv.Home.PassAccuracy, 1e-9)
	assert.Equal(t, 5, *adv.Home.ShotsOffTarget)
	assert.Equal(t, 2, *adv.Away.ShotsBlocked)
	assert.InDelta(t, 1.21, *adv.Home.OpenPlayXG, 1e-9)
	assert.Equal(t, 12, *adv.Home.AerialDuelsWon)
	assert.InDelta(t, 45.0, *adv.Away.AerialDuelsPct, 1e-9)
	assert.InDelta(t, 52.0, *adv.Home.DuelsWonPct, 1e-9)
	assert.Nil(t, adv.Home.DuelsWon)
	assert.Equal(t, 7, *adv.Home.DribblesSuccessful)
	assert.Nil(t, adv.Away.DribblesSuccessful)
	assert.Nil(t, adv.Away.DribblesPct)
	assert.Nil(t, adv.Home.TotalPasses)
	assert.Equal(t, 4, *adv.Away.Offsides)
}

func TestParser_DefaultsWhenMetricsAbsent(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"general":{"matchId":1},"content":{"stats":{"Periods":{"All":{"stats":[{"stats":[{"key":"corners","stats":[3]}]}]}}}}}`)
	parsed, err := NewParser().Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, parsed.Stats)

	assert.Nil(t, parsed.Stats.Home.XG)
	assert.Nil(t, parsed.Stats.Away.XG)
	assert.Equal(t, 3, parsed.Stats.Home.Corners)
	assert.Equal(t, 0, parsed.Stats.Away.Corners)
	assert.Equal(t, 0, parsed.Stats.Home.Shots)
	assert.InDelta(t, 50.0, *parsed.Stats.Home.Possession, 1e-9)
	assert.InDelta(t, 50.0, *parsed.Stats.Away.Possession, 1e-9)
	assert.Nil(t, parsed.AdvancedStats)
}

func TestParser_MissingSectionsRecordNothing(t *testing.T) {
	t.Parallel()

	parsed, err := NewParser().Parse([]byte(`{"general":{"matchId":"77","matchRound":"Quarter-final"},"content":{"lineup":"broken","matchFacts":null}}`))
	require.NoError(t, err)

	assert.Equal(t, 4, parsed.Round)
	assert.Nil(t, parsed.HomeScore)
	assert.Nil(t, parsed.AwayScore)
	assert.False(t, parsed.HasFinalScore())
	assert.Nil(t, parsed.Stats)
	assert.Nil(t, parsed.AdvancedStats)
	assert.Nil(t, parsed.Context)
	assert.Nil(t, parsed.Formations)
	assert.Empty(t, parsed.Lineups)
	assert.Empty(t, parsed.Events)
	assert.Empty(t, parsed.Availability)
	assert.Empty(t, parsed.PlayerStats)
	assert.Nil(t, parsed.H2H)
}

func TestParser_RejectsUnidentifiablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewParser().Parse([]byte(`{"general":{}}`))
	if !errors.Is(err, usecase.ErrMalformedPayload) {
		t.Fatalf("expected malformed payload error, got=%v", err)
	}

	_, err = NewParser().Parse([]byte(`[1,2,3]`))
	if !errors.Is(err, usecase.ErrMalformedPayload) {
		t.Fatalf("expected malformed payload error for array, got=%v", err)
	}
}

func TestParser_ParseContextAndFormations(t *testing.T) {
	t.Parallel()

	parsed, err := NewParser().Parse(loadFixture(t, "match_details_finished.json"))
	require.NoError(t, err)

	require.NotNil(t, parsed.Context)
	assert.Equal(t, "RAMS Park", parsed.Context.StadiumName)
	assert.Equal(t, 52280, *parsed.Context.StadiumCapacity)
	assert.Equal(t, 51932, *parsed.Context.Attendance)
	assert.Equal(t, "Arda Kardesler", parsed.Context.Referee)
	assert.Equal(t, "Cloudy", parsed.Context.WeatherCondition)
	assert.InDelta(t, 11.5, *parsed.Context.WeatherTemp, 1e-9)

	require.NotNil(t, parsed.Formations)
	assert.Equal(t, "4-2-3-1", parsed.Formations.HomeFormation)
	assert.Equal(t, "4-3-3", parsed.Formations.AwayFormation)
}

func TestParser_ParseEvents(t *testing.T) {
	t.Parallel()

	parsed, err := NewParser().Parse(loadFixture(t, "match_details_finished.json"))
	require.NoError(t, err)
	require.Len(t, parsed.Events, 6)

	first := parsed.Events[0]
	assert.Equal(t, match.EventGoal, first.Type)
	assert.Equal(t, match.SideHome, first.Side)
	assert.Equal(t, "Victor Osimhen", first.PlayerName)
	assert.Equal(t, "assist by Baris Alper Yilmaz", first.AssistedBy)
	assert.NotEmpty(t, first.RawEvent)

	card := parsed.Events[1]
	assert.Equal(t, match.EventYellowCard, card.Type)
	assert.Equal(t, match.SideAway, card.Side)

	ownGoal := parsed.Events[2]
	assert.Equal(t, match.EventGoal, ownGoal.Type)
	assert.True(t, ownGoal.IsOwnGoal)
	assert.Equal(t, "Romain Saiss", ownGoal.PlayerName)

	sub := parsed.Events[3]
	assert.Equal(t, match.EventSubstitution, sub.Type)
	assert.Equal(t, "Ciro Immobile", sub.PlayerOut)
	assert.Equal(t, "Semih Kilicsoy", sub.PlayerIn)
	assert.Equal(t, "Ciro Immobile", sub.PlayerName)
	assert.Nil(t, sub.AddedTime)

	penalty := parsed.Events[4]
	assert.True(t, penalty.IsPenalty)
	assert.Equal(t, 3, *penalty.AddedTime)
	assert.Empty(t, penalty.AssistedBy)

	assert.Equal(t, match.EventType("HALF"), parsed.Events[5].Type)
}

func TestParser_ParseTeamSheets(t *testing.T) {
	t.Parallel()

	parsed, err := NewParser().Parse(loadFixture(t, "match_details_finished.json"))
	require.NoError(t, err)
	require.Len(t, parsed.Lineups, 4)

	keeper := parsed.Lineups[0]
	assert.Equal(t, "Fernando Muslera", keeper.PlayerName)
	assert.True(t, keeper.IsStarter)
	assert.Equal(t, 1, *keeper.ShirtNumber)
	assert.Equal(t, "11", keeper.Position)
	assert.Equal(t, "GK", keeper.PositionRole)
	assert.InDelta(t, 1.5, *keeper.MarketValueM, 1e-9)
	assert.InDelta(t, 7.1, *keeper.SeasonRating, 1e-9)

	sub := parsed.Lineups[2]
	assert.Equal(t, "Mauro Icardi", sub.PlayerName)
	assert.False(t, sub.IsStarter)
	assert.Nil(t, sub.MarketValueM)
	assert.Equal(t, match.SideAway, parsed.Lineups[3].Side)

	require.Len(t, parsed.Availability, 2)
	assert.Equal(t, lineup.Availability{Side: match.SideHome, PlayerName: "Mauro Icardi", Status: lineup.StatusUnavailable, Reason: "Knee injury"}, parsed.Availability[0])
	assert.Equal(t, "Suspended", parsed.Availability[1].Reason)
}

func TestParser_ParsePlayerStats(t *testing.T) {
	t.Parallel()

	parsed, err := NewParser().Parse(loadFixture(t, "match_details_finished.json"))
	require.NoError(t, err)
	require.Len(t, parsed.PlayerStats, 2)

	striker := parsed.PlayerStats[0]
	assert.Equal(t, match.SideHome, striker.Side)
	assert.Equal(t, int64(102), striker.ProviderPlayerID)
	assert.InDelta(t, 8.4, *striker.Rating, 1e-9)
	assert.Equal(t, 90, *striker.MinutesPlayed)
	assert.Equal(t, 1, striker.Goals)
	assert.Equal(t, 19, striker.TotalPasses)
	assert.Equal(t, 14, striker.AccuratePasses)
	assert.Equal(t, 3, striker.ShotsOnTarget)
	assert.Nil(t, striker.Saves)

	keeper := parsed.PlayerStats[1]
	assert.Equal(t, match.SideAway, keeper.Side)
	assert.True(t, keeper.IsGoalkeeper)
	assert.Equal(t, 4, *keeper.Saves)
	assert.Equal(t, 2, *keeper.GoalsConceded)
	assert.Nil(t, keeper.XG)
}

func TestParser_ParseH2HOrientsScoresToHomeTeam(t *testing.T) {
	t.Parallel()

	parsed, err := NewParser().Parse(loadFixture(t, "match_details_finished.json"))
	require.NoError(t, err)
	require.NotNil(t, parsed.H2H)

	assert.Equal(t, 22, parsed.H2H.Total())
	assert.Equal(t, 10, parsed.H2H.HomeWins)
	assert.Equal(t, 7, parsed.H2H.AwayWins)
	assert.InDelta(t, 2.5, parsed.H2H.AvgHomeGoals, 1e-9)
	assert.InDelta(t, 0.5, parsed.H2H.AvgAwayGoals, 1e-9)
}

func TestParser_H2HWithEmptySummaryIsSkipped(t *testing.T) {
	t.Parallel()

	parsed, err := NewParser().Parse([]byte(`{"general":{"matchId":5},"content":{"h2h":{"summary":[0,0,0],"matches":[]}}}`))
	require.NoError(t, err)
	assert.Nil(t, parsed.H2H)
}

package fixture

import (
	"context"
	"time"
)

type Repository interface {
	// ListDueLeagues returns leagues holding unprocessed fixtures that kicked off before now.
	// A positive leagueProviderID restricts the result to that league.
	ListDueLeagues(ctx context.Context, now time.Time, leagueProviderID int64) ([]DueLeague, error)
	// ListDueByLeague returns due fixtures of one league ordered by kickoff ascending.
	ListDueByLeague(ctx context.Context, leagueID int64, now time.Time, limit int) ([]Fixture, error)
	ListDue(ctx context.Context, now time.Time, leagueProviderID int64, limit int) ([]Fixture, error)
	MarkProcessed(ctx context.Context, fixtureID int64, at time.Time) error
	Summary(ctx context.Context, now time.Time) (Summary, error)
}

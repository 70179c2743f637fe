package teamstats

import "context"

// Repository stores the 1:1 stats sets of a match. Inserts report false when
// the row already exists.
type Repository interface {
	InsertMatchStats(ctx context.Context, item MatchStats) (bool, error)
	InsertAdvancedStats(ctx context.Context, item AdvancedStats) (bool, error)
}

package playerstats

import "context"

type Repository interface {
	// InsertMatchStats is write-once per match.
	InsertMatchStats(ctx context.Context, matchID int64, items []MatchStat) (bool, error)
}

package h2h

import "context"

type Repository interface {
	// InsertIfAbsent stores item unless the pair already has a snapshot.
	InsertIfAbsent(ctx context.Context, item Stat) (bool, error)
	GetByPair(ctx context.Context, teamA, teamB int64) (Stat, bool, error)
}

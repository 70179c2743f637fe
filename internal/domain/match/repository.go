package match

import "context"

// Repository persists match roots and serves finished-match reads.
type Repository interface {
	// Upsert inserts item or, when its provider match id exists, refreshes
	// score, finished and raw payload only.
	Upsert(ctx context.Context, item Match) (UpsertOutcome, error)
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	GetByProviderID(ctx context.Context, providerMatchID int64) (Match, bool, error)
	// ListBackfillCandidates returns finished matches with a stored payload and
	// no stats row, skipping those already attempted since their last upsert.
	ListBackfillCandidates(ctx context.Context, limit int) ([]Match, error)
	// MarkBackfillAttempted takes a match out of the backfill queue until its
	// root is upserted again.
	MarkBackfillAttempted(ctx context.Context, id int64) error
	ListTeamResults(ctx context.Context, query ResultQuery) ([]Result, error)
	ListHeadToHead(ctx context.Context, query HeadToHeadQuery) ([]Result, error)
	Summary(ctx context.Context) (Summary, error)
}

// FactsRepository writes the write-once match facts sets. Every insert reports
// whether rows were written; false means the set already existed.
type FactsRepository interface {
	InsertContext(ctx context.Context, item Context) (bool, error)
	InsertFormations(ctx context.Context, item Formations) (bool, error)
	InsertEvents(ctx context.Context, matchID int64, items []Event) (bool, error)
}

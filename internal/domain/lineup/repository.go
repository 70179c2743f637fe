package lineup

import "context"

// Repository stores the team-sheet sets of a match. Both inserts are
// write-once per match and report false when the set already exists.
type Repository interface {
	InsertPlayers(ctx context.Context, matchID int64, items []Player) (bool, error)
	InsertAvailability(ctx context.Context, matchID int64, items []Availability) (bool, error)
}

package jobscheduler

import "context"

// Repository persists dispatch events. A later event for the same DispatchID
// updates the existing row instead of adding one.
type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
}

package team

import "context"

type Repository interface {
	GetByProviderID(ctx context.Context, providerID int64) (Team, bool, error)
	// Ensure returns the id stored for item.ProviderID, inserting item when absent.
	Ensure(ctx context.Context, item Team) (int64, error)
}

package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	GetByProviderID(ctx context.Context, providerID int64) (League, bool, error)
	// Ensure returns the id stored for item.ProviderID, inserting item when absent.
	Ensure(ctx context.Context, item League) (int64, error)
}

package notification

import "context"

// OffersStateRepository persists the offers broadcast marker
type OffersStateRepository interface {
	// Get returns the state for key, or a zero state with that key when no row exists yet
	Get(ctx context.Context, key string) (*OffersState, error)
	// Save upserts the state row
	Save(ctx context.Context, state *OffersState) error
}

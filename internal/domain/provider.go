package domain

import "context"

// FetchRequest identifies a remote deck.
type FetchRequest struct {
	StormID StormID
	Deck    FileDeck
	Mode    Mode
}

// Provider retrieves and decodes a deck. Implementations return at least one
// fix or an error wrapping ErrRetrieval.
type Provider interface {
	Fetch(ctx context.Context, req FetchRequest) (RecordTable, error)
}

// Resolver maps a storm name and year to its identity. It returns an error
// wrapping ErrIdentityResolution when no storm matches.
type Resolver interface {
	Resolve(ctx context.Context, name string, year int) (StormID, error)
}

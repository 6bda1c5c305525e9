package secrets

import "context"

// Identity addresses a stored credential by its schema attributes.
type Identity struct {
	Schema string
	Host   string
	Port   string
	User   string
}

// Record represents an encrypted secret entry persisted by a store.
type Record struct {
	Identity
	Version   string
	Label     string
	Cipher    []byte
	Nonce     []byte
	Metadata  map[string]any
	CreatedAt any
	UpdatedAt any
	DeletedAt any
}

// Store defines persistence operations for secret records.
type Store interface {
	Put(ctx context.Context, rec Record) error
	// GetLatest returns the most recently stored version for id.
	GetLatest(ctx context.Context, id Identity) (Record, error)
	Delete(ctx context.Context, id Identity) error
}

package store

import (
	"context"
	"database/sql"

	"kotoba/internal/domain"
)

// ContentStore defines the interface for the read-mostly vocabulary catalog.
//
// Sets and their cards are written once by the content importer and never
// mutated afterwards; everything else in the system only reads them.
type ContentStore interface {
	// ListSets enumerates all sets ordered by level then name, with
	// CardCount populated but Cards left empty. Returns an empty slice
	// when the catalog is empty.
	ListSets(ctx context.Context) ([]*domain.Set, error)

	// GetSet retrieves one set, cards included, preserving import order.
	// Returns ErrSetNotFound if no set has the given level and name.
	GetSet(ctx context.Context, level, name string) (*domain.Set, error)

	// SetExists reports whether a set with the given level and name exists.
	// The importer uses this to skip already-imported bundles.
	SetExists(ctx context.Context, level, name string) (bool, error)

	// CreateSet saves a set and its cards. Must run inside a transaction
	// (use WithTx with store.RunInTransaction) so the set never exists
	// half-populated. Returns ErrSetExists if the (level, name) pair is
	// already taken, and validation errors if any entity is invalid.
	CreateSet(ctx context.Context, set *domain.Set) error

	// WithTx returns a new ContentStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ContentStore
}

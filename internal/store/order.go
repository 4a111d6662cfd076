package store

import (
	"context"
	"database/sql"

	"kotoba/internal/domain"
)

// OrderStore defines the interface for persisted card-order (shuffle) records.
//
// At most one order exists per session key. Replace is the only write path:
// a saved order always supersedes whatever was stored before, which is what
// keeps the session's hasOrderSaved flag truthful when combined with
// SessionStore.SetOrderSaved inside one transaction.
type OrderStore interface {
	// Get retrieves the card order for the given session key.
	// Returns ErrOrderNotFound if no order is saved.
	Get(ctx context.Context, sessionID string, mode domain.SessionMode) (*domain.CardOrder, error)

	// Replace removes any existing order for the same key and stores the
	// given one. Returns validation errors if the order data is invalid.
	Replace(ctx context.Context, order *domain.CardOrder) error

	// Delete removes the order for the given key. Deleting a missing order
	// is not an error; the caller only cares that none remains.
	Delete(ctx context.Context, sessionID string, mode domain.SessionMode) error

	// DeleteForSet removes every order (all modes) keyed by the set
	// identifier. Deleting zero rows is not an error.
	DeleteForSet(ctx context.Context, sessionID string) error

	// DeleteAll removes every order. Deleting zero rows is not an error.
	DeleteAll(ctx context.Context) error

	// WithTx returns a new OrderStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through store.RunInTransaction.
	WithTx(tx *sql.Tx) OrderStore
}

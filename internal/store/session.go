package store

import (
	"context"
	"database/sql"

	"kotoba/internal/domain"
)

// SessionStore defines the interface for study-session persistence.
//
// Lookups are exact-match by (sessionID, mode); List supports the bulk
// enumeration "clear all progress" needs. Absent records surface as
// ErrSessionNotFound, which callers treat as the normal lazy-creation case.
type SessionStore interface {
	// Get retrieves the session for the given set identifier and mode.
	// Returns ErrSessionNotFound if no such session exists.
	Get(ctx context.Context, sessionID string, mode domain.SessionMode) (*domain.Session, error)

	// Create saves a new session. Returns ErrDuplicate (wrapped) if a
	// session with the same key already exists, and validation errors if
	// the session data is invalid.
	Create(ctx context.Context, session *domain.Session) error

	// Update overwrites an existing session's mutable fields.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.Session) error

	// SetOrderSaved flips the hasOrderSaved flag on an existing session.
	// Returns ErrSessionNotFound if the session does not exist.
	SetOrderSaved(ctx context.Context, sessionID string, mode domain.SessionMode, saved bool) error

	// Delete removes the session for the given key.
	// Returns ErrSessionNotFound if the session does not exist.
	Delete(ctx context.Context, sessionID string, mode domain.SessionMode) error

	// DeleteForSet removes every session (all modes) keyed by the set
	// identifier. Deleting zero rows is not an error.
	DeleteForSet(ctx context.Context, sessionID string) error

	// List enumerates all sessions. Returns an empty slice when none exist.
	List(ctx context.Context) ([]*domain.Session, error)

	// DeleteAll removes every session. Deleting zero rows is not an error.
	DeleteAll(ctx context.Context) error

	// WithTx returns a new SessionStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through store.RunInTransaction.
	WithTx(tx *sql.Tx) SessionStore
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"kotoba/internal/domain"
	"kotoba/internal/platform/logger"
	"kotoba/internal/store"
)

// SessionManagerError is a custom error type for session manager errors.
// It is used for caller mistakes (nil dependencies, invalid modes); runtime
// persistence failures never cross the manager boundary.
type SessionManagerError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for SessionManagerError.
func (e *SessionManagerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session manager %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("session manager %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SessionManagerError) Unwrap() error {
	return e.Err
}

// NewSessionManagerError creates a new SessionManagerError.
func NewSessionManagerError(operation, message string, err error) *SessionManagerError {
	return &SessionManagerError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// SessionManager tracks per-set study progress and shuffled card orders.
//
// Every method absorbs persistence failures: a failed read or write is
// logged and the caller gets the freshest in-memory state available, never
// an error. The presentation layer above treats "no data" and "stale data"
// the same way, so surfacing storage errors would only add a failure mode
// nothing can act on.
type SessionManager struct {
	db       *sql.DB
	sessions store.SessionStore
	orders   store.OrderStore
	logger   *slog.Logger

	// mu guards locks; one mutex per session key serializes concurrent
	// updates to the same session without blocking unrelated ones.
	mu    sync.Mutex
	locks map[domain.SessionKey]*sync.Mutex
}

// NewSessionManager creates a new SessionManager.
// It returns an error if any of the required dependencies are nil.
func NewSessionManager(
	db *sql.DB,
	sessions store.SessionStore,
	orders store.OrderStore,
	logger *slog.Logger,
) (*SessionManager, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if sessions == nil {
		return nil, domain.NewValidationError("sessions", "cannot be nil", domain.ErrValidation)
	}
	if orders == nil {
		return nil, domain.NewValidationError("orders", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SessionManager{
		db:       db,
		sessions: sessions,
		orders:   orders,
		logger:   logger.With(slog.String("component", "session_manager")),
		locks:    make(map[domain.SessionKey]*sync.Mutex),
	}, nil
}

// lockFor returns the mutex serializing updates for the given key.
func (m *SessionManager) lockFor(key domain.SessionKey) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// GetOrCreateSession returns the session for the given key, creating it on
// first access and refreshing its last-access time on every access. The
// returned session always reflects the latest in-memory state even when
// persistence fails.
func (m *SessionManager) GetOrCreateSession(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
) *domain.Session {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	l := m.lockFor(key)
	l.Lock()
	defer l.Unlock()

	return m.getOrCreateLocked(ctx, key)
}

// getOrCreateLocked loads or lazily creates the session. Callers must hold
// the key's lock.
func (m *SessionManager) getOrCreateLocked(
	ctx context.Context,
	key domain.SessionKey,
) *domain.Session {
	log := logger.FromContextOrDefault(ctx, m.logger)

	session, err := m.sessions.Get(ctx, key.SessionID, key.Mode)
	if err == nil {
		// Every access counts as activity, found sessions included.
		session.Touch()
		m.persist(ctx, session)
		return session
	}

	if !store.IsNotFoundError(err) {
		log.Error("failed to load session, continuing with a fresh one",
			slog.String("error", err.Error()),
			slog.String("session_key", key.String()))
	}

	session, newErr := domain.NewSession(key.SessionID, key.Mode)
	if newErr != nil {
		// Only an empty session id or invalid mode can land here.
		log.Error("failed to construct session",
			slog.String("error", newErr.Error()),
			slog.String("session_key", key.String()))
		return &domain.Session{SessionID: key.SessionID, Mode: key.Mode}
	}

	if store.IsNotFoundError(err) {
		if createErr := m.sessions.Create(ctx, session); createErr != nil {
			if store.IsDuplicateError(createErr) {
				if existing, getErr := m.sessions.Get(ctx, key.SessionID, key.Mode); getErr == nil {
					existing.Touch()
					m.persist(ctx, existing)
					return existing
				}
			}
			log.Error("failed to persist new session, keeping it in memory",
				slog.String("error", createErr.Error()),
				slog.String("session_key", key.String()))
		}
	}

	return session
}

// persist writes back a mutated session, absorbing failures.
func (m *SessionManager) persist(ctx context.Context, session *domain.Session) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if err := m.sessions.Update(ctx, session); err != nil {
		log.Error("failed to persist session update",
			slog.String("error", err.Error()),
			slog.String("session_key", session.Key().String()))
	}
}

// mutate runs fn against the session under its key lock and persists the
// result when fn reports a change.
func (m *SessionManager) mutate(
	ctx context.Context,
	key domain.SessionKey,
	fn func(*domain.Session) bool,
) *domain.Session {
	l := m.lockFor(key)
	l.Lock()
	defer l.Unlock()

	session := m.getOrCreateLocked(ctx, key)
	if fn(session) {
		session.Touch()
		m.persist(ctx, session)
	}
	return session
}

// UpdateProgress records that the learner is viewing the card at index out
// of totalCards. A non-positive totalCards is rejected as a logged no-op.
// An unchanged position skips the write entirely.
func (m *SessionManager) UpdateProgress(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
	index int,
	totalCards int,
) *domain.Session {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	log := logger.FromContextOrDefault(ctx, m.logger)

	if totalCards <= 0 {
		log.Warn("progress update with no cards ignored",
			slog.String("session_key", key.String()),
			slog.Int("total_cards", totalCards))
		return m.GetOrCreateSession(ctx, sessionID, mode)
	}

	ratio := float64(index+1) / float64(totalCards)
	if ratio > 1.0 {
		ratio = 1.0
	}

	return m.mutate(ctx, key, func(s *domain.Session) bool {
		if s.LastViewedIndex == index && s.CompletionRatio == ratio {
			return false
		}
		s.LastViewedIndex = index
		s.CompletionRatio = ratio
		return true
	})
}

// SaveCardOrder replaces the stored card order for the key with the given
// card sequence and flags the session as having one. The replace and the
// flag flip commit together.
func (m *SessionManager) SaveCardOrder(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
	cards []domain.Card,
) {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	log := logger.FromContextOrDefault(ctx, m.logger)

	order, err := domain.NewCardOrder(key, cards)
	if err != nil {
		log.Warn("refusing to save card order",
			slog.String("error", err.Error()),
			slog.String("session_key", key.String()))
		return
	}

	l := m.lockFor(key)
	l.Lock()
	defer l.Unlock()

	// The session row must exist before its flag can flip.
	m.getOrCreateLocked(ctx, key)

	err = store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := m.orders.WithTx(tx).Replace(ctx, order); err != nil {
			return err
		}
		return m.sessions.WithTx(tx).SetOrderSaved(ctx, key.SessionID, key.Mode, true)
	})
	if err != nil {
		log.Error("failed to save card order",
			slog.String("error", err.Error()),
			slog.String("session_key", key.String()),
			slog.Int("card_count", len(cards)))
	}
}

// LoadCardOrder returns the cards in their stored order, resolved against
// the currently available cards. A missing order returns nil. An order
// referencing a card that no longer exists, or whose stored identifiers
// resolve to a different count, is deleted, the session flag cleared, and
// nil returned so the caller reshuffles. Extra cards that joined the pool
// after the order was saved do not invalidate it.
func (m *SessionManager) LoadCardOrder(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
	available []domain.Card,
) []domain.Card {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	log := logger.FromContextOrDefault(ctx, m.logger)

	l := m.lockFor(key)
	l.Lock()
	defer l.Unlock()

	order, err := m.orders.Get(ctx, key.SessionID, key.Mode)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to load card order",
				slog.String("error", err.Error()),
				slog.String("session_key", key.String()))
		}
		return nil
	}

	resolved, ok := order.Resolve(available)
	if ok {
		return resolved
	}

	log.Warn("stored card order no longer matches available cards, discarding",
		slog.String("session_key", key.String()),
		slog.Int("stored_count", len(order.CardIDs)),
		slog.Int("available_count", len(available)))

	err = store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := m.orders.WithTx(tx).Delete(ctx, key.SessionID, key.Mode); err != nil {
			return err
		}
		err := m.sessions.WithTx(tx).SetOrderSaved(ctx, key.SessionID, key.Mode, false)
		if err != nil && !store.IsNotFoundError(err) {
			return err
		}
		return nil
	})
	if err != nil {
		log.Error("failed to discard stale card order",
			slog.String("error", err.Error()),
			slog.String("session_key", key.String()))
	}

	return nil
}

// MarkQuestionAnswered adds the card to the session's answered set. Marking
// an already-answered card changes nothing.
func (m *SessionManager) MarkQuestionAnswered(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
	cardID uuid.UUID,
) *domain.Session {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	return m.mutate(ctx, key, func(s *domain.Session) bool {
		return s.MarkAnswered(cardID)
	})
}

// RecordAnswer tallies one scored answer. It deliberately does not advance
// the question index; answering and advancing stay independently retriable.
func (m *SessionManager) RecordAnswer(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
	correct bool,
) *domain.Session {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	return m.mutate(ctx, key, func(s *domain.Session) bool {
		s.RecordAnswer(correct)
		return true
	})
}

// AnswerQuestion marks the card answered and tallies the outcome in one
// step. A card already in the answered set leaves the tallies untouched,
// so a retried answer cannot double-score.
func (m *SessionManager) AnswerQuestion(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
	cardID uuid.UUID,
	correct bool,
) *domain.Session {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	return m.mutate(ctx, key, func(s *domain.Session) bool {
		if !s.MarkAnswered(cardID) {
			return false
		}
		s.RecordAnswer(correct)
		return true
	})
}

// AdvanceQuestion moves to the next question, never past the final one.
func (m *SessionManager) AdvanceQuestion(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
) *domain.Session {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	return m.mutate(ctx, key, func(s *domain.Session) bool {
		before := s.CurrentQuestionIndex
		s.AdvanceQuestion()
		return s.CurrentQuestionIndex != before
	})
}

// SetTotalQuestions records how many questions the current quiz pass has.
func (m *SessionManager) SetTotalQuestions(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
	total int,
) *domain.Session {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	log := logger.FromContextOrDefault(ctx, m.logger)

	if total <= 0 {
		log.Warn("quiz size update with no questions ignored",
			slog.String("session_key", key.String()),
			slog.Int("total", total))
		return m.GetOrCreateSession(ctx, sessionID, mode)
	}

	return m.mutate(ctx, key, func(s *domain.Session) bool {
		if s.TotalQuestions == total {
			return false
		}
		s.TotalQuestions = total
		return true
	})
}

// ResetQuizProgress starts the quiz over: counters, answered set, and the
// saved question order all reset in one transaction. The number of
// questions is kept so the restarted quiz has the same length.
func (m *SessionManager) ResetQuizProgress(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
) *domain.Session {
	key := domain.SessionKey{SessionID: sessionID, Mode: mode}
	log := logger.FromContextOrDefault(ctx, m.logger)

	l := m.lockFor(key)
	l.Lock()
	defer l.Unlock()

	session := m.getOrCreateLocked(ctx, key)
	session.ResetQuizProgress()
	session.HasOrderSaved = false
	session.Touch()

	err := store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := m.orders.WithTx(tx).Delete(ctx, key.SessionID, key.Mode); err != nil {
			return err
		}
		return m.sessions.WithTx(tx).Update(ctx, session)
	})
	if err != nil {
		log.Error("failed to persist quiz reset",
			slog.String("error", err.Error()),
			slog.String("session_key", key.String()))
	}

	return session
}

// ClearSession deletes all progress for a set: every mode's session and
// every saved order, atomically.
func (m *SessionManager) ClearSession(ctx context.Context, sessionID string) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	err := store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := m.orders.WithTx(tx).DeleteForSet(ctx, sessionID); err != nil {
			return err
		}
		return m.sessions.WithTx(tx).DeleteForSet(ctx, sessionID)
	})
	if err != nil {
		log.Error("failed to clear session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID))
		return
	}

	log.Info("session cleared", slog.String("session_id", sessionID))
}

// ClearAllSessions deletes every session and order record. Clearing an
// empty store succeeds silently.
func (m *SessionManager) ClearAllSessions(ctx context.Context) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	err := store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := m.orders.WithTx(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return m.sessions.WithTx(tx).DeleteAll(ctx)
	})
	if err != nil {
		log.Error("failed to clear all sessions",
			slog.String("error", err.Error()))
		return
	}

	log.Info("all sessions cleared")
}

// Sessions lists every persisted session, for progress summaries. A read
// failure yields an empty list.
func (m *SessionManager) Sessions(ctx context.Context) []*domain.Session {
	log := logger.FromContextOrDefault(ctx, m.logger)

	all, err := m.sessions.List(ctx)
	if err != nil {
		log.Error("failed to list sessions",
			slog.String("error", err.Error()))
		return nil
	}
	return all
}

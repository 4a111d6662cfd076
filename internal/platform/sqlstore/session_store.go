// Package sqlstore implements the store interfaces on database/sql.
// The SQL sticks to the dialect both backends share, so the same code runs
// against PostgreSQL (pgx) and SQLite (modernc); placeholders are written
// $1..$n in first-occurrence order, which both drivers accept.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"kotoba/internal/domain"
	"kotoba/internal/platform/logger"
	"kotoba/internal/store"
)

// PostgreSQL constraint violation codes
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// isUniqueViolation checks if the given error is a unique constraint
// violation from either backend. SQLite has no typed error code on the
// database/sql surface, so its well-known message text is matched.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE")
}

// isForeignKeyViolation checks if the given error is a foreign key
// constraint violation from either backend.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// SQLSessionStore implements the store.SessionStore interface
// using a SQL database as the storage backend.
type SQLSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSessionStore creates a new SQL implementation of the SessionStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewSessionStore(db store.DBTX, logger *slog.Logger) *SQLSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure SQLSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*SQLSessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *SQLSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &SQLSessionStore{
		db:     tx,
		logger: s.logger,
	}
}

// marshalAnswered serializes the answered-card set for storage.
func marshalAnswered(ids []uuid.UUID) (string, error) {
	if len(ids) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode answered card IDs: %w", err)
	}
	return string(raw), nil
}

// unmarshalAnswered restores the answered-card set from storage.
func unmarshalAnswered(raw string) ([]uuid.UUID, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode answered card IDs: %w", err)
	}
	return ids, nil
}

// Get implements store.SessionStore.Get
// It retrieves the session for the given set identifier and mode.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *SQLSessionStore) Get(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT session_id, mode, last_viewed_index, completion_ratio,
		       last_access_at, has_order_saved, current_question_index,
		       total_questions, score, correct_count, incorrect_count,
		       answered_card_ids
		FROM study_sessions
		WHERE session_id = $1 AND mode = $2
	`

	var session domain.Session
	var modeStr string
	var answeredRaw string

	err := s.db.QueryRowContext(ctx, query, sessionID, string(mode)).Scan(
		&session.SessionID,
		&modeStr,
		&session.LastViewedIndex,
		&session.CompletionRatio,
		&session.LastAccessAt,
		&session.HasOrderSaved,
		&session.CurrentQuestionIndex,
		&session.TotalQuestions,
		&session.Score,
		&session.CorrectCount,
		&session.IncorrectCount,
		&answeredRaw,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found",
				slog.String("session_id", sessionID),
				slog.String("mode", string(mode)))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID),
			slog.String("mode", string(mode)))
		return nil, err
	}

	session.Mode = domain.SessionMode(modeStr)
	session.AnsweredCardIDs, err = unmarshalAnswered(answeredRaw)
	if err != nil {
		log.Error("failed to decode session answered set",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID))
		return nil, err
	}

	return &session, nil
}

// Create implements store.SessionStore.Create
// It saves a new session, handling domain validation.
// Returns store.ErrDuplicate (wrapped) if the key is already taken.
func (s *SQLSessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.SessionID))
		return err
	}

	answeredRaw, err := marshalAnswered(session.AnsweredCardIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO study_sessions (
			session_id, mode, last_viewed_index, completion_ratio,
			last_access_at, has_order_saved, current_question_index,
			total_questions, score, correct_count, incorrect_count,
			answered_card_ids
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		session.SessionID,
		string(session.Mode),
		session.LastViewedIndex,
		session.CompletionRatio,
		session.LastAccessAt,
		session.HasOrderSaved,
		session.CurrentQuestionIndex,
		session.TotalQuestions,
		session.Score,
		session.CorrectCount,
		session.IncorrectCount,
		answeredRaw,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("duplicate session during create",
				slog.String("session_id", session.SessionID),
				slog.String("mode", string(session.Mode)))
			return fmt.Errorf("%w: session %s/%s",
				store.ErrDuplicate, session.SessionID, session.Mode)
		}

		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.SessionID),
			slog.String("mode", string(session.Mode)))
		return err
	}

	log.Info("session created",
		slog.String("session_id", session.SessionID),
		slog.String("mode", string(session.Mode)))
	return nil
}

// Update implements store.SessionStore.Update
// It overwrites an existing session's mutable fields.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *SQLSessionStore) Update(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during update",
			slog.String("error", err.Error()),
			slog.String("session_id", session.SessionID))
		return err
	}

	answeredRaw, err := marshalAnswered(session.AnsweredCardIDs)
	if err != nil {
		return err
	}

	query := `
		UPDATE study_sessions
		SET last_viewed_index = $1, completion_ratio = $2, last_access_at = $3,
		    has_order_saved = $4, current_question_index = $5,
		    total_questions = $6, score = $7, correct_count = $8,
		    incorrect_count = $9, answered_card_ids = $10
		WHERE session_id = $11 AND mode = $12
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		session.LastViewedIndex,
		session.CompletionRatio,
		session.LastAccessAt,
		session.HasOrderSaved,
		session.CurrentQuestionIndex,
		session.TotalQuestions,
		session.Score,
		session.CorrectCount,
		session.IncorrectCount,
		answeredRaw,
		session.SessionID,
		string(session.Mode),
	)

	if err != nil {
		log.Error("failed to update session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.SessionID),
			slog.String("mode", string(session.Mode)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("session_id", session.SessionID))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("session not found for update",
			slog.String("session_id", session.SessionID),
			slog.String("mode", string(session.Mode)))
		return store.ErrSessionNotFound
	}

	return nil
}

// SetOrderSaved implements store.SessionStore.SetOrderSaved
// It flips the hasOrderSaved flag on an existing session.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *SQLSessionStore) SetOrderSaved(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
	saved bool,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE study_sessions
		SET has_order_saved = $1
		WHERE session_id = $2 AND mode = $3
	`

	result, err := s.db.ExecContext(ctx, query, saved, sessionID, string(mode))
	if err != nil {
		log.Error("failed to update session order flag",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID),
			slog.String("mode", string(mode)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("session not found for order flag update",
			slog.String("session_id", sessionID),
			slog.String("mode", string(mode)))
		return store.ErrSessionNotFound
	}

	log.Debug("session order flag updated",
		slog.String("session_id", sessionID),
		slog.String("mode", string(mode)),
		slog.Bool("saved", saved))
	return nil
}

// Delete implements store.SessionStore.Delete
// It removes the session for the given key.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *SQLSessionStore) Delete(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM study_sessions WHERE session_id = $1 AND mode = $2`

	result, err := s.db.ExecContext(ctx, query, sessionID, string(mode))
	if err != nil {
		log.Error("failed to delete session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID),
			slog.String("mode", string(mode)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID))
		return err
	}

	if rowsAffected == 0 {
		return store.ErrSessionNotFound
	}

	log.Info("session deleted",
		slog.String("session_id", sessionID),
		slog.String("mode", string(mode)))
	return nil
}

// DeleteForSet implements store.SessionStore.DeleteForSet
// It removes every session (all modes) keyed by the set identifier.
// Deleting zero rows is not an error.
func (s *SQLSessionStore) DeleteForSet(ctx context.Context, sessionID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM study_sessions WHERE session_id = $1`

	result, err := s.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		log.Error("failed to delete sessions for set",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID))
		return err
	}

	if rowsAffected, err := result.RowsAffected(); err == nil {
		log.Debug("sessions deleted for set",
			slog.String("session_id", sessionID),
			slog.Int64("count", rowsAffected))
	}
	return nil
}

// List implements store.SessionStore.List
// It enumerates all sessions, most recently accessed first.
// Returns an empty slice when none exist.
func (s *SQLSessionStore) List(ctx context.Context) ([]*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT session_id, mode, last_viewed_index, completion_ratio,
		       last_access_at, has_order_saved, current_question_index,
		       total_questions, score, correct_count, incorrect_count,
		       answered_card_ids
		FROM study_sessions
		ORDER BY last_access_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list sessions",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	sessions := []*domain.Session{}
	for rows.Next() {
		var session domain.Session
		var modeStr string
		var answeredRaw string

		err := rows.Scan(
			&session.SessionID,
			&modeStr,
			&session.LastViewedIndex,
			&session.CompletionRatio,
			&session.LastAccessAt,
			&session.HasOrderSaved,
			&session.CurrentQuestionIndex,
			&session.TotalQuestions,
			&session.Score,
			&session.CorrectCount,
			&session.IncorrectCount,
			&answeredRaw,
		)
		if err != nil {
			log.Error("failed to scan session row",
				slog.String("error", err.Error()))
			return nil, err
		}

		session.Mode = domain.SessionMode(modeStr)
		session.AnsweredCardIDs, err = unmarshalAnswered(answeredRaw)
		if err != nil {
			log.Error("failed to decode session answered set",
				slog.String("error", err.Error()),
				slog.String("session_id", session.SessionID))
			return nil, err
		}

		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return sessions, nil
}

// DeleteAll implements store.SessionStore.DeleteAll
// It removes every session. Deleting zero rows is not an error.
func (s *SQLSessionStore) DeleteAll(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM study_sessions`)
	if err != nil {
		log.Error("failed to delete all sessions",
			slog.String("error", err.Error()))
		return err
	}

	if rowsAffected, err := result.RowsAffected(); err == nil {
		log.Info("all sessions deleted", slog.Int64("count", rowsAffected))
	}
	return nil
}

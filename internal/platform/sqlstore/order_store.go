package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"kotoba/internal/domain"
	"kotoba/internal/platform/logger"
	"kotoba/internal/store"
)

// SQLOrderStore implements the store.OrderStore interface
// using a SQL database as the storage backend.
type SQLOrderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewOrderStore creates a new SQL implementation of the OrderStore interface.
// It accepts a database connection or transaction that should be initialized
// and managed by the caller. If logger is nil, a default logger will be used.
func NewOrderStore(db store.DBTX, logger *slog.Logger) *SQLOrderStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLOrderStore{
		db:     db,
		logger: logger.With(slog.String("component", "order_store")),
	}
}

// Ensure SQLOrderStore implements store.OrderStore interface
var _ store.OrderStore = (*SQLOrderStore)(nil)

// WithTx implements store.OrderStore.WithTx
func (s *SQLOrderStore) WithTx(tx *sql.Tx) store.OrderStore {
	return &SQLOrderStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.OrderStore.Get
// It retrieves the card order for the given session key.
// Returns store.ErrOrderNotFound if no order is saved.
func (s *SQLOrderStore) Get(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
) (*domain.CardOrder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT session_id, mode, card_ids, saved_at
		FROM card_orders
		WHERE session_id = $1 AND mode = $2
	`

	var order domain.CardOrder
	var modeStr string
	var idsRaw string

	err := s.db.QueryRowContext(ctx, query, sessionID, string(mode)).Scan(
		&order.SessionID,
		&modeStr,
		&idsRaw,
		&order.SavedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card order not found",
				slog.String("session_id", sessionID),
				slog.String("mode", string(mode)))
			return nil, store.ErrOrderNotFound
		}
		log.Error("failed to get card order",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID),
			slog.String("mode", string(mode)))
		return nil, err
	}

	order.Mode = domain.SessionMode(modeStr)

	var ids []uuid.UUID
	if err := json.Unmarshal([]byte(idsRaw), &ids); err != nil {
		log.Error("failed to decode card order IDs",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to decode card order IDs: %w", err)
	}
	order.CardIDs = ids

	return &order, nil
}

// Replace implements store.OrderStore.Replace
// It removes any existing order for the same key and stores the given one
// in a single upsert, so a reader never sees two orders for one session.
func (s *SQLOrderStore) Replace(ctx context.Context, order *domain.CardOrder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := order.Validate(); err != nil {
		log.Warn("card order validation failed during replace",
			slog.String("error", err.Error()),
			slog.String("session_id", order.SessionID))
		return err
	}

	idsRaw, err := json.Marshal(order.CardIDs)
	if err != nil {
		return fmt.Errorf("failed to encode card order IDs: %w", err)
	}

	query := `
		INSERT INTO card_orders (session_id, mode, card_ids, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, mode)
		DO UPDATE SET card_ids = excluded.card_ids, saved_at = excluded.saved_at
	`

	_, err = s.db.ExecContext(
		ctx,
		query,
		order.SessionID,
		string(order.Mode),
		string(idsRaw),
		order.SavedAt,
	)

	if err != nil {
		log.Error("failed to replace card order",
			slog.String("error", err.Error()),
			slog.String("session_id", order.SessionID),
			slog.String("mode", string(order.Mode)))
		return err
	}

	log.Info("card order saved",
		slog.String("session_id", order.SessionID),
		slog.String("mode", string(order.Mode)),
		slog.Int("card_count", len(order.CardIDs)))
	return nil
}

// Delete implements store.OrderStore.Delete
// It removes the order for the given key. Deleting a missing order is not
// an error; the caller only cares that none remains.
func (s *SQLOrderStore) Delete(
	ctx context.Context,
	sessionID string,
	mode domain.SessionMode,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM card_orders WHERE session_id = $1 AND mode = $2`

	result, err := s.db.ExecContext(ctx, query, sessionID, string(mode))
	if err != nil {
		log.Error("failed to delete card order",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID),
			slog.String("mode", string(mode)))
		return err
	}

	if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected > 0 {
		log.Debug("card order deleted",
			slog.String("session_id", sessionID),
			slog.String("mode", string(mode)))
	}
	return nil
}

// DeleteForSet implements store.OrderStore.DeleteForSet
// It removes every order (all modes) keyed by the set identifier.
// Deleting zero rows is not an error.
func (s *SQLOrderStore) DeleteForSet(ctx context.Context, sessionID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM card_orders WHERE session_id = $1`

	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		log.Error("failed to delete card orders for set",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID))
		return err
	}
	return nil
}

// DeleteAll implements store.OrderStore.DeleteAll
// It removes every order. Deleting zero rows is not an error.
func (s *SQLOrderStore) DeleteAll(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM card_orders`)
	if err != nil {
		log.Error("failed to delete all card orders",
			slog.String("error", err.Error()))
		return err
	}

	if rowsAffected, err := result.RowsAffected(); err == nil {
		log.Info("all card orders deleted", slog.Int64("count", rowsAffected))
	}
	return nil
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kotoba/internal/domain"
	"kotoba/internal/platform/logger"
	"kotoba/internal/store"
)

// SQLContentStore implements the store.ContentStore interface
// using a SQL database as the storage backend.
type SQLContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewContentStore creates a new SQL implementation of the ContentStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewContentStore(db store.DBTX, logger *slog.Logger) *SQLContentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// Ensure SQLContentStore implements store.ContentStore interface
var _ store.ContentStore = (*SQLContentStore)(nil)

// WithTx implements store.ContentStore.WithTx
func (s *SQLContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return &SQLContentStore{
		db:     tx,
		logger: s.logger,
	}
}

// ListSets implements store.ContentStore.ListSets
// It enumerates all sets with their card counts but not the cards
// themselves, ordered by level then name.
func (s *SQLContentStore) ListSets(ctx context.Context) ([]*domain.Set, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT s.level, s.name, COUNT(c.id)
		FROM sets s
		LEFT JOIN cards c ON c.set_id = s.id
		GROUP BY s.id, s.level, s.name
		ORDER BY s.level, s.name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list sets", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	sets := []*domain.Set{}
	for rows.Next() {
		var set domain.Set
		if err := rows.Scan(&set.Level, &set.Name, &set.CardCount); err != nil {
			log.Error("failed to scan set row", slog.String("error", err.Error()))
			return nil, err
		}
		sets = append(sets, &set)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return sets, nil
}

// GetSet implements store.ContentStore.GetSet
// It retrieves one set, cards included, preserving import order.
// Returns store.ErrSetNotFound if no set has the given level and name.
func (s *SQLContentStore) GetSet(ctx context.Context, level, name string) (*domain.Set, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var set domain.Set
	var setID string

	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, level, name FROM sets WHERE level = $1 AND name = $2`,
		level,
		name,
	).Scan(&setID, &set.Level, &set.Name)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("set not found",
				slog.String("level", level),
				slog.String("name", name))
			return nil, store.ErrSetNotFound
		}
		log.Error("failed to get set",
			slog.String("error", err.Error()),
			slog.String("level", level),
			slog.String("name", name))
		return nil, err
	}

	cardsQuery := `
		SELECT id, set_id, primary_text, reading, meaning
		FROM cards
		WHERE set_id = $1
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, cardsQuery, setID)
	if err != nil {
		log.Error("failed to query cards",
			slog.String("error", err.Error()),
			slog.String("set_id", setID))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	for rows.Next() {
		var card domain.Card
		err := rows.Scan(
			&card.ID,
			&card.SetID,
			&card.PrimaryText,
			&card.Reading,
			&card.Meaning,
		)
		if err != nil {
			log.Error("failed to scan card row",
				slog.String("error", err.Error()),
				slog.String("set_id", setID))
			return nil, err
		}
		set.Cards = append(set.Cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	set.CardCount = len(set.Cards)
	return &set, nil
}

// SetExists implements store.ContentStore.SetExists
// It reports whether a set with the given level and name exists.
func (s *SQLContentStore) SetExists(ctx context.Context, level, name string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM sets WHERE level = $1 AND name = $2`,
		level,
		name,
	).Scan(&count)

	if err != nil {
		log.Error("failed to check set existence",
			slog.String("error", err.Error()),
			slog.String("level", level),
			slog.String("name", name))
		return false, err
	}

	return count > 0, nil
}

// CreateSet implements store.ContentStore.CreateSet
// It saves a set and its cards. Must run inside a transaction so the set
// never exists half-populated.
// Returns store.ErrSetExists if the (level, name) pair is already taken.
func (s *SQLContentStore) CreateSet(ctx context.Context, set *domain.Set) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := set.Validate(); err != nil {
		log.Warn("set validation failed during create",
			slog.String("error", err.Error()),
			slog.String("level", set.Level),
			slog.String("name", set.Name))
		return err
	}

	setID := set.SessionID()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sets (id, level, name, created_at) VALUES ($1, $2, $3, $4)`,
		setID,
		set.Level,
		set.Name,
		time.Now().UTC(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("set already exists",
				slog.String("level", set.Level),
				slog.String("name", set.Name))
			return fmt.Errorf("%w: %s/%s", store.ErrSetExists, set.Level, set.Name)
		}
		log.Error("failed to create set",
			slog.String("error", err.Error()),
			slog.String("set_id", setID))
		return err
	}

	cardQuery := `
		INSERT INTO cards (id, set_id, position, primary_text, reading, meaning)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i, card := range set.Cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during set create",
				slog.String("error", err.Error()),
				slog.String("set_id", setID),
				slog.Int("position", i))
			return fmt.Errorf("%w: card %d: %v", store.ErrInvalidEntity, i, err)
		}

		_, err := s.db.ExecContext(
			ctx,
			cardQuery,
			card.ID,
			setID,
			i,
			card.PrimaryText,
			card.Reading,
			card.Meaning,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: set %s missing for card", store.ErrInvalidEntity, setID)
			}
			log.Error("failed to create card",
				slog.String("error", err.Error()),
				slog.String("set_id", setID),
				slog.Int("position", i))
			return err
		}
	}

	log.Info("set created",
		slog.String("set_id", setID),
		slog.Int("card_count", len(set.Cards)))
	return nil
}

// Package content loads the bundled vocabulary sets into the database.
// Sets ship as JSON files embedded in the binary; the importer is run once
// at startup and skips any set that is already present.
package content

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"kotoba/internal/domain"
	"kotoba/internal/platform/logger"
	"kotoba/internal/store"
)

//go:embed data/*.json
var bundled embed.FS

// setFile is the on-disk shape of one vocabulary set.
type setFile struct {
	Level string     `json:"level"`
	Name  string     `json:"name"`
	Cards []cardFile `json:"cards"`
}

type cardFile struct {
	Primary string `json:"primary"`
	Reading string `json:"reading,omitempty"`
	Meaning string `json:"meaning,omitempty"`
}

// Importer copies bundled vocabulary sets into the content store.
type Importer struct {
	db      *sql.DB
	content store.ContentStore
	logger  *slog.Logger
	source  fs.FS
}

// NewImporter creates an Importer reading from the embedded bundle.
// It returns an error if any of the required dependencies are nil.
func NewImporter(db *sql.DB, content store.ContentStore, logger *slog.Logger) (*Importer, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if content == nil {
		return nil, domain.NewValidationError("content", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Importer{
		db:      db,
		content: content,
		logger:  logger.With(slog.String("component", "content_importer")),
		source:  bundled,
	}, nil
}

// ImportBundled loads every bundled set that is not already stored.
// Returns the number of sets imported. One bad file aborts the import; a
// partially imported individual set never commits.
func (i *Importer) ImportBundled(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, i.logger)

	names, err := fs.Glob(i.source, "data/*.json")
	if err != nil {
		return 0, fmt.Errorf("listing bundled sets: %w", err)
	}
	sort.Strings(names)

	imported := 0
	for _, name := range names {
		set, err := i.loadFile(name)
		if err != nil {
			return imported, fmt.Errorf("loading %s: %w", name, err)
		}

		exists, err := i.content.SetExists(ctx, set.Level, set.Name)
		if err != nil {
			return imported, fmt.Errorf("checking %s/%s: %w", set.Level, set.Name, err)
		}
		if exists {
			log.Debug("set already imported, skipping",
				slog.String("set_id", set.SessionID()))
			continue
		}

		err = store.RunInTransaction(ctx, i.db, func(ctx context.Context, tx *sql.Tx) error {
			return i.content.WithTx(tx).CreateSet(ctx, set)
		})
		if err != nil {
			return imported, fmt.Errorf("importing %s/%s: %w", set.Level, set.Name, err)
		}

		log.Info("imported vocabulary set",
			slog.String("set_id", set.SessionID()),
			slog.Int("card_count", len(set.Cards)))
		imported++
	}

	return imported, nil
}

// loadFile parses one bundled JSON file into a validated set.
func (i *Importer) loadFile(name string) (*domain.Set, error) {
	raw, err := fs.ReadFile(i.source, name)
	if err != nil {
		return nil, err
	}

	var file setFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	set, err := domain.NewSet(file.Level, file.Name)
	if err != nil {
		return nil, err
	}

	for idx, c := range file.Cards {
		card, err := domain.NewCard(set.SessionID(), c.Primary, c.Reading, c.Meaning)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", idx, err)
		}
		set.Cards = append(set.Cards, *card)
	}

	return set, nil
}

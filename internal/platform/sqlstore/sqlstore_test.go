package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"kotoba/internal/database"
	"kotoba/internal/domain"
	"kotoba/internal/platform/sqlstore"
)

// newTestDB opens a fresh in-memory SQLite database with the full schema
// applied. Each test gets its own database, so tests stay independent.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenAndMigrate(context.Background(), ":memory:", nil)
	require.NoError(t, err, "opening in-memory test database")

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// seedSet creates a set with n cards and returns it with cards populated.
func seedSet(t *testing.T, db *sql.DB, level, name string, n int) *domain.Set {
	t.Helper()

	set, err := domain.NewSet(level, name)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		card, err := domain.NewCard(
			set.SessionID(),
			fmt.Sprintf("語%d", i),
			fmt.Sprintf("よみ%d", i),
			fmt.Sprintf("meaning %d", i),
		)
		require.NoError(t, err)
		set.Cards = append(set.Cards, *card)
	}

	contentStore := sqlstore.NewContentStore(db, nil)
	require.NoError(t, contentStore.CreateSet(context.Background(), set))
	return set
}

package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kotoba/internal/domain"
	"kotoba/internal/platform/sqlstore"
	"kotoba/internal/store"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	sessions := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	session, err := domain.NewSession("N5_verbs", domain.ModeFlashcard)
	require.NoError(t, err)

	require.NoError(t, sessions.Create(ctx, session))

	got, err := sessions.Get(ctx, "N5_verbs", domain.ModeFlashcard)
	require.NoError(t, err)
	assert.Equal(t, "N5_verbs", got.SessionID)
	assert.Equal(t, domain.ModeFlashcard, got.Mode)
	assert.Equal(t, 0, got.LastViewedIndex)
	assert.Equal(t, 0.0, got.CompletionRatio)
	assert.False(t, got.HasOrderSaved)
	assert.WithinDuration(t, session.LastAccessAt, got.LastAccessAt, time.Second)
}

func TestSessionStoreGetMissing(t *testing.T) {
	db := newTestDB(t)
	sessions := sqlstore.NewSessionStore(db, nil)

	_, err := sessions.Get(context.Background(), "nope", domain.ModeFlashcard)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestSessionStoreDuplicateCreate(t *testing.T) {
	db := newTestDB(t)
	sessions := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	session, err := domain.NewSession("N5_verbs", domain.ModeQuizChoice)
	require.NoError(t, err)

	require.NoError(t, sessions.Create(ctx, session))

	err = sessions.Create(ctx, session)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestSessionStoreModesAreDistinctRecords(t *testing.T) {
	db := newTestDB(t)
	sessions := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	for _, mode := range []domain.SessionMode{
		domain.ModeFlashcard,
		domain.ModeQuizChoice,
		domain.ModeQuizText,
	} {
		session, err := domain.NewSession("N5_verbs", mode)
		require.NoError(t, err)
		require.NoError(t, sessions.Create(ctx, session))
	}

	all, err := sessions.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSessionStoreUpdateRoundTrip(t *testing.T) {
	db := newTestDB(t)
	sessions := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	session, err := domain.NewSession("N5_verbs", domain.ModeQuizText)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(ctx, session))

	answered := uuid.New()
	session.LastViewedIndex = 4
	session.CompletionRatio = 0.5
	session.CurrentQuestionIndex = 3
	session.TotalQuestions = 10
	session.Score = 2
	session.CorrectCount = 2
	session.IncorrectCount = 1
	session.MarkAnswered(answered)
	session.Touch()

	require.NoError(t, sessions.Update(ctx, session))

	got, err := sessions.Get(ctx, "N5_verbs", domain.ModeQuizText)
	require.NoError(t, err)
	assert.Equal(t, 4, got.LastViewedIndex)
	assert.Equal(t, 0.5, got.CompletionRatio)
	assert.Equal(t, 3, got.CurrentQuestionIndex)
	assert.Equal(t, 10, got.TotalQuestions)
	assert.Equal(t, 2, got.Score)
	assert.Equal(t, 2, got.CorrectCount)
	assert.Equal(t, 1, got.IncorrectCount)
	assert.True(t, got.HasAnswered(answered))
}

func TestSessionStoreUpdateMissing(t *testing.T) {
	db := newTestDB(t)
	sessions := sqlstore.NewSessionStore(db, nil)

	session, err := domain.NewSession("ghost", domain.ModeFlashcard)
	require.NoError(t, err)

	err = sessions.Update(context.Background(), session)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionStoreSetOrderSaved(t *testing.T) {
	db := newTestDB(t)
	sessions := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	session, err := domain.NewSession("N5_verbs", domain.ModeFlashcard)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(ctx, session))

	require.NoError(t, sessions.SetOrderSaved(ctx, "N5_verbs", domain.ModeFlashcard, true))

	got, err := sessions.Get(ctx, "N5_verbs", domain.ModeFlashcard)
	require.NoError(t, err)
	assert.True(t, got.HasOrderSaved)

	// Flipping the flag on a missing session reports not found.
	err = sessions.SetOrderSaved(ctx, "ghost", domain.ModeFlashcard, true)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionStoreDeleteForSet(t *testing.T) {
	db := newTestDB(t)
	sessions := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	for _, mode := range []domain.SessionMode{domain.ModeFlashcard, domain.ModeQuizChoice} {
		session, err := domain.NewSession("N5_verbs", mode)
		require.NoError(t, err)
		require.NoError(t, sessions.Create(ctx, session))
	}

	other, err := domain.NewSession("N4_nouns", domain.ModeFlashcard)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(ctx, other))

	require.NoError(t, sessions.DeleteForSet(ctx, "N5_verbs"))

	all, err := sessions.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "N4_nouns", all[0].SessionID)

	// Deleting again is a silent no-op.
	require.NoError(t, sessions.DeleteForSet(ctx, "N5_verbs"))
}

func TestSessionStoreDeleteAllEmpty(t *testing.T) {
	db := newTestDB(t)
	sessions := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	require.NoError(t, sessions.DeleteAll(ctx))

	all, err := sessions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kotoba/internal/domain"
	"kotoba/internal/platform/sqlstore"
	"kotoba/internal/store"
)

func TestOrderStoreReplaceAndGet(t *testing.T) {
	db := newTestDB(t)
	orders := sqlstore.NewOrderStore(db, nil)
	ctx := context.Background()

	set := seedSet(t, db, "N5", "verbs", 4)
	key := domain.SessionKey{SessionID: set.SessionID(), Mode: domain.ModeFlashcard}

	order, err := domain.NewCardOrder(key, set.Cards)
	require.NoError(t, err)
	require.NoError(t, orders.Replace(ctx, order))

	got, err := orders.Get(ctx, key.SessionID, key.Mode)
	require.NoError(t, err)
	require.Len(t, got.CardIDs, 4)
	for i, card := range set.Cards {
		assert.Equal(t, card.ID, got.CardIDs[i])
	}
}

func TestOrderStoreReplaceOverwrites(t *testing.T) {
	db := newTestDB(t)
	orders := sqlstore.NewOrderStore(db, nil)
	ctx := context.Background()

	set := seedSet(t, db, "N5", "verbs", 3)
	key := domain.SessionKey{SessionID: set.SessionID(), Mode: domain.ModeFlashcard}

	order, err := domain.NewCardOrder(key, set.Cards)
	require.NoError(t, err)
	require.NoError(t, orders.Replace(ctx, order))

	reversed := []domain.Card{set.Cards[2], set.Cards[1], set.Cards[0]}
	order, err = domain.NewCardOrder(key, reversed)
	require.NoError(t, err)
	require.NoError(t, orders.Replace(ctx, order))

	got, err := orders.Get(ctx, key.SessionID, key.Mode)
	require.NoError(t, err)
	require.Len(t, got.CardIDs, 3)
	assert.Equal(t, set.Cards[2].ID, got.CardIDs[0])
	assert.Equal(t, set.Cards[0].ID, got.CardIDs[2])
}

func TestOrderStoreGetMissing(t *testing.T) {
	db := newTestDB(t)
	orders := sqlstore.NewOrderStore(db, nil)

	_, err := orders.Get(context.Background(), "nope", domain.ModeFlashcard)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestOrderStoreOrdersArePerMode(t *testing.T) {
	db := newTestDB(t)
	orders := sqlstore.NewOrderStore(db, nil)
	ctx := context.Background()

	set := seedSet(t, db, "N5", "verbs", 2)

	flashKey := domain.SessionKey{SessionID: set.SessionID(), Mode: domain.ModeFlashcard}
	order, err := domain.NewCardOrder(flashKey, set.Cards)
	require.NoError(t, err)
	require.NoError(t, orders.Replace(ctx, order))

	_, err = orders.Get(ctx, set.SessionID(), domain.ModeQuizChoice)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestOrderStoreDeleteMissingIsNoError(t *testing.T) {
	db := newTestDB(t)
	orders := sqlstore.NewOrderStore(db, nil)

	assert.NoError(t, orders.Delete(context.Background(), "nope", domain.ModeFlashcard))
}

func TestOrderStoreDeleteForSet(t *testing.T) {
	db := newTestDB(t)
	orders := sqlstore.NewOrderStore(db, nil)
	ctx := context.Background()

	set := seedSet(t, db, "N5", "verbs", 2)
	other := seedSet(t, db, "N4", "nouns", 2)

	for _, mode := range []domain.SessionMode{domain.ModeFlashcard, domain.ModeQuizChoice} {
		order, err := domain.NewCardOrder(
			domain.SessionKey{SessionID: set.SessionID(), Mode: mode}, set.Cards)
		require.NoError(t, err)
		require.NoError(t, orders.Replace(ctx, order))
	}

	otherOrder, err := domain.NewCardOrder(
		domain.SessionKey{SessionID: other.SessionID(), Mode: domain.ModeFlashcard}, other.Cards)
	require.NoError(t, err)
	require.NoError(t, orders.Replace(ctx, otherOrder))

	require.NoError(t, orders.DeleteForSet(ctx, set.SessionID()))

	_, err = orders.Get(ctx, set.SessionID(), domain.ModeFlashcard)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
	_, err = orders.Get(ctx, set.SessionID(), domain.ModeQuizChoice)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)

	// The other set keeps its order.
	_, err = orders.Get(ctx, other.SessionID(), domain.ModeFlashcard)
	assert.NoError(t, err)
}

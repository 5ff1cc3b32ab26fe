package statestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Items []string `json:"items"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveOverwritesWholeSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cart", payload{Items: []string{"a", "b"}}))
	require.NoError(t, store.Save(ctx, "cart", payload{Items: []string{"c"}}))

	var got payload
	require.NoError(t, store.Load(ctx, "cart", &got))
	assert.Equal(t, []string{"c"}, got.Items)
}

func TestLoadMissingSnapshot(t *testing.T) {
	store := openTestStore(t)

	var got payload
	err := store.Load(context.Background(), "wishlist", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorruptSnapshotFallsBackToNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	row := snapshot{Name: "cart", Payload: []byte("{not json"), UpdatedAt: time.Now().UTC()}
	require.NoError(t, store.conn.WithContext(ctx).Save(&row).Error)

	var got payload
	err := store.Load(ctx, "cart", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cart", payload{Items: []string{"a"}}))
	require.NoError(t, store.Delete(ctx, "cart"))
	require.NoError(t, store.Delete(ctx, "cart"))

	var got payload
	err := store.Load(ctx, "cart", &got)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSnapshotsAreIndependent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cart", payload{Items: []string{"ring"}}))
	require.NoError(t, store.Save(ctx, "wishlist", payload{Items: []string{"chain"}}))
	require.NoError(t, store.Delete(ctx, "cart"))

	var got payload
	require.NoError(t, store.Load(ctx, "wishlist", &got))
	assert.Equal(t, []string{"chain"}, got.Items)
}

func TestPing(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

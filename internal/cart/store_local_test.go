package cart

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "carts", "guest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLocalStore_RoundTrip(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	lines, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	snapshot := []Line{
		{ID: "a", Item: dish("a", 120), Quantity: 2},
		{ID: "b", Item: dish("b", 180), Quantity: 1},
	}
	require.NoError(t, store.Apply(ctx, "guest-1", Change{Kind: ChangeUpsert, Line: snapshot[1], Snapshot: snapshot}))

	lines, err = store.Load(ctx, "guest-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[1].Item.Price.Equal(snapshot[1].Item.Price))

	other, err := store.Load(ctx, "guest-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestLocalStore_ClearDeletesSnapshot(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, store.Apply(ctx, "g", Change{Kind: ChangeUpsert, Snapshot: []Line{{ID: "a", Item: dish("a", 1), Quantity: 1}}}))
	require.NoError(t, store.Apply(ctx, "g", Change{Kind: ChangeClear}))

	lines, err := store.Load(ctx, "g")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLocalStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	_, err := store.db.Exec(
		`INSERT INTO guest_carts (guest_id, snapshot, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		"g", "{not json",
	)
	require.NoError(t, err)

	lines, err := store.Load(ctx, "g")
	require.NoError(t, err)
	assert.Empty(t, lines)

	var n int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM guest_carts WHERE guest_id = ?`, "g").Scan(&n))
	assert.Equal(t, 0, n, "corrupt row is removed")
}

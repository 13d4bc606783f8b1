package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ReconcileDiverged(t *testing.T) {
	users := newMemoryStore()
	guests := newMemoryStore()
	svc := newTestService(t, guests, users)
	ctx := context.Background()

	_, err := svc.Add(ctx, GuestSession("g1"), "b", 1)
	require.NoError(t, err)

	users.setFail(errors.New("connection refused"))
	_, err = svc.Add(ctx, UserSession("u1"), "a", 2)
	require.NoError(t, err)

	assert.Zero(t, svc.ReconcileDiverged(ctx), "store still down")

	users.setFail(nil)
	assert.Equal(t, 1, svc.ReconcileDiverged(ctx))
	assert.Equal(t, ChangeReplace, users.lastChange().Kind)

	view, err := svc.Get(ctx, UserSession("u1"))
	require.NoError(t, err)
	assert.Equal(t, SyncSynced, view.Sync.State)

	before := users.changeCount() + guests.changeCount()
	assert.Zero(t, svc.ReconcileDiverged(ctx), "synced carts are left alone")
	assert.Equal(t, before, users.changeCount()+guests.changeCount())
}

func TestRunReconciler_StopsWithContext(t *testing.T) {
	users := newMemoryStore()
	svc := newTestService(t, newMemoryStore(), users)

	users.setFail(errors.New("timeout"))
	_, err := svc.Add(context.Background(), UserSession("u1"), "a", 1)
	require.NoError(t, err)
	users.setFail(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunReconciler(ctx, svc, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return users.changeCount() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}

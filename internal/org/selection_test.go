package org

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSelectionStore(t *testing.T) *SelectionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSelectionStore(rdb, time.Hour)
}

func TestSelectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestSelectionStore(t)

	got, err := store.Load(ctx, "session-1")
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, store.Save(ctx, "session-1", "UNIT-001"))
	got, err = store.Load(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, "UNIT-001", got)

	// Sessions do not leak into each other.
	got, err = store.Load(ctx, "session-2")
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, store.Clear(ctx, "session-1"))
	got, err = store.Load(ctx, "session-1")
	require.NoError(t, err)
	require.Empty(t, got)
}

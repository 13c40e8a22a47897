package interunit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSequenceMonotonic(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	seq := NewSequence(rdb)

	first, err := seq.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "TR-000001", first)

	second, err := seq.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "TR-000002", second)

	// A second instance over the same backend continues, never restarts.
	other := NewSequence(rdb)
	third, err := other.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "TR-000003", third)
}

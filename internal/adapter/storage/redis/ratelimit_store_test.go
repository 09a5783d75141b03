package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_Increment(t *testing.T) {
	_, client := newTestClient(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		count, err := store.Increment(ctx, "settle:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}
}

func TestRateLimitStore_WindowReset(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	count, err := store.Increment(ctx, "settle:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, err = store.Increment(ctx, "settle:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	mr.FastForward(61 * time.Second)

	count, err = store.Increment(ctx, "settle:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRateLimitStore_KeysAreIndependent(t *testing.T) {
	_, client := newTestClient(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	_, err := store.Increment(ctx, "settle:1.1.1.1", time.Minute)
	require.NoError(t, err)

	count, err := store.Increment(ctx, "settle:2.2.2.2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestClaimStore_ClaimOnce(t *testing.T) {
	_, client := newTestClient(t)
	store := NewClaimStore(client)
	ctx := context.Background()

	ok, err := store.Claim(ctx, "TOPUP-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second claimant is refused while the first holds the claim.
	ok, err = store.Claim(ctx, "TOPUP-1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different reference is unaffected.
	ok, err = store.Claim(ctx, "TOPUP-2", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaimStore_ReleaseReopensClaim(t *testing.T) {
	_, client := newTestClient(t)
	store := NewClaimStore(client)
	ctx := context.Background()

	ok, err := store.Claim(ctx, "TOPUP-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "TOPUP-1"))

	ok, err = store.Claim(ctx, "TOPUP-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaimStore_TTLExpiry(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewClaimStore(client)
	ctx := context.Background()

	ok, err := store.Claim(ctx, "TOPUP-1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// A crashed holder's claim lapses after the TTL.
	mr.FastForward(11 * time.Second)

	ok, err = store.Claim(ctx, "TOPUP-1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

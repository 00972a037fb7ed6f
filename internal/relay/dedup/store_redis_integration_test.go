//go:build integration

package dedup_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaygate/internal/relay/dedup"
	"relaygate/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	store := dedup.NewRedis(rc.Client)

	seen, err := store.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Mark(ctx, "msg-1"))

	seen, err = store.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.Seen(ctx, "msg-2")
	require.NoError(t, err)
	assert.False(t, seen)

	// Markers carry a TTL so the key space does not grow without bound.
	ttl, err := rc.Client.TTL(ctx, "relay:processed:msg-1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	// Empty IDs are never marked.
	require.NoError(t, store.Mark(ctx, ""))
	seen, err = store.Seen(ctx, "")
	require.NoError(t, err)
	assert.False(t, seen)
}

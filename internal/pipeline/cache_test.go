package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/migration-detector/internal/segment"
)

func TestSegmentCache_PutThenGetRoundTrips(t *testing.T) {
	client := newFakeRedis()
	cache := NewSegmentCache(client, "batch-1", time.Minute)
	ctx := context.Background()

	s4 := segment.Collection{
		1: {{Start: 0, End: 9}},
		2: {{Start: 20, End: 29}},
	}
	require.NoError(t, cache.Put(ctx, "u1", s4))

	got, ok, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s4, got)
}

func TestSegmentCache_GetMissingUserReturnsFalse(t *testing.T) {
	client := newFakeRedis()
	cache := NewSegmentCache(client, "batch-1", time.Minute)
	_, ok, err := cache.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

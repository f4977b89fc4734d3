package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkQueue_EnqueueClaimComplete(t *testing.T) {
	client := newFakeRedis()
	q := NewWorkQueue(client, "batch-1")
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, []string{"u1", "u2", "u3"}))

	remaining, err := q.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), remaining)

	claimed, err := q.Claim(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, claimed, 2)

	remaining, err = q.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)

	require.NoError(t, q.Complete(ctx, claimed[0]))
	// Completing only removes from the in-flight set, not the pending count.
	remaining, err = q.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)
}

func TestWorkQueue_ClaimOnlyRemovesClaimedUsers(t *testing.T) {
	client := newFakeRedis()
	q := NewWorkQueue(client, "batch-2")
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, []string{"u1", "u2"}))

	claimed, err := q.Claim(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	remaining, err := q.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining, "the unclaimed user must still be pending")
}

func TestNewBatch_MintsDistinctBatchIDs(t *testing.T) {
	client := newFakeRedis()
	a := NewBatch(client)
	b := NewBatch(client)
	assert.NotEqual(t, a.BatchID(), b.BatchID())
}

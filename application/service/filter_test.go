package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/taxseq/domain/sequence"
)

func TestBatchFilter_ParallelMatchesSequential(t *testing.T) {
	raw := rawRecords(1000, func(i int) int { return (i * 37) % 1500 })
	bounds, err := sequence.NewBounds(300, 900)
	require.NoError(t, err)

	sequential, err := NewBatchFilter(1).Apply(context.Background(), raw, bounds)
	require.NoError(t, err)

	for _, n := range []int{2, 3, 8} {
		parallel, err := NewBatchFilter(n).Apply(context.Background(), raw, bounds)
		require.NoError(t, err)
		assert.Equal(t, sequential, parallel, "parallelism %d", n)
	}
	assert.NotEmpty(t, sequential)
}

func TestBatchFilter_CancelledContext(t *testing.T) {
	raw := rawRecords(100, func(int) int { return 10 })
	bounds, err := sequence.NewBounds(1, 100)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewBatchFilter(4).Apply(ctx, raw, bounds)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchFilter_Empty(t *testing.T) {
	bounds, err := sequence.NewBounds(1, 100)
	require.NoError(t, err)

	out, err := NewBatchFilter(4).Apply(context.Background(), nil, bounds)

	require.NoError(t, err)
	assert.Empty(t, out)
}

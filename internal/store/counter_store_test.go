package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterStoreNext(t *testing.T) {
	counters := NewCounterStore(openTestDB(t))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := counters.Next(ctx, "invoice")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := counters.Next(ctx, "work_order")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

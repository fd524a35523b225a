package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolBasic(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxOps: 2, MaxSearches: 1})

	require.NoError(t, pool.AcquireOp(context.Background()))
	assert.Equal(t, int64(1), pool.Stats().ActiveOps)

	pool.ReleaseOp()
	stats := pool.Stats()
	assert.Equal(t, int64(0), stats.ActiveOps)
	assert.Equal(t, int64(1), stats.TotalOps)
}

func TestWorkerPoolSearchLane(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxOps: 10, MaxSearches: 1})
	require.NoError(t, pool.AcquireSearch(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.AcquireSearch(ctx), context.DeadlineExceeded)

	// The op lane is independent
	assert.True(t, pool.TryAcquireOp())
	pool.ReleaseOp()

	pool.ReleaseSearch()
	assert.Equal(t, int64(1), pool.Stats().TotalSearches)
}

func TestWorkerPoolFull(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxOps: 1, MaxSearches: 1})
	require.True(t, pool.TryAcquireOp())
	assert.False(t, pool.TryAcquireOp())
	pool.ReleaseOp()
	assert.True(t, pool.TryAcquireOp())
	pool.ReleaseOp()
}

func TestWorkerPoolDefaults(t *testing.T) {
	stats := NewWorkerPool(PoolConfig{}).Stats()
	assert.Equal(t, 100, stats.MaxOps)
	assert.Equal(t, 8, stats.MaxSearches)
}

func TestWorkerPoolConcurrent(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxOps: 4, MaxSearches: 1})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pool.AcquireOp(context.Background()); err != nil {
				t.Error(err)
				return
			}
			assert.LessOrEqual(t, pool.Stats().ActiveOps, int64(4))
			pool.ReleaseOp()
		}()
	}
	wg.Wait()

	stats := pool.Stats()
	assert.Equal(t, int64(50), stats.TotalOps)
	assert.Equal(t, int64(0), stats.ActiveOps)
	assert.Equal(t, int64(0), stats.QueuedOps)
}

package api

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrBusy is returned when every op slot is taken and the caller asked not
// to wait.
var ErrBusy = errors.New("server busy, try again")

// WorkerPool bounds how many requests touch games at once. Game operations
// (roll, move, cube) share the op lane; move enumeration runs the full
// sequence search and gets its own, smaller lane.
type WorkerPool struct {
	opSem      chan struct{}
	searchSem  chan struct{}
	queuedOp   int64
	queuedFind int64
	activeOp   int64
	activeFind int64
	totalOp    int64
	totalFind  int64
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxOps      int // Max concurrent game operations (default: 100)
	MaxSearches int // Max concurrent move searches (default: 8)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOps:      100,
		MaxSearches: 8,
	}
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	def := DefaultPoolConfig()
	if config.MaxOps <= 0 {
		config.MaxOps = def.MaxOps
	}
	if config.MaxSearches <= 0 {
		config.MaxSearches = def.MaxSearches
	}
	return &WorkerPool{
		opSem:     make(chan struct{}, config.MaxOps),
		searchSem: make(chan struct{}, config.MaxSearches),
	}
}

func acquire(ctx context.Context, sem chan struct{}, queued, active *int64) error {
	atomic.AddInt64(queued, 1)
	defer atomic.AddInt64(queued, -1)

	select {
	case sem <- struct{}{}:
		atomic.AddInt64(active, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func release(sem chan struct{}, active, total *int64) {
	atomic.AddInt64(active, -1)
	atomic.AddInt64(total, 1)
	<-sem
}

// AcquireOp waits for a game operation slot or for ctx to end.
func (p *WorkerPool) AcquireOp(ctx context.Context) error {
	return acquire(ctx, p.opSem, &p.queuedOp, &p.activeOp)
}

// ReleaseOp releases a game operation slot.
func (p *WorkerPool) ReleaseOp() {
	release(p.opSem, &p.activeOp, &p.totalOp)
}

// AcquireSearch waits for a move search slot or for ctx to end.
func (p *WorkerPool) AcquireSearch(ctx context.Context) error {
	return acquire(ctx, p.searchSem, &p.queuedFind, &p.activeFind)
}

// ReleaseSearch releases a move search slot.
func (p *WorkerPool) ReleaseSearch() {
	release(p.searchSem, &p.activeFind, &p.totalFind)
}

// TryAcquireOp takes an op slot without blocking.
func (p *WorkerPool) TryAcquireOp() bool {
	select {
	case p.opSem <- struct{}{}:
		atomic.AddInt64(&p.activeOp, 1)
		return true
	default:
		return false
	}
}

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	ActiveOps      int64 `json:"active_ops"`
	ActiveSearches int64 `json:"active_searches"`
	QueuedOps      int64 `json:"queued_ops"`
	QueuedSearches int64 `json:"queued_searches"`
	TotalOps       int64 `json:"total_ops"`
	TotalSearches  int64 `json:"total_searches"`
	MaxOps         int   `json:"max_ops"`
	MaxSearches    int   `json:"max_searches"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveOps:      atomic.LoadInt64(&p.activeOp),
		ActiveSearches: atomic.LoadInt64(&p.activeFind),
		QueuedOps:      atomic.LoadInt64(&p.queuedOp),
		QueuedSearches: atomic.LoadInt64(&p.queuedFind),
		TotalOps:       atomic.LoadInt64(&p.totalOp),
		TotalSearches:  atomic.LoadInt64(&p.totalFind),
		MaxOps:         cap(p.opSem),
		MaxSearches:    cap(p.searchSem),
	}
}

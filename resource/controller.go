// Package resource provides process-wide governance for matrix assembly:
// a byte budget for container slabs, a worker-slot pool for parallel row
// scans, and an entries-per-second throttle for bulk consumers sharing a
// host with latency-sensitive work.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for slab memory held by containers
	// registered with this controller. If 0, no limit is enforced (only
	// tracking).
	MemoryLimitBytes int64

	// MaxWorkers is the maximum number of concurrent row-scan workers.
	// If 0, defaults to 1.
	MaxWorkers int64

	// ThroughputLimitPerSec caps the number of entries processed per second
	// by throttled bulk scans. If 0, unlimited.
	ThroughputLimitPerSec int64
}

// Controller manages shared resources for matrix construction and
// consumption. The zero-value-adjacent nil controller is valid everywhere
// and enforces nothing.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	workerSem *semaphore.Weighted

	throughput *rate.Limiter
}

// NewController creates a controller from the given limits.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.ThroughputLimitPerSec > 0 {
		c.throughput = rate.NewLimiter(rate.Limit(cfg.ThroughputLimitPerSec), int(cfg.ThroughputLimitPerSec))
	}

	return c
}

// AcquireMemory reserves bytes, blocking until the budget allows it or ctx
// is canceled. Intended for callers that pre-reserve before bulk assembly.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves bytes without blocking. Returns false if the
// budget would be exceeded. This is the hook the containers call on slab
// growth.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory returns reserved bytes to the budget.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireWorker reserves a row-scan worker slot, blocking while all slots
// are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workerSem.Acquire(ctx, 1)
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workerSem.TryAcquire(1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workerSem.Release(1)
}

// AcquireThroughput waits until the throughput limit allows processing the
// given number of entries.
func (c *Controller) AcquireThroughput(ctx context.Context, entries int) error {
	if c == nil || c.throughput == nil || entries <= 0 {
		return nil
	}
	return c.throughput.WaitN(ctx, entries)
}

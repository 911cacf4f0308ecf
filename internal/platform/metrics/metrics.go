package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"roster/internal/domain/directory"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu      sync.Mutex
	changes map[directory.ChangeKind]uint64
	started time.Time
}

func New() *Collector {
	return &Collector{
		changes: map[directory.ChangeKind]uint64{},
		started: time.Now(),
	}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// Apply counts committed directory mutations by kind.
func (c *Collector) Apply(_ context.Context, change directory.Change) error {
	c.mu.Lock()
	c.changes[change.Kind]++
	c.mu.Unlock()
	return nil
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	changes := make(map[string]uint64, len(c.changes))
	for kind, count := range c.changes {
		changes[string(kind)] = count
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"directoryChanges": changes,
		"uptimeSeconds":    int64(time.Since(c.started).Seconds()),
	}
}

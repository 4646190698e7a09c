package messenger

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrymomot/messenger/core/logger"
)

// cleaner removes subscriptions whose recipient is gone. A sweep runs every
// interval, or sooner once threshold registry mutations have accumulated.
type cleaner struct {
	registry  *registry
	ticker    *clock.Ticker
	threshold int64
	logger    *slog.Logger

	mutations atomic.Int64
	trigger   chan struct{}
	done      chan struct{}

	sweeps atomic.Int64
	swept  atomic.Int64
}

// newCleaner creates the ticker up front so a mock clock sees it before run starts.
func newCleaner(r *registry, clk clock.Clock, interval time.Duration, threshold int, log *slog.Logger) *cleaner {
	return &cleaner{
		registry:  r,
		ticker:    clk.Ticker(interval),
		threshold: int64(threshold),
		logger:    log,
		trigger:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (c *cleaner) run(ctx context.Context) {
	defer close(c.done)
	defer c.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ticker.C:
			c.sweep(ctx)
		case <-c.trigger:
			c.sweep(ctx)
		}
	}
}

// touch records one registry mutation and requests a sweep when the threshold is crossed.
func (c *cleaner) touch() {
	if c.threshold <= 0 {
		return
	}
	if c.mutations.Add(1) < c.threshold {
		return
	}
	c.mutations.Store(0)

	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

func (c *cleaner) sweep(ctx context.Context) int {
	start := time.Now()
	removed := c.registry.removeWhere(func(s *subscription) bool {
		return !s.handle.alive()
	})

	c.mutations.Store(0)
	c.sweeps.Add(1)
	c.swept.Add(int64(removed))

	c.logger.DebugContext(ctx, "cleanup sweep finished",
		logger.Component("messenger"),
		logger.Count("removed", removed),
		logger.Elapsed(start))

	return removed
}

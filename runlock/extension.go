package runlock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/flowforge/runlock/redlock"
	"github.com/flowforge/runlock/tracing"
)

// extensionTask is the periodic fiber that refreshes a held lease's TTL
// before it would otherwise expire. Stop is synchronous: once it returns,
// no further Extend call will reach the store.
type extensionTask struct {
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func (c *Coordinator) startExtension(keys []string, token string) *extensionTask {
	t := &extensionTask{stopCh: make(chan struct{}), doneCh: make(chan struct{})}

	c.mu.Lock()
	c.tasks[t] = struct{}{}
	c.mu.Unlock()

	interval := c.cfg.Duration - c.cfg.ExtensionThreshold
	go func() {
		defer close(t.doneCh)
		defer func() {
			c.mu.Lock()
			delete(c.tasks, t)
			c.mu.Unlock()
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stopCh:
				return
			case <-ticker.C:
				if c.tickExtend(keys, token) {
					return
				}
			}
		}
	}()
	return t
}

// tickExtend performs one extension attempt and reports whether the
// extension fiber should stop (the lease has been lost).
func (c *Coordinator) tickExtend(keys []string, token string) bool {
	ctx, end := tracing.StartSpan(context.Background(), c.tracerName, "runlock.extend")
	outcome, err := c.client.Extend(ctx, keys, token, c.cfg.Duration)
	end(err)
	if err != nil {
		c.logger.Warn("runlock: lease extension failed, will retry on next tick",
			slog.String("error", err.Error()))
		return false
	}
	if outcome == redlock.Lost {
		c.metrics.ExtensionFailuresTotal.Inc()
		c.logger.Warn("runlock: lease lost during extension, stopping auto-extension")
		return true
	}
	return false
}

// stop cancels the fiber and waits for it to exit. Safe to call more than
// once.
func (t *extensionTask) stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	<-t.doneCh
}

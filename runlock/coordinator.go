package runlock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/flowforge/runlock/lockerrors"
	"github.com/flowforge/runlock/lockmetrics"
	"github.com/flowforge/runlock/redlock"
	"github.com/flowforge/runlock/reentrancy"
	"github.com/flowforge/runlock/retry"
	"github.com/flowforge/runlock/tracing"
)

// Body is the caller's critical section. It receives a context carrying
// the reentrancy frame for the resources it was invoked under.
type Body func(ctx context.Context) (any, error)

// Coordinator is the public façade of the lock facility: it acquires a
// named resource set's lease (with reentrancy short-circuiting and
// retry-driven waits), keeps it alive with a periodic auto-extension
// fiber, runs the caller's body, and unconditionally releases the lease
// before returning.
type Coordinator struct {
	client      *redlock.Client
	cfg         Config
	retryEngine *retry.Engine
	logger      *slog.Logger
	metrics     *lockmetrics.Metrics
	tracerName  string

	mu     sync.Mutex
	closed bool
	tasks  map[*extensionTask]struct{}
}

// New builds a Coordinator backed by client. It validates the effective
// configuration (DefaultConfig overridden by opts) and returns an error if
// it is invalid.
func New(client *redlock.Client, opts ...Option) (*Coordinator, error) {
	o := options{
		cfg:        DefaultConfig(),
		logger:     slog.Default(),
		metrics:    lockmetrics.New(),
		tracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return &Coordinator{
		client:      client,
		cfg:         o.cfg,
		retryEngine: retry.New(o.cfg.Retry),
		logger:      o.logger,
		metrics:     o.metrics,
		tracerName:  o.tracerName,
		tasks:       make(map[*extensionTask]struct{}),
	}, nil
}

// Duration returns the lease TTL granted on each acquisition.
func (c *Coordinator) Duration() time.Duration { return c.cfg.Duration }

// ExtensionThreshold returns the auto-extension lead time.
func (c *Coordinator) ExtensionThreshold() time.Duration { return c.cfg.ExtensionThreshold }

// RetryConfig returns the acquisition retry policy.
func (c *Coordinator) RetryConfig() retry.Config { return c.cfg.Retry }

// Metrics returns the Prometheus collectors this Coordinator reports
// against.
func (c *Coordinator) Metrics() *lockmetrics.Metrics { return c.metrics }

// Logger returns the logger used for non-fatal release/extension
// failures.
func (c *Coordinator) Logger() *slog.Logger { return c.logger }

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Lock acquires an exclusive lease over name/resources, runs body while
// the lease is held (auto-extended in the background), releases it on
// every exit path, and returns body's result or a
// *lockerrors.LockAcquisitionTimeoutError if the retry budget is
// exhausted first.
//
// If the calling context already holds a frame for the same canonical
// resource form (a reentrant nested call), the store is bypassed entirely
// and body runs directly under the existing frame.
func (c *Coordinator) Lock(ctx context.Context, name string, resources []string, body Body) (any, error) {
	if c.isClosed() {
		return nil, lockerrors.ErrClosed
	}

	canonical, err := canonicalForm(resources)
	if err != nil {
		return nil, err
	}

	if cur, ok := reentrancy.CurrentResources(ctx); ok && cur == canonical {
		return body(ctx)
	}

	keys := make([]string, len(resources))
	for i, r := range resources {
		keys[i] = redlock.Key(name, r)
	}

	token, err := c.acquireWithRetry(ctx, keys, canonical)
	if err != nil {
		return nil, err
	}

	c.metrics.HeldLeases.Inc()
	defer c.metrics.HeldLeases.Dec()

	task := c.startExtension(keys, token)
	frameCtx := reentrancy.WithFrame(ctx, canonical)

	defer func() {
		task.stop()
		rctx, end := tracing.StartSpan(context.WithoutCancel(ctx), c.tracerName, "runlock.release")
		_, relErr := c.client.Release(rctx, keys, token)
		end(relErr)
		if relErr != nil {
			c.metrics.ReleaseErrorsTotal.Inc()
			c.logger.Warn("runlock: lease release failed, relying on TTL expiry",
				slog.String("lock_name", name),
				slog.String("resources", canonical),
				slog.String("error", relErr.Error()))
		}
	}()

	return body(frameCtx)
}

// LockIf delegates to Lock when cond is true; otherwise it runs body
// directly, establishing no frame and touching no store. This lets
// callers make locking conditional without duplicating call sites.
func (c *Coordinator) LockIf(ctx context.Context, cond bool, name string, resources []string, body Body) (any, error) {
	if !cond {
		return body(ctx)
	}
	return c.Lock(ctx, name, resources, body)
}

// acquireWithRetry runs the acquisition loop: TryAcquire, and on
// Unavailable, sleep per the retry policy and try again, until either a
// lease is granted or the retry budget (attempts or cumulative wait time)
// is exhausted. attempts counts tries made so far (1-based); MaxAttempts
// bounds retries after the first try, so the loop fails once attempts
// exceeds MaxAttempts — i.e. after MaxAttempts+1 total tries.
func (c *Coordinator) acquireWithRetry(ctx context.Context, keys []string, canonical string) (string, error) {
	var (
		attempts    int
		totalWaited time.Duration
	)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		attempts++
		token, err := redlock.NewToken()
		if err != nil {
			return "", err
		}

		sctx, end := tracing.StartSpan(ctx, c.tracerName, "runlock.try_acquire")
		ok, err := c.client.TryAcquire(sctx, keys, token, c.cfg.Duration)
		end(err)
		if err != nil {
			return "", err
		}
		if ok {
			c.metrics.AcquisitionsTotal.WithLabelValues("acquired").Inc()
			c.metrics.AcquisitionAttempts.Observe(float64(attempts))
			c.metrics.AcquisitionWaitSeconds.Observe(totalWaited.Seconds())
			return token, nil
		}

		if attempts > c.cfg.Retry.MaxAttempts || !c.retryEngine.BudgetRemaining(totalWaited) {
			c.metrics.AcquisitionsTotal.WithLabelValues("timeout").Inc()
			return "", &lockerrors.LockAcquisitionTimeoutError{
				Resources:     canonical,
				Attempts:      attempts,
				TotalWaitTime: totalWaited,
			}
		}

		delay := c.retryEngine.CappedDelay(attempts-1, totalWaited)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		totalWaited += delay
	}
}

// Quit cancels every outstanding auto-extension fiber and closes the
// underlying store connection. It does not release leases held by calls
// to Lock still in flight: those still attempt release on their own exit,
// but with the connection closed that release fails (it is logged) and
// the leases expire by TTL. Quit is idempotent.
func (c *Coordinator) Quit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	tasks := make([]*extensionTask, 0, len(c.tasks))
	for t := range c.tasks {
		tasks = append(tasks, t)
	}
	c.mu.Unlock()

	for _, t := range tasks {
		t.stop()
	}
	return c.client.Close()
}

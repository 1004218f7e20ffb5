package runlock

import (
	"log/slog"
	"time"

	"github.com/flowforge/runlock/lockerrors"
	"github.com/flowforge/runlock/lockmetrics"
	"github.com/flowforge/runlock/retry"
)

// defaultTracerName is used for spans when no WithTracerName option is
// supplied.
const defaultTracerName = "github.com/flowforge/runlock"

// Config holds the per-lease duration, extension lead time, and retry
// policy for a Coordinator.
type Config struct {
	// Duration is the lease TTL granted on each successful acquisition.
	Duration time.Duration
	// ExtensionThreshold is how long before expiry the auto-extension
	// fiber refreshes the lease.
	ExtensionThreshold time.Duration
	// Retry bounds the acquisition loop's backoff and wait budget.
	Retry retry.Config
}

// DefaultConfig returns the spec-mandated defaults: a 5s lease duration, a
// 500ms extension lead time, and retry.DefaultConfig().
func DefaultConfig() Config {
	return Config{
		Duration:           5000 * time.Millisecond,
		ExtensionThreshold: 500 * time.Millisecond,
		Retry:              retry.DefaultConfig(),
	}
}

// Validate rejects a non-positive duration or extension threshold, an
// extension threshold that would fire at or after expiry, and any invalid
// retry configuration.
func (c Config) Validate() error {
	if c.Duration <= 0 {
		return lockerrors.ErrInvalidConfig
	}
	if c.ExtensionThreshold <= 0 {
		return lockerrors.ErrInvalidConfig
	}
	if c.ExtensionThreshold >= c.Duration {
		return lockerrors.ErrExtensionThresholdTooLarge
	}
	return c.Retry.Validate()
}

type options struct {
	cfg        Config
	logger     *slog.Logger
	metrics    *lockmetrics.Metrics
	tracerName string
}

// Option configures a Coordinator built by New.
type Option func(*options)

// WithDuration overrides the lease TTL.
func WithDuration(d time.Duration) Option {
	return func(o *options) { o.cfg.Duration = d }
}

// WithExtensionThreshold overrides the auto-extension lead time.
func WithExtensionThreshold(d time.Duration) Option {
	return func(o *options) { o.cfg.ExtensionThreshold = d }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc retry.Config) Option {
	return func(o *options) { o.cfg.Retry = rc }
}

// WithLogger overrides the logger used for the "logged, not surfaced"
// release/extension failure paths. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics overrides the Prometheus collectors the Coordinator reports
// against. Defaults to a fresh, unregistered lockmetrics.New().
func WithMetrics(m *lockmetrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracerName overrides the OpenTelemetry tracer name used for the
// acquire/extend/release spans.
func WithTracerName(name string) Option {
	return func(o *options) { o.tracerName = name }
}

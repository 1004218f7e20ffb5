package retry

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate when a field is out of range.
var ErrInvalidConfig = errors.New("retry: invalid configuration")

// Config bounds the acquisition retry loop. Zero value is not valid; use
// DefaultConfig and override individual fields.
type Config struct {
	// MaxAttempts is the number of retries permitted after the first try.
	// Zero means exactly one try is made.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt.
	BaseDelay time.Duration
	// MaxDelay caps the per-attempt delay before jitter is applied.
	MaxDelay time.Duration
	// BackoffMultiplier is the exponential growth factor between attempts.
	BackoffMultiplier float64
	// JitterFactor is the symmetric uniform noise fraction applied to each
	// delay. Zero disables jitter, yielding deterministic timing.
	JitterFactor float64
	// MaxTotalWaitTime bounds the cumulative time spent sleeping between
	// attempts, independent of MaxAttempts.
	MaxTotalWaitTime time.Duration
}

// DefaultConfig returns the spec-mandated defaults: 10 retries, 200ms base
// delay, 5s max delay, 1.5x backoff, 10% jitter, 30s total wait budget.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       10,
		BaseDelay:         200 * time.Millisecond,
		MaxDelay:          5000 * time.Millisecond,
		BackoffMultiplier: 1.5,
		JitterFactor:      0.1,
		MaxTotalWaitTime:  30000 * time.Millisecond,
	}
}

// Validate rejects negative delays, a negative attempt count, a
// sub-unity backoff multiplier, or a jitter factor outside [0, 1].
func (c Config) Validate() error {
	if c.MaxAttempts < 0 {
		return ErrInvalidConfig
	}
	if c.BaseDelay < 0 || c.MaxDelay < 0 || c.MaxTotalWaitTime < 0 {
		return ErrInvalidConfig
	}
	if c.BackoffMultiplier < 1 {
		return ErrInvalidConfig
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		return ErrInvalidConfig
	}
	return nil
}

// Engine computes inter-attempt delays for a single acquisition loop.
// Engine holds no mutable state beyond its Config, so sharing one Engine
// value across concurrent acquisitions is safe.
type Engine struct {
	cfg Config
}

// New returns an Engine for cfg. Callers should Validate cfg first.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ComputeDelay returns the delay before the attempt following
// attemptIndex (0-based: the delay before the second attempt is
// ComputeDelay(0)). The base delay grows exponentially by
// BackoffMultiplier, is clamped to MaxDelay, and is perturbed by symmetric
// jitter in [-JitterFactor, +JitterFactor]. JitterFactor 0 yields
// deterministic timing.
func (e *Engine) ComputeDelay(attemptIndex int) time.Duration {
	raw := float64(e.cfg.BaseDelay) * math.Pow(e.cfg.BackoffMultiplier, float64(attemptIndex))
	clamped := math.Min(raw, float64(e.cfg.MaxDelay))
	if clamped < 0 {
		clamped = 0
	}
	if e.cfg.JitterFactor == 0 {
		return time.Duration(clamped)
	}
	noise := 1 + (rand.Float64()*2-1)*e.cfg.JitterFactor
	delay := time.Duration(clamped * noise)
	if delay < 0 {
		return 0
	}
	return delay
}

// BudgetRemaining reports whether totalWaited is still within
// MaxTotalWaitTime.
func (e *Engine) BudgetRemaining(totalWaited time.Duration) bool {
	return totalWaited < e.cfg.MaxTotalWaitTime
}

// CappedDelay returns ComputeDelay(attemptIndex), shortened if necessary so
// totalWaited plus the returned delay never exceeds MaxTotalWaitTime.
func (e *Engine) CappedDelay(attemptIndex int, totalWaited time.Duration) time.Duration {
	delay := e.ComputeDelay(attemptIndex)
	remaining := e.cfg.MaxTotalWaitTime - totalWaited
	if remaining < 0 {
		return 0
	}
	if delay > remaining {
		return remaining
	}
	return delay
}

// Config returns the configuration the Engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

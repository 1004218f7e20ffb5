package retry

import (
	"testing"
	"time"
)

func TestComputeDelayDeterministicWithoutJitter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseDelay = 100 * time.Millisecond
	cfg.BackoffMultiplier = 2
	cfg.JitterFactor = 0
	cfg.MaxDelay = 5 * time.Second
	e := New(cfg)

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
	for i, w := range want {
		if got := e.ComputeDelay(i); got != w {
			t.Fatalf("attempt %d: got %v, want %v", i, got, w)
		}
	}
}

func TestComputeDelayClampsToMaxDelay(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, BackoffMultiplier: 10, MaxDelay: 2 * time.Second, JitterFactor: 0}
	e := New(cfg)
	if got := e.ComputeDelay(5); got != 2*time.Second {
		t.Fatalf("expected clamp to MaxDelay, got %v", got)
	}
}

func TestComputeDelayJitterStaysWithinBounds(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, BackoffMultiplier: 1, MaxDelay: 10 * time.Second, JitterFactor: 0.1}
	e := New(cfg)
	for i := 0; i < 100; i++ {
		d := e.ComputeDelay(0)
		if d < 900*time.Millisecond || d > 1100*time.Millisecond {
			t.Fatalf("jittered delay %v outside expected [0.9s, 1.1s] band", d)
		}
	}
}

func TestBudgetRemaining(t *testing.T) {
	cfg := Config{MaxTotalWaitTime: 30 * time.Second}
	e := New(cfg)
	if !e.BudgetRemaining(29 * time.Second) {
		t.Fatal("expected budget remaining below cap")
	}
	if e.BudgetRemaining(30 * time.Second) {
		t.Fatal("expected budget exhausted at cap")
	}
	if e.BudgetRemaining(31 * time.Second) {
		t.Fatal("expected budget exhausted beyond cap")
	}
}

func TestCappedDelayShortensNearBudgetExhaustion(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, BackoffMultiplier: 1, MaxDelay: 10 * time.Second, JitterFactor: 0, MaxTotalWaitTime: 1500 * time.Millisecond}
	e := New(cfg)
	if got := e.CappedDelay(0, 1200*time.Millisecond); got != 300*time.Millisecond {
		t.Fatalf("expected delay capped to remaining budget, got %v", got)
	}
	if got := e.CappedDelay(0, 2*time.Second); got != 0 {
		t.Fatalf("expected zero delay once budget already exhausted, got %v", got)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []Config{
		{MaxAttempts: -1, BackoffMultiplier: 1.5},
		{BaseDelay: -time.Millisecond, BackoffMultiplier: 1.5},
		{BackoffMultiplier: 0.5},
		{BackoffMultiplier: 1.5, JitterFactor: 1.5},
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, c)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

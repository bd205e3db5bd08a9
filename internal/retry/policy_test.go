package retry

import (
	"testing"
	"time"

	"github.com/thelogbook/logbook/internal/config"
)

// TestExponentialSchedule verifies delay = min(1s * 2^retryCount, 30s) for
// every retryCount >= 0, the schedule used by the inventory stream client.
func TestExponentialSchedule(t *testing.T) {
	p := NewPolicy(config.RetryBackoffExponential, time.Second, 30*time.Second, 10)

	cases := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // 32s capped
		{6, 30 * time.Second},
		{20, 30 * time.Second},
	}
	for _, c := range cases {
		if got := p.Delay(c.retryCount); got != c.want {
			t.Errorf("retryCount %d: expected %v got %v", c.retryCount, c.want, got)
		}
	}
}

// TestLinearSchedule covers the readiness poller's schedule.
func TestLinearSchedule(t *testing.T) {
	p := NewPolicy(config.RetryBackoffLinear, 2*time.Second, 10*time.Second, 30)
	cases := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{29, 10 * time.Second},
	}
	for _, c := range cases {
		if got := p.Delay(c.retryCount); got != c.want {
			t.Errorf("retryCount %d: expected %v got %v", c.retryCount, c.want, got)
		}
	}
}

func TestFixedSchedule(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 0; i < 4; i++ {
		if d := p.Delay(i); d != 100*time.Millisecond {
			t.Fatalf("fixed retry %d expected 100ms got %v", i, d)
		}
	}
}

func TestOverridesAndClamping(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.MaxRetries != 5 {
		t.Fatalf("expected maxRetries 5 got %d", p.MaxRetries)
	}
}

func TestExhausted(t *testing.T) {
	p := NewPolicy(config.RetryBackoffLinear, time.Second, 10*time.Second, 30)
	if p.Exhausted(29) {
		t.Fatal("29 retries should not exhaust a 30-retry policy")
	}
	if !p.Exhausted(30) {
		t.Fatal("30 retries should exhaust a 30-retry policy")
	}
}

func TestNegativeRetryCount(t *testing.T) {
	p := DefaultPolicy()
	if d := p.Delay(-1); d != 0 {
		t.Fatalf("negative retryCount expected 0 got %v", d)
	}
}

func TestValidate(t *testing.T) {
	bad := Policy{Mode: config.RetryBackoffLinear, Initial: 0, Max: time.Second, MaxRetries: 1}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for zero initial")
	}
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy should validate: %v", err)
	}
}

func TestStreamPolicyFromConfig(t *testing.T) {
	p := StreamPolicy(config.StreamConfig{Backoff: "exponential", InitialDelayMS: 1000, MaxDelayMS: 30000})

	if p.Mode != config.RetryBackoffExponential {
		t.Fatalf("expected exponential mode, got %s", p.Mode)
	}
	if got := p.Delay(4); got != 16*time.Second {
		t.Fatalf("Delay(4) = %v, want 16s", got)
	}
	if got := p.Delay(10); got != 30*time.Second {
		t.Fatalf("Delay(10) = %v, want capped 30s", got)
	}
}

func TestReadinessPolicyFromConfig(t *testing.T) {
	p := ReadinessPolicy(config.ReadinessConfig{Backoff: "linear", InitialDelayMS: 2000, MaxDelayMS: 10000, MaxAttempts: 30})

	if p.Mode != config.RetryBackoffLinear {
		t.Fatalf("expected linear mode, got %s", p.Mode)
	}
	if !p.Exhausted(30) {
		t.Fatal("30 attempts must exhaust the budget")
	}
	if p.Exhausted(29) {
		t.Fatal("29 attempts must not exhaust the budget")
	}
}

package security

import (
	"errors"
	"testing"
)

func TestRateLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{})
	for i := range 1000 {
		if err := rl.Allow(); err != nil {
			t.Fatalf("Allow(%d) = %v", i, err)
		}
	}
}

func TestRateLimiter_Burst(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{ToolCallsPerMin: 1, Burst: 3})
	for i := range 3 {
		if err := rl.Allow(); err != nil {
			t.Fatalf("Allow(%d) = %v", i, err)
		}
	}
	if err := rl.Allow(); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Allow after burst = %v, want ErrRateLimited", err)
	}
}

func TestRateLimiter_BurstDefaultsToRate(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{ToolCallsPerMin: 2})
	_ = rl.Allow()
	_ = rl.Allow()
	if err := rl.Allow(); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("third Allow = %v, want ErrRateLimited", err)
	}
}

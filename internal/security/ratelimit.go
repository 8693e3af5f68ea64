package security

import (
	"errors"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a tool call exceeds the configured rate.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitConfig bounds tool calls with a token bucket.
type RateLimitConfig struct {
	// ToolCallsPerMin is the sustained rate. Zero means unlimited.
	ToolCallsPerMin int `yaml:"tool_calls_per_min"`

	// Burst is the bucket size. Defaults to ToolCallsPerMin.
	Burst int `yaml:"burst"`
}

// RateLimiter is a token-bucket limiter for tool calls.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter from cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.ToolCallsPerMin <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.ToolCallsPerMin
	}
	perSec := rate.Limit(float64(cfg.ToolCallsPerMin) / 60)
	return &RateLimiter{limiter: rate.NewLimiter(perSec, burst)}
}

// Allow consumes one token or returns ErrRateLimited without waiting.
func (rl *RateLimiter) Allow() error {
	if !rl.limiter.Allow() {
		return ErrRateLimited
	}
	return nil
}

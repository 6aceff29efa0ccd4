// Package ratelimit throttles MCP tool calls with per-key token buckets.
package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrLimited is wrapped by CheckLimit when a call is rejected.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter is a per-key token bucket. Every key starts with a full bucket of
// burst tokens that refills at rate tokens per second. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   int
	nowFunc func() time.Time
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a limiter that refills rate tokens per second up to burst.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// PerMinute creates a limiter allowing n calls per minute with the given burst.
func PerMinute(n float64, burst int) *Limiter {
	return NewLimiter(n/60.0, burst)
}

// refill brings the bucket for key up to date. l.mu must be held.
func (l *Limiter) refill(key string) *bucket {
	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens = math.Min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.lastCheck = now
	}
	return b
}

// Allow takes a token for key and reports whether one was available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key)
	if b.tokens < 1.0 {
		return false
	}
	b.tokens--
	return true
}

// RetryAfter returns how long until key has a whole token again. Zero means
// a call would be allowed now; a limiter with no refill rate never recovers
// and returns -1.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key)
	if b.tokens >= 1.0 {
		return 0
	}
	if l.rate <= 0 {
		return -1
	}
	return time.Duration((1.0 - b.tokens) / l.rate * float64(time.Second))
}

// ToolLimiters maps tool names to their limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters returns the default limits for the dopasim MCP tools.
// Simulations are the expensive calls; listing and reading are cheap.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"dopasim_fscv":      PerMinute(30, 5),
		"dopasim_oxidation": PerMinute(10, 3),
		"dopasim_sweep":     PerMinute(30, 5),
		"dopasim_cottrell":  PerMinute(30, 5),
		"dopasim_runs":      PerMinute(60, 10),
		"dopasim_run":       PerMinute(60, 10),
		"dopasim_export":    PerMinute(5, 2),
	}
}

// CheckLimit takes a token for toolName. Tools without a limiter are always
// allowed. A rejection wraps ErrLimited.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if limiter.Allow(toolName) {
		return nil
	}
	if wait := limiter.RetryAfter(toolName); wait > 0 {
		return fmt.Errorf("%w for %s, retry in %s", ErrLimited, toolName, wait.Round(time.Second))
	}
	return fmt.Errorf("%w for %s", ErrLimited, toolName)
}

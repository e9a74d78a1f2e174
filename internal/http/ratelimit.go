package http

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether one more request under key fits the budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// fixedWindowScript increments the counter for the current window and starts
// the window on the first hit.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisRateLimiter is a fixed window limiter shared by every API process.
type RedisRateLimiter struct {
	client redis.Scripter
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter allows limit requests per window for each key.
func NewRedisRateLimiter(client redis.Scripter, prefix string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.client == nil || l.limit <= 0 {
		return true, nil
	}

	count, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return count <= int64(l.limit), nil
}

type windowCount struct {
	start time.Time
	count int
}

// MemoryRateLimiter is the single process fallback used when Redis is not configured.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]windowCount
}

// NewMemoryRateLimiter allows limit requests per window for each key.
func NewMemoryRateLimiter(limit int, window time.Duration, now func() time.Time) *MemoryRateLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryRateLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		windows: make(map[string]windowCount),
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l == nil || l.limit <= 0 {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	current, ok := l.windows[key]
	if !ok || now.Sub(current.start) >= l.window {
		l.prune(now)
		current = windowCount{start: now}
	}
	current.count++
	l.windows[key] = current
	return current.count <= l.limit, nil
}

// prune drops expired windows. Callers hold mu.
func (l *MemoryRateLimiter) prune(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}

func rateLimitKey(scope, subject string) string {
	return scope + ":" + strings.TrimSpace(subject)
}

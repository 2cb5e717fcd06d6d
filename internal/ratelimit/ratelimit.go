package ratelimit

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per user.
type Limiter struct {
	users map[string]*rate.Limiter
	mu    sync.Mutex
	r     rate.Limit
	b     int
}

// New allows requests per interval with the given burst.
// New(60, time.Minute, 10) allows one write per second, ten in a row.
func New(requests int, per time.Duration, burst int) *Limiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		users: make(map[string]*rate.Limiter),
		r:     rate.Every(per / time.Duration(requests)),
		b:     burst,
	}
}

func (l *Limiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.users[userID]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.users[userID] = limiter
	}

	return limiter.Allow()
}

// Sweep drops buckets that have refilled to their full burst. A new bucket
// for the same key starts full, so dropping them never changes a decision.
// The signature fits a jobs.Task.
func (l *Limiter) Sweep(context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var dropped int64
	for key, limiter := range l.users {
		if limiter.Tokens() >= float64(l.b) {
			delete(l.users, key)
			dropped++
		}
	}
	return dropped, nil
}

// Middleware rejects requests with 429 once the caller's bucket is empty.
// It keys on the user_id local set by the auth middleware, falling back to
// the client IP.
func (l *Limiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
			key = userID
		}
		if !l.Allow(key) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(l.retryAfter()))
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

// retryAfter is the number of whole seconds until one token refills.
func (l *Limiter) retryAfter() int {
	if l.r <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(l.r)-1e-9)))
}

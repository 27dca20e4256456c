// Package ratelimit provides per-client admission control for sensitive
// routes. Window state lives behind the Store interface so a single
// instance can run on memory while a cluster shares counters via redis.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Rule struct {
	Max    int
	Window time.Duration
}

// Store counts requests per key. Increment returns the counter value after
// the bump; the window expiry clock starts with the first increment.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Limiter struct {
	store Store
	rule  Rule
}

func New(store Store, rule Rule) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if rule.Max <= 0 || rule.Window <= 0 {
		return nil, fmt.Errorf("rule must have positive max and window")
	}
	return &Limiter{store: store, rule: rule}, nil
}

// Allow records one request for key and reports whether it fits the
// current window. Denial has no side effect beyond the recorded attempt.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Increment(ctx, "ratelimit:ip:"+key, l.rule.Window)
	if err != nil {
		return false, err
	}
	return count <= int64(l.rule.Max), nil
}

// Middleware denies over-budget clients with 429 before the request can
// reach the proxy stage. A store failure is logged and fails open so a
// redis outage does not take the edge down with it.
func Middleware(limiter *Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			log.Printf("[GATEWAY] Rate limit store error: %v", err)
			return c.Next()
		}
		if !allowed {
			log.Printf("[GATEWAY] Rate limit exceeded for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests",
			})
		}
		return c.Next()
	}
}

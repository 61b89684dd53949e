package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/metrics"
)

// Policy defines a simple fixed-window rate limit.
// Limit requests within Window per derived key.
type Policy struct {
	// Name is a short identifier for the limited endpoint, used for logging/metrics (e.g. "notify:partner").
	Name   string
	Window time.Duration
	Limit  int
	// Key builds the bucket key for this request.
	// Example: func(c echo.Context) string { return "notify:" + c.RealIP() }
	Key func(echo.Context) string
}

// Store abstracts a shared counter store (e.g., Redis) for fixed-window limiting.
type Store interface {
	// Allow increments the counter for the key in the given window and returns whether the request is allowed.
	// If not allowed, retryAfterSec indicates seconds until the window resets.
	Allow(ctx echo.Context, key string, limit int, window time.Duration) (allowed bool, retryAfterSec int, err error)
}

// KeyIP derives the bucket key from the request's real IP with a
// per-endpoint prefix.
func KeyIP(prefix string) func(echo.Context) string {
	return func(c echo.Context) string {
		return prefix + ":ip:" + c.RealIP()
	}
}

// Middleware returns an Echo middleware enforcing the provided Policy using an in-memory fixed window.
// Note: This is process-local. For multi-instance deployments, prefer a shared store (e.g., Redis).
func Middleware(p Policy) echo.MiddlewareFunc {
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	if p.Limit <= 0 {
		p.Limit = 60
	}
	type bucket struct {
		start time.Time
		count int
	}
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "global"
			if p.Key != nil {
				key = p.Key(c)
			}

			now := time.Now()
			mu.Lock()
			b, ok := buckets[key]
			if !ok || now.Sub(b.start) >= p.Window {
				buckets[key] = &bucket{start: now, count: 1}
				mu.Unlock()
				return next(c)
			}
			if b.count < p.Limit {
				b.count++
				mu.Unlock()
				return next(c)
			}
			retryAfter := int(p.Window-now.Sub(b.start)) / int(time.Second)
			mu.Unlock()

			return refuse(c, p, retryAfter)
		}
	}
}

// MiddlewareWithStore uses a shared Store (e.g., Redis) for distributed rate limiting.
func MiddlewareWithStore(p Policy, s Store) echo.MiddlewareFunc {
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	if p.Limit <= 0 {
		p.Limit = 60
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "global"
			if p.Key != nil {
				key = p.Key(c)
			}
			allowed, retryAfter, err := s.Allow(c, key, p.Limit, p.Window)
			if err != nil {
				// Fail-open on store errors
				return next(c)
			}
			if allowed {
				return next(c)
			}
			return refuse(c, p, retryAfter)
		}
	}
}

func refuse(c echo.Context, p Policy, retryAfter int) error {
	metrics.IncRateLimitExceeded(p.Name)
	c.Logger().Warnf("rate limit exceeded: endpoint=%s limit=%d window=%s retry_after=%ds", p.Name, p.Limit, p.Window.String(), retryAfter)
	if retryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
}

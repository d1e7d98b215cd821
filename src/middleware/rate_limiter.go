package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig allows Max requests per Window for each client IP
type RateLimitConfig struct {
	Max     int
	Window  time.Duration
	Message string
}

// Preset limits
var (
	GeneralRateLimit = RateLimitConfig{
		Max:     100,
		Window:  15 * time.Minute,
		Message: "Too many requests, please try again later.",
	}
	LoginRateLimit = RateLimitConfig{
		Max:     5,
		Window:  15 * time.Minute,
		Message: "Too many login attempts, please try again later.",
	}
	PasswordChangeRateLimit = RateLimitConfig{
		Max:     3,
		Window:  time.Hour,
		Message: "Too many password change attempts, please try again later.",
	}
)

type limiterEntry struct {
	limiter     *rate.Limiter
	windowStart time.Time
}

// IPRateLimiter allows at most Max requests per client IP in each fixed
// Window. The window opens on a client's first request. Each window gets a
// fresh zero-refill bucket holding Max tokens, so the quota cannot be
// exceeded until the window closes.
type IPRateLimiter struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// RateDecision is the outcome of one rate limit check
type RateDecision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// NewIPRateLimiter starts a limiter; call Stop to end its sweep goroutine
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.Max <= 0 {
		cfg.Max = GeneralRateLimit.Max
	}
	if cfg.Window <= 0 {
		cfg.Window = GeneralRateLimit.Window
	}
	if cfg.Message == "" {
		cfg.Message = GeneralRateLimit.Message
	}

	l := &IPRateLimiter{
		cfg:      cfg,
		limiters: make(map[string]*limiterEntry),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
	go l.cleanupLoop()
	return l
}

// Check consumes one request from key's quota for the current window
func (l *IPRateLimiter) Check(key string) RateDecision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[key]
	if !ok || !now.Before(entry.windowStart.Add(l.cfg.Window)) {
		entry = &limiterEntry{
			limiter:     rate.NewLimiter(0, l.cfg.Max),
			windowStart: now,
		}
		l.limiters[key] = entry
	}

	allowed := entry.limiter.AllowN(now, 1)
	return RateDecision{
		Allowed:   allowed,
		Remaining: int(entry.limiter.TokensAt(now)),
		ResetAt:   entry.windowStart.Add(l.cfg.Window),
	}
}

// Allow reports whether key may make another request now
func (l *IPRateLimiter) Allow(key string) bool {
	return l.Check(key).Allowed
}

func (l *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// cleanup drops entries whose window has closed
func (l *IPRateLimiter) cleanup() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.limiters {
		if !now.Before(entry.windowStart.Add(l.cfg.Window)) {
			delete(l.limiters, key)
		}
	}
}

// Stop terminates the cleanup goroutine
func (l *IPRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Middleware enforces the limit per client IP
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	limit := strconv.Itoa(l.cfg.Max)

	return func(c *gin.Context) {
		d := l.Check(c.ClientIP())
		reset := strconv.Itoa(secondsUntil(l.now(), d.ResetAt))

		c.Header("RateLimit-Limit", limit)
		c.Header("RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("RateLimit-Reset", reset)
		if !d.Allowed {
			c.Header("Retry-After", reset)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": l.cfg.Message,
			})
			return
		}
		c.Next()
	}
}

func secondsUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

package middleware

import (
	"sync"
	"time"

	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client token bucket
type RateLimitConfig struct {
	Rate      rate.Limit
	Burst     int
	ExpiresIn time.Duration // idle visitors are forgotten after this long
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	mu           sync.Mutex
	visitors     map[string]*visitor
	cfg          RateLimitConfig
	timeProvider coreport.TimeProvider
	lastCleanup  time.Time
}

// NewRateLimiter creates a per-client rate limiter
func NewRateLimiter(cfg RateLimitConfig, timeProvider coreport.TimeProvider) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = rate.Limit(1)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 3 * time.Minute
	}
	return &RateLimiter{
		visitors:     make(map[string]*visitor),
		cfg:          cfg,
		timeProvider: timeProvider,
		lastCleanup:  timeProvider.Now(),
	}
}

// Allow reports whether the client may make a request now
func (l *RateLimiter) Allow(client string) bool {
	now := l.timeProvider.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) >= l.cfg.ExpiresIn {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.cfg.ExpiresIn {
				delete(l.visitors, key)
			}
		}
		l.lastCleanup = now
	}

	v, ok := l.visitors[client]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.cfg.Rate, l.cfg.Burst)}
		l.visitors[client] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Middleware rejects clients over their limit with 429
func (l *RateLimiter) Middleware(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()
		if !l.Allow(client) {
			logger.Warn("Rate limit exceeded", map[string]any{
				"ip":         client,
				"path":       c.Request.URL.Path,
				"request_id": GetRequestID(c),
			})
			c.AbortWithStatusJSON(dto.HTTPStatus(domainerr.ErrTooManyRequests),
				dto.NewErrorResponse(domainerr.ErrTooManyRequests, "Too many requests."))
			return
		}
		c.Next()
	}
}

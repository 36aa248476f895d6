package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docvault/internal/pkg/response"
)

type rateWindow struct {
	start time.Time
	count int
}

// rateLimiter is a fixed-window counter keyed by client ip and route.
type rateLimiter struct {
	mu            sync.Mutex
	window        time.Duration
	max           int
	windows       map[string]*rateWindow
	sweepInterval time.Duration
	lastSweep     time.Time
	now           func() time.Time
}

// RateLimit allows max requests per window for each client ip and route.
// A non-positive window or max disables limiting.
func RateLimit(window time.Duration, max int) gin.HandlerFunc {
	return newRateLimiter(window, max).handle
}

func newRateLimiter(window time.Duration, max int) *rateLimiter {
	return &rateLimiter{
		window:        window,
		max:           max,
		windows:       make(map[string]*rateWindow),
		sweepInterval: window,
		now:           time.Now,
	}
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 || l.max <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, path}, "|")

	now := l.now()
	l.mu.Lock()
	l.sweepLocked(now)
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &rateWindow{start: now}
		l.windows[key] = w
	}
	w.count++
	blocked := w.count > l.max
	l.mu.Unlock()

	if blocked {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("path", path),
		)
		response.Abort(c, http.StatusTooManyRequests, "too many requests")
		return
	}
	c.Next()
}

func (l *rateLimiter) sweepLocked(now time.Time) {
	if l.sweepInterval <= 0 || (!l.lastSweep.IsZero() && now.Sub(l.lastSweep) < l.sweepInterval) {
		return
	}
	l.cleanupExpiredLocked(now)
}

func (l *rateLimiter) cleanupExpiredLocked(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}

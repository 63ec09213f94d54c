package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"paylands-gateway/internal/checkout"
	"paylands-gateway/internal/logger"
	"paylands-gateway/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Buyer browser returning from or cancelling at Paylands (Strict)
	limitBrowser = rate.Limit(2)
	burstBrowser = 5

	// Server-to-server notifications, retried by the provider
	limitProvider = rate.Limit(20)
	burstProvider = 40

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20
)

const visitorTTL = 3 * time.Minute

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller and tier.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// getVisitor retrieves or creates a rate limiter for the given key.
func (l *RateLimiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		l.visitors[key] = &visitor{limiter, l.now()}
		return limiter
	}

	v.lastSeen = l.now()
	return v.limiter
}

// Sweep drops visitors idle for longer than the TTL and returns how many went.
func (l *RateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

// RunCleanup sweeps every interval until ctx is done.
func (l *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Middleware checks if the request is allowed by the rate limiter.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := resolveRateTier(r)
		key := clientIP(r) + ":" + tier

		if !l.getVisitor(key, limit, burst).Allow() {
			logger.FromCtx(r.Context()).Warn("Rate limit exceeded",
				zap.String("tier", tier),
				zap.String("path", r.URL.Path),
			)
			utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// resolveRateTier determines which rate limit policy applies to the request.
func resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	switch r.URL.Path {
	case checkout.NotifyPath:
		return limitProvider, burstProvider, "provider"
	case checkout.ReturnPath, checkout.CancelPath:
		return limitBrowser, burstBrowser, "browser"
	}
	return limitGeneral, burstGeneral, "general"
}

// clientIP is the peer address of the connection. Forwarding headers are
// ignored: they are set by the caller and would let it pick its bucket.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

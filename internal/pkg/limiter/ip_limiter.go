/*
Package limiter rate limits HTTP requests per client IP with a token bucket per address.

Idle buckets are swept periodically so the map does not grow without bound.
*/
package limiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"typerace/internal/pkg/errs"
	"typerace/internal/pkg/logx"
	"typerace/internal/pkg/resp"
)

const sweepInterval = 3 * time.Minute

// IPRateLimiter implements a concurrency rate limiter based on client IP addresses.
type IPRateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter

	// r is the refill rate in events per second, b the bucket size.
	r rate.Limit
	b int
}

// NewIPRateLimiter creates a limiter allowing r events per second with burst b.
// Idle buckets are swept until ctx is done.
func NewIPRateLimiter(ctx context.Context, r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go i.cleanUpVisitors(ctx)

	return i
}

// GetLimiter returns the bucket for ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[ip]
	i.mu.RUnlock()

	if exists {
		return limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists = i.limits[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.limits[ip] = limiter
	}
	return limiter
}

// Size reports how many addresses currently hold a bucket.
func (i *IPRateLimiter) Size() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.limits)
}

// sweep drops every bucket that has refilled completely.
func (i *IPRateLimiter) sweep(now time.Time) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	removed := 0
	for ip, limiter := range i.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(i.limits, ip)
			removed++
		}
	}
	return removed
}

func (i *IPRateLimiter) cleanUpVisitors(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed := i.sweep(now)
			logx.Debug("Rate limiter cleanup finished", "removed", removed, "active", i.Size())
		}
	}
}

// Middleware answers 429 with ErrRateLimitExceeded once the caller's bucket is empty.
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !i.GetLimiter(ip).Allow() {
			logx.Warn("Rate limit exceeded", "ip", logx.AnonymizeIP(r.RemoteAddr), "path", r.URL.Path)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}

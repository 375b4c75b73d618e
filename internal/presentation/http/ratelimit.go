package httppresentation

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability/logctx"
)

const limiterIdle = 30 * time.Minute

type clientLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// ipLimiter keeps one token bucket per client IP. Idle buckets are dropped
// lazily on access.
type ipLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*clientLimiter
	sweptAt time.Time
	now     func() time.Time
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.sweptAt) > limiterIdle {
		for key, c := range l.clients {
			if now.Sub(c.last) > limiterIdle {
				delete(l.clients, key)
			}
		}
		l.sweptAt = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}
	c.last = now
	return c.limiter.AllowN(now, 1)
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter != nil {
			ip := remoteIP(r)
			if !h.limiter.allow(ip) {
				logctx.FromOr(r.Context(), h.log).Warn("rate_limited", observability.F("route", routePattern(r)))
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// remoteIP keys on the connection address. Proxy headers only count when
// middleware.RealIP has already rewritten RemoteAddr.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type companyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter applies a token bucket per company.
type Limiter struct {
	mu        sync.Mutex
	limiters  map[string]*companyLimiter
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewLimiter creates a Limiter allowing rps requests per second per company
// with the given burst.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*companyLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether companyID may make a request now.
func (l *Limiter) Allow(companyID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > time.Minute {
		l.sweepLocked(now)
	}

	cl, ok := l.limiters[companyID]
	if !ok {
		cl = &companyLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[companyID] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// sweepLocked drops limiters idle for longer than limiterIdleTTL.
func (l *Limiter) sweepLocked(now time.Time) {
	for id, cl := range l.limiters {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(l.limiters, id)
		}
	}
	l.lastSweep = now
}

// Middleware rejects requests over the caller's limit with 429. It must
// run after the auth middleware.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID, _ := CompanyID(r.Context())
		if !l.Allow(companyID) {
			retryAfter := 1
			if l.rps > 0 && float64(l.rps) < 1 {
				retryAfter = int(1/float64(l.rps)) + 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			rateLimited.Inc()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

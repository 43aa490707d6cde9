package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/auth"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/utils"
)

// RateLimitConfig configures a token bucket per caller.
type RateLimitConfig struct {
	Burst             int // bucket capacity; <= 0 disables the limiter
	RefillPerIPPerMin int
	MaxEntries        int           // sweep idle buckets once this many exist
	SweepInterval     time.Duration // default 1m
	IdleTTL           time.Duration // default 15m
	TrustProxy        bool          // resolve IP from proxy headers when true

	// Key picks the bucket of a request. Defaults to CallerKey.
	Key func(r *http.Request, trustProxy bool) string
	Now func() time.Time // defaults to time.Now
}

// CallerKey buckets authenticated owners by identity and everyone else,
// including the shared default owner, by client IP. It needs Identity
// to run first.
func CallerKey(defaultOwner string) func(*http.Request, bool) string {
	return func(r *http.Request, trustProxy bool) string {
		if owner := auth.OwnerFrom(r.Context()); owner != "" && owner != defaultOwner {
			return "owner:" + owner
		}
		return "ip:" + utils.ClientIP(r, trustProxy)
	}
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

type limiter struct {
	cfg       RateLimitConfig
	perSecond float64
	capacity  float64

	mu        sync.Mutex
	buckets   map[string]bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Key == nil {
		cfg.Key = CallerKey(auth.DefaultOwner)
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.RefillPerIPPerMin < 1 {
		cfg.RefillPerIPPerMin = 1
	}
	return &limiter{
		cfg:       cfg,
		perSecond: float64(cfg.RefillPerIPPerMin) / 60.0,
		capacity:  float64(cfg.Burst),
		buckets:   make(map[string]bucket, 256),
		lastSweep: cfg.Now(),
	}
}

// take spends one token of key's bucket. When none is left it reports how
// many whole seconds until one is.
func (l *limiter) take(key string, now time.Time) (ok bool, remaining, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval ||
		(l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries) {
		l.sweep(now)
	}

	b, found := l.buckets[key]
	if !found {
		b = bucket{tokens: l.capacity}
	} else if elapsed := now.Sub(b.lastSeen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSecond)
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		l.buckets[key] = b
		return true, int(b.tokens), 0
	}
	l.buckets[key] = b

	retryAfter = int(math.Ceil((1 - b.tokens) / l.perSecond))
	return false, 0, max(retryAfter, 1)
}

// sweep drops idle buckets. l.mu must be held.
func (l *limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimit throttles each caller. Rejected requests get 429 with
// Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := newLimiter(cfg)
	limit := strconv.Itoa(cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retry := l.take(l.cfg.Key(r, l.cfg.TrustProxy), l.cfg.Now())

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				deny(w, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package auth

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// LoginRateLimiter throttles login submissions per client IP with a fixed
// window. It complements the per-account lockout and never replaces it: the
// lockout protects an account across sources, this protects the endpoint
// from a single noisy source.
type LoginRateLimiter struct {
	mu      sync.Mutex
	maxHits int
	window  time.Duration
	buckets map[string]*ipBucket
	maxKeys int
}

type ipBucket struct {
	windowStart time.Time
	hits        int
}

func NewLoginRateLimiter(maxHits int, window time.Duration) *LoginRateLimiter {
	if maxHits <= 0 {
		maxHits = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return &LoginRateLimiter{
		maxHits: maxHits,
		window:  window,
		buckets: make(map[string]*ipBucket),
		maxKeys: 5000,
	}
}

func (l *LoginRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := l.allow(limiterClientIP(r), time.Now().UTC())
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			writeError(w, http.StatusTooManyRequests, "Muitas tentativas de login. Tente novamente em instantes.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *LoginRateLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[ip]
	if !ok || now.Sub(bucket.windowStart) >= l.window {
		l.evictStale(now)
		l.buckets[ip] = &ipBucket{windowStart: now, hits: 1}
		return true, 0
	}

	if bucket.hits >= l.maxHits {
		retryAfter := bucket.windowStart.Add(l.window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return false, retryAfter
	}

	bucket.hits++
	return true, 0
}

func (l *LoginRateLimiter) evictStale(now time.Time) {
	if len(l.buckets) < l.maxKeys {
		return
	}
	for ip, bucket := range l.buckets {
		if now.Sub(bucket.windowStart) >= l.window {
			delete(l.buckets, ip)
		}
	}
}

func limiterClientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Subodhrana390/tracker-app/pkg/clientip"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// --- Global rate limiting (per-IP, 1/s, burst 10) ---

var (
	globalEntries    = make(map[string]*limiterEntry)
	globalEntriesMu  sync.Mutex
	globalCleanupRun bool
)

const (
	globalRateLimitRPS    = 1
	globalRateLimitBurst  = 10
	globalCleanupInterval = 5 * time.Minute
	globalLimiterTTL      = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

func getGlobalLimiter(ip string) *rate.Limiter {
	globalEntriesMu.Lock()
	defer globalEntriesMu.Unlock()
	startGlobalCleanupOnce()
	e, ok := globalEntries[ip]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(globalRateLimitRPS), globalRateLimitBurst),
			lastUse: time.Now(),
		}
		globalEntries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startGlobalCleanupOnce() {
	if globalCleanupRun {
		return
	}
	globalCleanupRun = true
	go func() {
		ticker := time.NewTicker(globalCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			globalEntriesMu.Lock()
			now := time.Now()
			for ip, e := range globalEntries {
				if now.Sub(e.lastUse) > globalLimiterTTL {
					delete(globalEntries, ip)
				}
			}
			globalEntriesMu.Unlock()
		}
	}()
}

// GlobalRateLimit limits each IP to 1 req/s, burst 10. Returns 429 when exceeded.
func GlobalRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		if !getGlobalLimiter(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests. Please slow down."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- Login route rate limiting (1 req/5s, burst 2) ---

var (
	loginEntries    = make(map[string]*limiterEntry)
	loginEntriesMu  sync.Mutex
	loginCleanupRun bool
)

const (
	loginRateLimitEvery  = 5 * time.Second
	loginRateLimitBurst  = 2
	loginCleanupInterval = 5 * time.Minute
	loginLimiterTTL      = 30 * time.Minute
)

var loginPaths = map[string]bool{
	"/api/auth/login":           true,
	"/api/auth/forgot-password": true,
	"/api/auth/reset-password":  true,
}

func getLoginLimiter(ip string) *rate.Limiter {
	loginEntriesMu.Lock()
	defer loginEntriesMu.Unlock()
	startLoginCleanupOnce()
	e, ok := loginEntries[ip]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(loginRateLimitEvery), loginRateLimitBurst),
			lastUse: time.Now(),
		}
		loginEntries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startLoginCleanupOnce() {
	if loginCleanupRun {
		return
	}
	loginCleanupRun = true
	go func() {
		ticker := time.NewTicker(loginCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			loginEntriesMu.Lock()
			now := time.Now()
			for ip, e := range loginEntries {
				if now.Sub(e.lastUse) > loginLimiterTTL {
					delete(loginEntries, ip)
				}
			}
			loginEntriesMu.Unlock()
		}
	}()
}

// LoginRateLimit applies a stricter limit to credential routes only. Use after GlobalRateLimit.
func LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !loginPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientip.RealClientIP(r)
		if !getLoginLimiter(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many login attempts. Please try again later."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		GlobalRateLimit,
		LoginRateLimit,
	}
}

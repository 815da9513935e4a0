package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/Subodhrana390/tracker-app/internal/database"
	"github.com/Subodhrana390/tracker-app/pkg/clientip"
)

const (
	// RateLimitWindow is the fixed counting window
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 25
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = 24 * time.Hour
)

// RateLimitMiddleware provides Redis-backed rate limiting with temporary IP
// blocking. When Redis is unreachable requests are allowed through.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ipAddress := clientip.RealClientIP(r)
		ctx := context.Background()

		blockedKey := BlockedIPKeyPrefix + ipAddress
		isBlocked, err := database.RedisClient.Exists(ctx, blockedKey).Result()
		if err == nil && isBlocked > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Your IP has been temporarily blocked due to excessive requests. Please try again later."}`))
			return
		}

		rateLimitKey := RateLimitKeyPrefix + ipAddress
		currentCount, err := database.RedisClient.Get(ctx, rateLimitKey).Int()
		if err != nil {
			currentCount = 0
		}
		newCount := currentCount + 1

		if currentCount == 0 {
			err = database.RedisClient.Set(ctx, rateLimitKey, "1", RateLimitWindow).Err()
		} else {
			err = database.RedisClient.Incr(ctx, rateLimitKey).Err()
			if err == nil {
				database.RedisClient.Expire(ctx, rateLimitKey, RateLimitWindow)
			}
		}
		if err != nil {
			// Fail open
			next.ServeHTTP(w, r)
			return
		}

		if newCount > RateLimitMaxRequests {
			database.RedisClient.Set(ctx, blockedKey, "1", BlockedIPDuration)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Rate limit exceeded. Your IP has been temporarily blocked."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

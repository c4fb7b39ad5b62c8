package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter counts requests per client in fixed one-second windows
// stored in redis, so the limit holds across replicas. Redis failures let
// the request through.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	prefix string
	now    func() time.Time
}

// NewRedisRateLimiter allows rps requests per client per second, rounded up
// to a whole request.
func NewRedisRateLimiter(client *redis.Client, rps float64) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  windowLimit(rps),
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

func windowLimit(rps float64) int64 {
	if rps <= 1 || math.IsNaN(rps) {
		return 1
	}
	return int64(math.Ceil(rps))
}

func (rl *RedisRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("%s%s:%d", rl.prefix, clientKey(r), rl.now().Unix())

		pipe := rl.client.TxPipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, 2*time.Second)
		if _, err := pipe.Exec(r.Context()); err != nil {
			slog.Warn("rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if incr.Val() > rl.limit {
			tooManyRequests(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient 介面定義
type RedisClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisTokenBucket 以redis lua script實作的token bucket，多實例共用同一份額度
type RedisTokenBucket struct {
	capacity int
	rate     float64
	client   RedisClient
}

func NewRedisTokenBucket(client RedisClient, capacity int, rate float64) *RedisTokenBucket {
	if capacity <= 0 {
		capacity = 20
	}
	if rate <= 0 {
		rate = 10
	}
	return &RedisTokenBucket{
		capacity: capacity,
		rate:     rate,
		client:   client,
	}
}

func (r *RedisTokenBucket) Allow(ctx context.Context, key string) bool {
	luaScript := `
		local key = KEYS[1]
		local capacity = tonumber(ARGV[1])
		local rate = tonumber(ARGV[2])
		local now = tonumber(ARGV[3])
		local initTokens = tonumber(ARGV[4])

		-- 取得或初始化 bucket 狀態
		local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
		local currentTokens = tonumber(bucket[1])
		local lastRefill = tonumber(bucket[2])

		-- 如果 key 不存在，進行初始化
		if currentTokens == nil then
			currentTokens = initTokens
			lastRefill = now
			redis.call('HMSET', key, 'tokens', currentTokens, 'last_refill', lastRefill)
			redis.call('EXPIRE', key, 60)
		end

		-- 計算需要補充的 tokens
		local elapsedSeconds = (now - lastRefill) / 1000000000
		local tokensToAdd = elapsedSeconds * rate

		currentTokens = math.min(capacity, currentTokens + tokensToAdd)

		if currentTokens < 1 then
			redis.call('HMSET', key, 'tokens', currentTokens, 'last_refill', now)
			return 0
		end

		currentTokens = currentTokens - 1
		redis.call('HMSET', key, 'tokens', currentTokens, 'last_refill', now)

		return 1
	`

	result, err := r.client.Eval(
		ctx,
		luaScript,
		[]string{key},
		r.capacity,
		r.rate,
		time.Now().UnixNano(),
		r.capacity,
	).Int64()

	if err != nil {
		// redis故障時放行，限流屬於保護機制不是正確性條件
		return true
	}

	return result == 1
}

// RateLimitMiddleware 依client IP限流
func RateLimitMiddleware(limiter *RedisTokenBucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}

			if !limiter.Allow(r.Context(), "rate:"+ip) {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

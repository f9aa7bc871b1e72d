// Package ratelimit throttles sensitive endpoints with a token bucket kept in Redis, so every API replica
// draws from the same bucket.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/metrics"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/redis/go-redis/v9"
)

// The bucket refills in whole intervals; last_refill_ms only advances by full intervals so partial
// progress towards the next token is kept.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
  local elapsed = math.max(0, now_ms - last_refill)
  local intervals = math.floor(elapsed / interval_ms)
  if intervals > 0 then
    tokens = math.min(capacity, tokens + (intervals * refill_tokens))
    last_refill = last_refill + (intervals * interval_ms)
  end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_after_ms = interval_ms - (now_ms - last_refill)
  if retry_after_ms < 0 then retry_after_ms = 0 end
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

type Config struct {
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter struct {
	rdb redis.Scripter
	cfg Config
	now func() time.Time
}

func NewLimiter(rdb redis.Scripter, cfg Config) *Limiter {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	return &Limiter{rdb: rdb, cfg: cfg, now: time.Now}
}

// Allow takes one token from the bucket named by parts.
func (l *Limiter) Allow(ctx context.Context, parts ...string) (Result, error) {
	key := l.cfg.Prefix + ":" + strings.Join(parts, ":")
	args := []interface{}{
		l.now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int64(math.Ceil(l.cfg.TTL.Seconds())),
	}

	vals, err := tokenBucket.Run(ctx, l.rdb, []string{key}, args...).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("token bucket %s: %w", key, err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("token bucket %s: unexpected result %v", key, vals)
	}
	return Result{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// Middleware limits route per client IP. Redis failures fail open.
func (l *Limiter) Middleware(route string, base *transport.BaseHandler, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), route, clientIP(r))
			if err != nil {
				base.Logger.Warn("rate limiter unavailable", "route", route, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if res.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			secs := int(math.Ceil(res.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			m.Limited(route)
			base.Logger.Warn("rate limit exceeded", "route", route, "client_ip", clientIP(r), "retry_after", secs)
			base.HandleServiceError(w, errors.ErrRateLimited.WithDetails(map[string]int{"retry_after": secs}))
		})
	}
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

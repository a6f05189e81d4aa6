package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"linkbio-platform/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimit 按客户端 IP 限流。
// 配置了 Redis 时使用 Redis 存储（多实例共享额度），否则退化为进程内令牌桶。
func RateLimit(redisClient *redis.Client, limitConfig *config.Limit) gin.HandlerFunc {
	if !limitConfig.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	period := time.Duration(limitConfig.Period) * time.Second
	var limit gin.HandlerFunc

	if redisClient != nil {
		store, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix:   "ratelimit",
			MaxRetry: 3,
		})
		if err != nil {
			zap.S().Warnf("Redis 限流存储初始化失败，改用内存限流: %v", err)
		} else {
			instance := limiter.New(store, limiter.Rate{Period: period, Limit: limitConfig.Requests})
			limit = mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(limitReached))
		}
	}
	if limit == nil {
		limit = memoryRateLimit(period, limitConfig.Requests, int(limitConfig.Burst))
	}

	return func(c *gin.Context) {
		// 跳过特定路径
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}
		limit(c)
	}
}

func limitReached(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "请求过于频繁，请稍后再试",
	})
}

// memoryRateLimit 每个 IP 一个令牌桶
func memoryRateLimit(period time.Duration, requests int64, burst int) gin.HandlerFunc {
	buckets := newIPBuckets(rate.Every(period/time.Duration(requests)), burst, idleTTL(period))

	return func(c *gin.Context) {
		if !buckets.allow(c.ClientIP(), time.Now()) {
			limitReached(c)
			return
		}
		c.Next()
	}
}

// idleTTL 空闲超过该时长的令牌桶已回满，可以回收
func idleTTL(period time.Duration) time.Duration {
	if period < time.Minute {
		return 10 * time.Minute
	}
	return 10 * period
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipBuckets 按 IP 保存令牌桶，定期清理空闲条目，防止 map 无限增长
type ipBuckets struct {
	mu        sync.Mutex
	every     rate.Limit
	burst     int
	ttl       time.Duration
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newIPBuckets(every rate.Limit, burst int, ttl time.Duration) *ipBuckets {
	return &ipBuckets{
		every:   every,
		burst:   burst,
		ttl:     ttl,
		buckets: make(map[string]*bucket),
	}
}

func (b *ipBuckets) allow(ip string, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= b.ttl {
		b.sweep(now)
	}

	e, ok := b.buckets[ip]
	if !ok {
		e = &bucket{limiter: rate.NewLimiter(b.every, b.burst)}
		b.buckets[ip] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// sweep 调用方持有锁
func (b *ipBuckets) sweep(now time.Time) {
	for ip, e := range b.buckets {
		if now.Sub(e.lastSeen) >= b.ttl {
			delete(b.buckets, ip)
		}
	}
	b.lastSweep = now
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linkbio-platform/internal/config"
	"linkbio-platform/internal/testutils"
	auth "linkbio-platform/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func perform(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCronAuth(t *testing.T) {
	router := gin.New()
	router.GET("/prod", CronAuth("topsecret", false), okHandler)
	router.GET("/dev", CronAuth("", true), okHandler)
	router.GET("/unset", CronAuth("", false), okHandler)

	assert.Equal(t, http.StatusUnauthorized, perform(router, "GET", "/prod", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, "GET", "/prod", map[string]string{"Authorization": "Bearer nope"}).Code)
	assert.Equal(t, http.StatusOK, perform(router, "GET", "/prod", map[string]string{"Authorization": "Bearer topsecret"}).Code)

	// 开发模式不校验密钥
	assert.Equal(t, http.StatusOK, perform(router, "GET", "/dev", nil).Code)

	// 未配置密钥时，即使携带 "Bearer " 也拒绝
	assert.Equal(t, http.StatusUnauthorized, perform(router, "GET", "/unset", map[string]string{"Authorization": "Bearer "}).Code)
}

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewManager("secret", "linkbio-test", 1)
	router := gin.New()
	router.GET("/me", AuthMiddleware(manager), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	assert.Equal(t, http.StatusUnauthorized, perform(router, "GET", "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, "GET", "/me", map[string]string{"Authorization": "Token abc"}).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, "GET", "/me", map[string]string{"Authorization": "Bearer abc"}).Code)

	token, err := manager.GenerateToken(7, "alice", "user")
	require.NoError(t, err)
	w := perform(router, "GET", "/me", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}

func limitedRouter(client *redis.Client) *gin.Engine {
	router := gin.New()
	router.Use(RateLimit(client, &config.Limit{
		Enabled:   true,
		Requests:  2,
		Period:    10,
		Burst:     2,
		SkipPaths: []string{"/api/cron"},
	}))
	router.GET("/api/links", okHandler)
	router.GET("/api/cron/sync-analytics", okHandler)
	return router
}

func TestRateLimit_Memory(t *testing.T) {
	router := limitedRouter(nil)

	assert.Equal(t, http.StatusOK, perform(router, "GET", "/api/links", nil).Code)
	assert.Equal(t, http.StatusOK, perform(router, "GET", "/api/links", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(router, "GET", "/api/links", nil).Code)

	// 跳过的路径不受限
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, perform(router, "GET", "/api/cron/sync-analytics", nil).Code)
	}
}

func TestRateLimit_Redis(t *testing.T) {
	client, _ := testutils.NewTestRedis(t)
	router := limitedRouter(client)

	assert.Equal(t, http.StatusOK, perform(router, "GET", "/api/links", nil).Code)
	assert.Equal(t, http.StatusOK, perform(router, "GET", "/api/links", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(router, "GET", "/api/links", nil).Code)
}

func TestAdminMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/admin", func(c *gin.Context) {
		c.Set(ContextRole, c.Query("role"))
	}, AdminMiddleware(), okHandler)

	assert.Equal(t, http.StatusForbidden, perform(router, "GET", "/admin?role=user", nil).Code)
	assert.Equal(t, http.StatusOK, perform(router, "GET", "/admin?role=admin", nil).Code)
}

// 空闲的令牌桶在下一次清理时被回收，活跃的保留
func TestIPBuckets_EvictsIdle(t *testing.T) {
	b := newIPBuckets(1, 1, time.Minute)
	start := time.Now()

	assert.True(t, b.allow("10.0.0.1", start))
	assert.False(t, b.allow("10.0.0.1", start))
	assert.True(t, b.allow("10.0.0.2", start.Add(50*time.Second)))
	assert.Len(t, b.buckets, 2)

	// 10.0.0.1 空闲满一分钟，10.0.0.2 只空闲 20 秒
	assert.True(t, b.allow("10.0.0.3", start.Add(70*time.Second)))
	assert.Len(t, b.buckets, 2)
	assert.NotContains(t, b.buckets, "10.0.0.1")
	assert.Contains(t, b.buckets, "10.0.0.2")
}

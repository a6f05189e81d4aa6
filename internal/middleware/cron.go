package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CronAuth 校验定时任务触发方携带的共享密钥（Authorization: Bearer <secret>）。
// 开发模式下不校验；未配置密钥时拒绝所有请求。
func CronAuth(secret string, devMode bool) gin.HandlerFunc {
	expected := []byte("Bearer " + secret)

	return func(c *gin.Context) {
		if devMode {
			c.Next()
			return
		}

		got := []byte(c.GetHeader("Authorization"))
		if secret == "" || subtle.ConstantTimeCompare(got, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未授权"})
			return
		}
		c.Next()
	}
}

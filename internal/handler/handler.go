package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"linkbio-platform/internal/middleware"
	"linkbio-platform/internal/model"
	"linkbio-platform/internal/tracking"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 目标地址缓存
const (
	linkURLCachePrefix = "link:url:"
	linkURLCacheTTL    = time.Hour
)

// LinkHandler 链接相关处理器：点击跳转、解锁、编辑和公开主页
type LinkHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	recorder *tracking.Recorder
	geo      tracking.GeoHeaders
	logger   *zap.SugaredLogger
}

// NewLinkHandler 创建处理器实例，redisClient 可以为 nil
func NewLinkHandler(db *gorm.DB, redisClient *redis.Client, recorder *tracking.Recorder, geo tracking.GeoHeaders, logger *zap.SugaredLogger) *LinkHandler {
	return &LinkHandler{
		db:       db,
		redis:    redisClient,
		recorder: recorder,
		geo:      geo,
		logger:   logger.Named("link_handler"),
	}
}

// HealthCheck 健康检查
func (h *LinkHandler) HealthCheck(c *gin.Context) {
	status := gin.H{"status": "healthy", "timestamp": time.Now()}
	httpStatus := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status["status"] = "unhealthy"
		status["database"] = "unreachable"
		httpStatus = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			status["cache"] = "unreachable"
		}
	}
	c.JSON(httpStatus, status)
}

// RedirectToLink godoc
// @Summary 点击跳转
// @Description 跳转到链接的目标地址，点击记录在后台异步写入
// @Tags Click
// @Param   id  path  string  true  "链接 ID"
// @Success 302 "跳转到目标地址"
// @Failure 404 {object} map[string]string "链接不存在"
// @Router /api/link/{id}/click [get]
func (h *LinkHandler) RedirectToLink(c *gin.Context) {
	id := c.Param("id")

	destination, err := h.lookupURL(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}
	if err != nil {
		// 查询出错时直接查库跳转，不记录点击
		h.logger.Warnw("查询链接失败，跳过点击记录", "link_id", id, "error", err)
		var link model.Link
		if err := h.db.Select("url").Where("id = ?", id).First(&link).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
			return
		}
		c.Redirect(http.StatusFound, link.URL)
		return
	}

	// 请求头必须在本 goroutine 内读取，之后 gin.Context 会被回收
	cc := tracking.FromRequest(c.Request, h.geo)
	c.Redirect(http.StatusFound, destination)
	h.recorder.Track(id, cc)
}

// lookupURL 先查 Redis 缓存，再查数据库并回填缓存
func (h *LinkHandler) lookupURL(ctx context.Context, id string) (string, error) {
	if h.redis != nil {
		cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		cachedURL, err := h.redis.Get(cctx, linkURLCachePrefix+id).Result()
		cancel()
		if err == nil {
			return cachedURL, nil
		}
	}

	var link model.Link
	if err := h.db.WithContext(ctx).Select("id", "url").Where("id = ?", id).First(&link).Error; err != nil {
		return "", err
	}

	if h.redis != nil {
		cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		h.redis.Set(cctx, linkURLCachePrefix+id, link.URL, linkURLCacheTTL)
		cancel()
	}
	return link.URL, nil
}

// invalidateURL 链接修改或删除后清除目标地址缓存
func (h *LinkHandler) invalidateURL(id string) {
	if h.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.redis.Del(ctx, linkURLCachePrefix+id).Err(); err != nil {
		h.logger.Warnw("清除链接缓存失败", "link_id", id, "error", err)
	}
}

// UnlockRequest 解锁请求
type UnlockRequest struct {
	Password string `json:"password" binding:"required"`
}

// UnlockLink godoc
// @Summary 解锁受密码保护的链接
// @Tags Click
// @Accept  json
// @Produce  json
// @Param   id    path  string         true  "链接 ID"
// @Param   body  body  UnlockRequest  true  "访问密码"
// @Success 200 {object} map[string]string "点击地址"
// @Failure 401 {object} map[string]string "密码错误"
// @Failure 404 {object} map[string]string "链接不存在"
// @Router /api/link/{id}/unlock [post]
func (h *LinkHandler) UnlockLink(c *gin.Context) {
	id := c.Param("id")

	var req UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	var link model.Link
	if err := h.db.Select("id", "password_hash").Where("id = ?", id).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在"})
		return
	}
	if !link.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "密码错误"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": clickPath(id)})
}

func clickPath(id string) string {
	return "/api/link/" + id + "/click"
}

// requireUser 读取当前用户，未登录时直接返回 401
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证"})
		return 0, false
	}
	return userID, true
}

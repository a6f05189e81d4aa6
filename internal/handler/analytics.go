package handler

import (
	"context"
	"errors"
	"net/http"

	"linkbio-platform/internal/analytics"
	"linkbio-platform/internal/syncer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyticsHandler 点击统计查询
type AnalyticsHandler struct {
	service *analytics.Service
	logger  *zap.SugaredLogger
}

// NewAnalyticsHandler 创建统计处理器
func NewAnalyticsHandler(service *analytics.Service, logger *zap.SugaredLogger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger.Named("analytics_handler")}
}

// GetAnalytics godoc
// @Summary 获取链接点击统计
// @Description 返回总点击数、近 7 天每日点击以及设备、来源、国家分布，结果缓存 5 分钟
// @Tags Analytics
// @Security ApiKeyAuth
// @Produce  json
// @Param   linkId  path  string  true  "链接 ID"
// @Success 200 {object} analytics.Report
// @Failure 401 {object} map[string]string "未认证"
// @Failure 404 {object} map[string]string "链接不存在或无权访问"
// @Router /api/analytics/{linkId} [get]
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.service.GetAnalytics(c.Request.Context(), c.Param("linkId"), userID)
	if errors.Is(err, analytics.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在或无权访问"})
		return
	}
	if err != nil {
		h.logger.Errorw("统计查询失败", "link_id", c.Param("linkId"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// Backlog 待同步队列长度与实时点击数
type Backlog interface {
	Len(ctx context.Context) (int64, error)
	LiveCount(ctx context.Context, linkID string) (int64, error)
}

// SyncHandler 定时任务触发的队列同步
type SyncHandler struct {
	worker    *syncer.Worker
	backlog   Backlog
	batchSize int
	logger    *zap.SugaredLogger
}

// NewSyncHandler 创建同步处理器
func NewSyncHandler(worker *syncer.Worker, backlog Backlog, batchSize int, logger *zap.SugaredLogger) *SyncHandler {
	return &SyncHandler{worker: worker, backlog: backlog, batchSize: batchSize, logger: logger.Named("sync_handler")}
}

// SyncAnalytics godoc
// @Summary 同步点击队列
// @Description 从 Redis 队列取出一批点击快照写入数据库，需要 Bearer 共享密钥
// @Tags Cron
// @Security CronAuth
// @Produce  json
// @Success 200 {object} syncer.Result
// @Failure 401 {object} map[string]string "未授权"
// @Failure 500 {object} map[string]string "同步失败"
// @Router /api/cron/sync-analytics [get]
func (h *SyncHandler) SyncAnalytics(c *gin.Context) {
	// 出队后不再跟随请求取消，触发方超时断开不会丢弃已取出的批次
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), syncer.RunTimeout)
	defer cancel()

	result, err := h.worker.DrainAndSync(ctx, h.batchSize)
	if err != nil {
		h.logger.Errorw("同步失败", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "同步失败", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// QueueStatus godoc
// @Summary 查看待同步队列
// @Tags Admin
// @Security ApiKeyAuth
// @Produce  json
// @Param   link_id  query  string  false  "同时返回该链接的实时点击数"
// @Success 200 {object} map[string]int64
// @Failure 403 {object} map[string]string "需要管理员权限"
// @Router /api/admin/sync-status [get]
func (h *SyncHandler) QueueStatus(c *gin.Context) {
	pending, err := h.backlog.Len(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取队列失败"})
		return
	}
	status := gin.H{"pending": pending, "batch_size": h.batchSize}

	if linkID := c.Query("link_id"); linkID != "" {
		live, err := h.backlog.LiveCount(c.Request.Context(), linkID)
		if err != nil {
			h.logger.Warnw("读取实时点击数失败", "link_id", linkID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "读取实时点击数失败"})
			return
		}
		status["link_id"] = linkID
		status["live_clicks"] = live
	}
	c.JSON(http.StatusOK, status)
}

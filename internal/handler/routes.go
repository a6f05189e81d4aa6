package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Link      *LinkHandler
	Auth      *AuthHandler
	Analytics *AnalyticsHandler
	Sync      *SyncHandler
}

// Middlewares 路由分组使用的鉴权中间件
type Middlewares struct {
	Auth  gin.HandlerFunc
	Admin gin.HandlerFunc
	Cron  gin.HandlerFunc
}

// RegisterRoutes 注册业务路由。
// 点击跳转、解锁和公开主页无需登录；同步接口只接受定时任务的共享密钥。
func RegisterRoutes(router gin.IRouter, h Handlers, m Middlewares) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", h.Auth.Register)
	}

	public := router.Group("/api")
	{
		public.GET("/link/:id/click", h.Link.RedirectToLink)
		public.POST("/link/:id/unlock", h.Link.UnlockLink)
		public.GET("/public/:username", h.Link.GetPublicProfile)
	}

	cron := router.Group("/api/cron", m.Cron)
	{
		cron.GET("/sync-analytics", h.Sync.SyncAnalytics)
	}

	api := router.Group("/api", m.Auth)
	{
		api.GET("/me", h.Auth.GetCurrentUser)
		api.GET("/links", h.Link.ListLinks)
		api.POST("/links", h.Link.CreateLink)
		api.PATCH("/link/reorder", h.Link.ReorderLinks)
		api.GET("/link/:id", h.Link.GetLink)
		api.PATCH("/link/:id", h.Link.UpdateLink)
		api.DELETE("/link/:id", h.Link.DeleteLink)
		api.GET("/analytics/:linkId", h.Analytics.GetAnalytics)
	}

	admin := router.Group("/api/admin", m.Auth, m.Admin)
	{
		admin.GET("/sync-status", h.Sync.QueueStatus)
	}
}

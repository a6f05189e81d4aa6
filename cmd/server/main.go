package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "linkbio-platform/docs"
	"linkbio-platform/internal/analytics"
	"linkbio-platform/internal/buffer"
	"linkbio-platform/internal/config"
	"linkbio-platform/internal/handler"
	"linkbio-platform/internal/middleware"
	"linkbio-platform/internal/model"
	"linkbio-platform/internal/syncer"
	"linkbio-platform/internal/tracking"
	"linkbio-platform/pkg/database"
	auth "linkbio-platform/pkg/jwt"
	"linkbio-platform/pkg/logger"
	"linkbio-platform/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title Link-in-bio 点击统计 API
// @version 1.0
// @description 链接主页、点击跳转与点击统计服务
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey CronAuth
// @in header
// @name Authorization
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Println("配置加载失败:", err)
		os.Exit(1)
	}

	logger.InitLogger(&logger.Options{
		Level:      cfg.Log.Level,
		Filename:   cfg.Log.Filename,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	db, err := database.Open(&database.Options{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		Charset:  cfg.Database.Charset,
		Debug:    cfg.IsDevelopment(),
	})
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Infof("✅ 数据库连接成功 (%s)", cfg.Database.Driver)

	if err := database.Migrate(db); err != nil {
		sugaredLogger.Fatalf("数据库迁移失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库迁移成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewRedisClient(&redis.Options{
			Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
		})
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败，点击将直接写入数据库: %v", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	// 点击记录：有 Redis 时进入缓冲队列，由同步任务批量落库
	var (
		sink           tracking.Sink
		queue          syncer.Queue    = syncer.EmptyQueue{}
		backlog        handler.Backlog = syncer.EmptyQueue{}
		analyticsCache analytics.Cache
	)
	if rdb != nil {
		buf := buffer.New(rdb, cfg.Tracking.QueueKey, cfg.Tracking.CounterPrefix)
		sink = tracking.NewBufferSink(buf, sugaredLogger)
		queue = buf
		backlog = buf
		analyticsCache = analytics.NewRedisCache(rdb)
	} else {
		sink = tracking.NewStoreSink(db)
		analyticsCache = analytics.NewMemoryCache()
	}
	recorder := tracking.NewRecorder(sink, sugaredLogger, time.Duration(cfg.Tracking.TimeoutMs)*time.Millisecond)
	worker := syncer.NewWorker(db, queue, sugaredLogger)

	if cfg.Sync.Enabled && rdb != nil {
		scheduler := syncer.NewScheduler(worker, cfg.SyncInterval(), cfg.Sync.BatchSize, sugaredLogger)
		scheduler.Start()
		defer scheduler.Stop()
		sugaredLogger.Info("✅ 点击同步任务已启动")
	}

	analyticsService := analytics.NewService(db, analyticsCache, analytics.Options{
		WindowDays: cfg.Analytics.WindowDays,
		TopN:       cfg.Analytics.TopN,
		CacheTTL:   cfg.AnalyticsCacheTTL(),
	}, sugaredLogger)

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
	sugaredLogger.Info("✅ 认证管理器初始化成功")

	if err := createAdminUser(db); err != nil {
		sugaredLogger.Errorf("创建管理员失败: %v", err)
	}

	if cfg.Cron.Secret == "" && !cfg.IsDevelopment() {
		sugaredLogger.Warn("未配置 CRON_SECRET，同步接口将拒绝所有请求")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.GinZapLogger(logger.Logger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	linkHandler := handler.NewLinkHandler(db, rdb, recorder, tracking.GeoHeaders{
		Country: cfg.Tracking.CountryHeaders,
		City:    cfg.Tracking.CityHeaders,
	}, sugaredLogger)
	router.GET("/health", linkHandler.HealthCheck)

	router.Use(middleware.RateLimit(rdb, &cfg.RateLimit))
	handler.RegisterRoutes(router, handler.Handlers{
		Link:      linkHandler,
		Auth:      handler.NewAuthHandler(db, tokenManager, sugaredLogger),
		Analytics: handler.NewAnalyticsHandler(analyticsService, sugaredLogger),
		Sync:      handler.NewSyncHandler(worker, backlog, cfg.Sync.BatchSize, sugaredLogger),
	}, handler.Middlewares{
		Auth:  middleware.AuthMiddleware(tokenManager),
		Admin: middleware.AdminMiddleware(),
		Cron:  middleware.CronAuth(cfg.Cron.Secret, cfg.IsDevelopment()),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugaredLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugaredLogger.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		sugaredLogger.Errorf("服务关闭失败: %v", err)
	}
	// 等待已发出的点击记录任务写完
	recorder.Wait()
	sugaredLogger.Info("服务已退出")
}

func createAdminUser(db *gorm.DB) error {
	var existing model.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err == nil {
		return nil
	}

	admin := model.User{Username: "admin", Email: "admin@linkbio.local", Role: model.RoleAdmin, IsActive: true}
	if err := admin.SetPassword("admin"); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	zap.S().Infow("✅ 默认管理员创建成功", "username", "admin")
	return nil
}

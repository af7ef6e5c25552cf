package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cloud-deploy/internal/adapter/notification"
	"cloud-deploy/internal/adapter/provisioner"
	"cloud-deploy/internal/api/handler"
	"cloud-deploy/internal/api/middleware"
	"cloud-deploy/internal/pkg/config"
	"cloud-deploy/internal/repository"
	"cloud-deploy/internal/service"
)

// Setup 设置路由
func Setup(cfg *config.Config, db *gorm.DB, rdb *redis.Client, prov provisioner.Provisioner, notifier notification.Notifier) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.MetricsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 初始化Repository
	userRepo := repository.NewUserRepository(db)
	deployRepo := repository.NewDeploymentRepository(db)
	domainRepo := repository.NewDomainRepository(db)
	logRepo := repository.NewLogRepository(db)

	// 初始化Service
	authService := service.NewAuthService(userRepo, cfg.Auth.JWT.AccessTokenExpire)
	deployService := service.NewDeploymentService(deployRepo, logRepo, prov, notifier, &cfg.AWS)
	domainService := service.NewDomainService(domainRepo, prov)
	monitoringService := service.NewMonitoringService(logRepo, deployRepo, rdb)
	analyticsService := service.NewAnalyticsService(userRepo, deployRepo, domainRepo, rdb)
	aiService := service.NewAIService(&cfg.OpenAI)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	deployHandler := handler.NewDeploymentHandler(deployService)
	domainHandler := handler.NewDomainHandler(domainService)
	monitoringHandler := handler.NewMonitoringHandler(monitoringService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	aiHandler := handler.NewAIHandler(aiService)

	api := r.Group("/api")

	// 按天累计访问量, 供流量分析使用
	api.Use(func(c *gin.Context) {
		_ = analyticsService.RecordVisit(c.Request.Context())
		c.Next()
	})

	{
		// 认证相关(无需token)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", middleware.AuthMiddleware(), authHandler.GetMe)
		}

		// 部署(需认证)
		deployGroup := api.Group("/deploy")
		deployGroup.Use(middleware.AuthMiddleware())
		{
			deployGroup.POST("/create", deployHandler.Create)
			deployGroup.GET("/list", deployHandler.List)
			deployGroup.GET("/:id", deployHandler.Get)
			deployGroup.DELETE("/:id", deployHandler.Delete)
			deployGroup.POST("/:id/rollback", deployHandler.Rollback)
		}

		// 域名(需认证)
		domainGroup := api.Group("/domain")
		domainGroup.Use(middleware.AuthMiddleware())
		{
			domainGroup.POST("/register", domainHandler.Register)
			domainGroup.POST("/dns", domainHandler.ConfigureDNS)
			domainGroup.GET("/status/:domain", domainHandler.Status)
			domainGroup.DELETE("/:domain", domainHandler.Delete)
		}

		// 分析统计
		analyticsGroup := api.Group("/analytics")
		{
			analyticsGroup.GET("/summary", analyticsHandler.Summary)
			analyticsGroup.GET("/traffic", analyticsHandler.Traffic)
			analyticsGroup.GET("/performance", analyticsHandler.Performance)
		}

		// 监控
		monitoringGroup := api.Group("/monitoring")
		{
			monitoringGroup.GET("/system", monitoringHandler.SystemMetrics)
			monitoringGroup.GET("/live", monitoringHandler.LiveUpdates)
			monitoringGroup.GET("/errors", monitoringHandler.Errors)
			monitoringGroup.GET("/logs/:id", monitoringHandler.DeploymentLogs)
		}

		// AI助手
		aiGroup := api.Group("/ai")
		{
			aiGroup.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{"status": "ok"})
			})
			aiGroup.POST("/recommend", middleware.AuthMiddleware(), aiHandler.Recommend)
		}
	}

	return r
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cloud-deploy/internal/adapter/notification"
	"cloud-deploy/internal/adapter/provisioner"
	"cloud-deploy/internal/api/router"
	"cloud-deploy/internal/model"
	"cloud-deploy/internal/pkg/config"
	"cloud-deploy/internal/pkg/database"
	"cloud-deploy/internal/pkg/logger"
	"cloud-deploy/internal/repository"
	"cloud-deploy/internal/scheduler"
	"cloud-deploy/pkg/constants"
)

var (
	configFile = flag.String("config", "", "配置文件路径 (例如: -config=configs/config.yaml)")
	version    = flag.Bool("version", false, "显示版本信息")
)

const (
	appVersion = "1.0.0"
	appName    = "cloud-deploy"
)

func main() {
	// 解析命令行参数
	flag.Parse()

	// 显示版本信息
	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		os.Exit(0)
	}

	// init config logger
	var cfg *config.Config
	{
		// 优先级: 命令行参数 > 环境变量 > 默认路径
		configPath := getConfigPath()

		// 加载配置
		c, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("加载配置失败: %v\n", err)
			os.Exit(1)
		}
		cfg = c

		// 初始化日志
		if err := logger.Init(&cfg.Log); err != nil {
			fmt.Printf("初始化日志失败: %v\n", err)
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()))

		defer func() {
			_ = logger.Close()
		}()
	}

	logger.Info(fmt.Sprintf("服务 %s 启动中...", appName), zap.String("version", appVersion))

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer func() {
		_ = database.Close()
	}()

	logger.Info(fmt.Sprintf("数据库连接成功 %s:%v", cfg.Database.Host, cfg.Database.Port), zap.String("database", cfg.Database.Database))

	// 自动建表
	if err := database.GetDB().AutoMigrate(
		&model.User{},
		&model.Deployment{},
		&model.Domain{},
		&model.LogEntry{},
	); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 初始化Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = rdb.Close()
	}()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis连接失败, 实时监控与流量统计不可用", zap.Error(err))
	}
	pingCancel()

	// 初始化云服务供应适配器
	prov, err := provisioner.NewAWSProvisioner(&cfg.AWS, logger.Log)
	if err != nil {
		logger.Fatal("初始化云服务适配器失败", zap.Error(err))
	}

	// 初始化通知器
	notifier := buildNotifier(cfg)

	// 初始化并启动定时任务调度器
	db := database.GetDB()
	taskScheduler := scheduler.NewScheduler(
		db,
		logger.Log,
		&cfg.Scheduler,
		repository.NewLogRepository(db),
		repository.NewDeploymentRepository(db),
		notifier,
	)
	if err := taskScheduler.Start(); err != nil {
		logger.Warn("定时任务调度器启动失败", zap.Error(err))
	}

	// 设置路由
	r := router.Setup(cfg, db, rdb, prov, notifier)

	// 创建HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logger.Info(fmt.Sprintf("%s 服务启动成功", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务正在关闭...")

	// 关闭定时任务调度器
	taskScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务已关闭")
}

// buildNotifier 按配置组装通知渠道
func buildNotifier(cfg *config.Config) notification.Notifier {
	if !cfg.Notification.Enabled {
		return notification.NewLogNotifier(logger.Log)
	}

	var notifiers []notification.Notifier
	for _, provider := range cfg.Notification.Providers {
		switch provider {
		case constants.NotifyTypeEmail:
			notifiers = append(notifiers, notification.NewEmailNotifier(&cfg.SMTP, true, logger.Log))
		case constants.NotifyTypeSlack:
			notifiers = append(notifiers, notification.NewSlackNotifier(&cfg.Slack, true, logger.Log))
		default:
			logger.Warn("未知的通知渠道", zap.String("provider", provider))
		}
	}
	if len(notifiers) == 0 {
		return notification.NewLogNotifier(logger.Log)
	}
	return notification.NewMultiNotifier(logger.Log, notifiers...)
}

// getConfigPath 获取配置文件路径
// 优先级: 命令行参数 > 环境变量 > 默认路径
func getConfigPath() string {
	// 1. 命令行参数
	if *configFile != "" {
		return *configFile
	}

	// 2. 环境变量
	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}

	// 3. 默认路径
	return "configs/config.yaml"
}

// getConfigSource 获取配置来源说明
func getConfigSource() string {
	if *configFile != "" {
		return "命令行参数"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "环境变量"
	}
	return "默认配置"
}

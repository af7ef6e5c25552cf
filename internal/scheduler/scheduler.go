package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cloud-deploy/internal/adapter/notification"
	"cloud-deploy/internal/pkg/config"
	"cloud-deploy/internal/repository"
	"cloud-deploy/pkg/constants"
)

// TaskKind 定时任务类型
// 任务集合封闭, 新任务需在此登记并在 runTask 中实现
type TaskKind int

const (
	TaskClearOldLogs     TaskKind = iota // 清理过期日志
	TaskEmailReminders                   // 邮件提醒
	TaskOptimizeDatabase                 // 数据库优化
)

func (k TaskKind) String() string {
	switch k {
	case TaskClearOldLogs:
		return "clear_old_logs"
	case TaskEmailReminders:
		return "email_reminders"
	case TaskOptimizeDatabase:
		return "optimize_database"
	default:
		return "unknown"
	}
}

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	cfg           *config.SchedulerConfig
	db            *gorm.DB
	logRepo       repository.LogRepository
	deployRepo    repository.DeploymentRepository
	notifier      notification.Notifier
	cronSchedules map[TaskKind]cron.EntryID // 存储任务ID, 便于管理
}

// NewScheduler 创建调度器
func NewScheduler(
	db *gorm.DB,
	logger *zap.Logger,
	cfg *config.SchedulerConfig,
	logRepo repository.LogRepository,
	deployRepo repository.DeploymentRepository,
	notifier notification.Notifier,
) *Scheduler {
	// 创建 cron 实例（带秒级支持）
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:          c,
		logger:        logger,
		cfg:           cfg,
		db:            db,
		logRepo:       logRepo,
		deployRepo:    deployRepo,
		notifier:      notifier,
		cronSchedules: make(map[TaskKind]cron.EntryID),
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	log := s.logger.Sugar()

	log.Info("启动定时任务调度器...")

	// cron 表达式格式: 秒 分 时 日 月 周
	tasks := []struct {
		kind        TaskKind
		expr        string
		defaultExpr string
	}{
		{TaskClearOldLogs, s.cfg.ClearLogsCron, "0 0 2 * * *"},        // 默认: 每天凌晨2点
		{TaskEmailReminders, s.cfg.EmailRemindersCron, "0 0 9 * * 1"}, // 默认: 每周一早9点
		{TaskOptimizeDatabase, s.cfg.OptimizeDBCron, "0 0 3 * * 0"},   // 默认: 每周日凌晨3点
	}

	for _, task := range tasks {
		kind := task.kind
		expr := task.expr
		if expr == "" {
			expr = task.defaultExpr
			log.Warnf("未配置%s的cron表达式, 使用默认值: %s", kind, expr)
		}

		entryID, err := s.cron.AddFunc(expr, func() {
			log.Infof("执行定时任务: %s", kind)
			if err := s.Run(kind); err != nil {
				log.Errorf("定时任务 %s 执行失败: %v", kind, err)
			}
		})
		if err != nil {
			log.Errorf("注册定时任务 %s (%s) 失败: %v", kind, expr, err)
			return err
		}

		s.cronSchedules[kind] = entryID
		log.Infof("定时任务已注册: %s cron=%s entry_id=%d", kind, expr, entryID)
	}

	// 启动 cron
	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// Run 手动触发任务（用于测试或手动触发）
func (s *Scheduler) Run(kind TaskKind) error {
	switch kind {
	case TaskClearOldLogs:
		return s.clearOldLogs()
	case TaskEmailReminders:
		return s.emailReminders()
	case TaskOptimizeDatabase:
		return s.optimizeDatabase()
	default:
		return fmt.Errorf("未知的任务类型: %d", kind)
	}
}

// clearOldLogs 清理超过保留期的运行日志
func (s *Scheduler) clearOldLogs() error {
	retentionDays := s.cfg.LogRetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.logRepo.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}

	s.logger.Info("过期日志清理完成",
		zap.Int64("deleted", deleted),
		zap.Int("retention_days", retentionDays))
	return nil
}

// emailReminders 提醒仍停留在Pending的部署
func (s *Scheduler) emailReminders() error {
	pending, err := s.deployRepo.ListByStatus(constants.DeploymentStatusPending)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		s.logger.Debug("无待处理部署, 跳过提醒")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg := &notification.NotificationMessage{
		Type:      notification.NotifyReminder,
		Title:     "📬 待处理部署提醒",
		Content:   fmt.Sprintf("当前有 %d 个部署停留在Pending状态", len(pending)),
		Timestamp: time.Now(),
	}
	return s.notifier.Send(ctx, msg)
}

// optimizeDatabase 数据库优化, MySQL下对主要表执行OPTIMIZE TABLE
func (s *Scheduler) optimizeDatabase() error {
	tables := []string{"users", "deployments", "domains", "logs"}
	for _, table := range tables {
		if err := s.db.Exec(fmt.Sprintf("OPTIMIZE TABLE %s", table)).Error; err != nil {
			return fmt.Errorf("优化表 %s 失败: %w", table, err)
		}
	}

	s.logger.Info("数据库优化完成", zap.Strings("tables", tables))
	return nil
}

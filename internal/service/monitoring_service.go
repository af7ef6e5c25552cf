package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"

	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/model"
	"cloud-deploy/internal/pkg/logger"
	"cloud-deploy/internal/repository"
	"cloud-deploy/pkg/constants"
	pkgErrors "cloud-deploy/pkg/errors"
)

// 实时指标在Redis中的键前缀
const liveMetricPrefix = "monitoring:live:"

type MonitoringService interface {
	SystemMetrics(ctx context.Context) (*dto.SystemMetrics, error)
	DeploymentLogs(deploymentID int64) ([]*model.LogEntry, error)
	LiveUpdates(ctx context.Context) (map[string]string, error)
	Errors(limit int) ([]*model.LogEntry, error)
	SaveMetric(ctx context.Context, name, value string) error
}

type monitoringService struct {
	logRepo    repository.LogRepository
	deployRepo repository.DeploymentRepository
	rdb        *redis.Client
}

func NewMonitoringService(logRepo repository.LogRepository, deployRepo repository.DeploymentRepository, rdb *redis.Client) MonitoringService {
	return &monitoringService{
		logRepo:    logRepo,
		deployRepo: deployRepo,
		rdb:        rdb,
	}
}

// SystemMetrics 采集主机CPU/内存/磁盘使用率
func (s *monitoringService) SystemMetrics(ctx context.Context) (*dto.SystemMetrics, error) {
	cpuPercents, err := cpu.Percent(time.Second, false)
	if err != nil || len(cpuPercents) == 0 {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "采集CPU指标失败", err)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "采集内存指标失败", err)
	}

	du, err := disk.Usage("/")
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "采集磁盘指标失败", err)
	}

	metrics := &dto.SystemMetrics{
		CPUUsage:    fmt.Sprintf("%.1f%%", cpuPercents[0]),
		MemoryUsage: fmt.Sprintf("%.1f%%", vm.UsedPercent),
		DiskUsage:   fmt.Sprintf("%.1f%%", du.UsedPercent),
		Timestamp:   time.Now(),
	}

	// 快照写入实时指标缓存, 失败不影响本次查询
	_ = s.SaveMetric(ctx, "cpu_usage", metrics.CPUUsage)
	_ = s.SaveMetric(ctx, "memory_usage", metrics.MemoryUsage)
	_ = s.SaveMetric(ctx, "disk_usage", metrics.DiskUsage)

	return metrics, nil
}

// DeploymentLogs 查询某次部署的运行日志, 部署不存在时返回不存在错误
func (s *monitoringService) DeploymentLogs(deploymentID int64) ([]*model.LogEntry, error) {
	if _, err := s.deployRepo.FindByID(deploymentID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByDeployment(deploymentID)
}

// LiveUpdates 读取Redis中的实时指标快照
func (s *monitoringService) LiveUpdates(ctx context.Context) (map[string]string, error) {
	keys, err := s.rdb.Keys(ctx, liveMetricPrefix+"*").Result()
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询实时指标失败", err)
	}

	updates := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := s.rdb.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "读取实时指标失败", err)
		}
		updates[key[len(liveMetricPrefix):]] = value
	}
	return updates, nil
}

// Errors 查询最近的错误日志
func (s *monitoringService) Errors(limit int) ([]*model.LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.logRepo.ListByLevel(constants.LogLevelError, limit)
}

// SaveMetric 写入一条实时指标, 1小时过期
func (s *monitoringService) SaveMetric(ctx context.Context, name, value string) error {
	if err := s.rdb.Set(ctx, liveMetricPrefix+name, value, time.Hour).Err(); err != nil {
		logger.Warn("写入实时指标失败", zap.String("metric", name), zap.Error(err))
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "写入实时指标失败", err)
	}
	return nil
}

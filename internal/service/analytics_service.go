package service

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/repository"
	"cloud-deploy/pkg/constants"
	pkgErrors "cloud-deploy/pkg/errors"
)

// 流量计数在Redis中的键前缀, 按天累计
const trafficKeyPrefix = "analytics:traffic:"

type AnalyticsService interface {
	Summary() (*dto.AnalyticsSummary, error)
	Traffic(ctx context.Context, days int) ([]dto.TrafficPoint, error)
	Performance() (*dto.PerformanceMetrics, error)
	RecordVisit(ctx context.Context) error
}

type analyticsService struct {
	userRepo   repository.UserRepository
	deployRepo repository.DeploymentRepository
	domainRepo repository.DomainRepository
	rdb        *redis.Client
}

func NewAnalyticsService(
	userRepo repository.UserRepository,
	deployRepo repository.DeploymentRepository,
	domainRepo repository.DomainRepository,
	rdb *redis.Client,
) AnalyticsService {
	return &analyticsService{
		userRepo:   userRepo,
		deployRepo: deployRepo,
		domainRepo: domainRepo,
		rdb:        rdb,
	}
}

// Summary 全局汇总: 用户/部署/域名总量与按状态分布
func (s *analyticsService) Summary() (*dto.AnalyticsSummary, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}

	domains, err := s.domainRepo.Count()
	if err != nil {
		return nil, err
	}

	byStatus, err := s.deployRepo.CountByStatus()
	if err != nil {
		return nil, err
	}

	total := lo.Sum(lo.Values(byStatus))

	return &dto.AnalyticsSummary{
		TotalUsers:          users,
		TotalDeployments:    total,
		TotalDomains:        domains,
		DeploymentsByStatus: byStatus,
	}, nil
}

// Traffic 最近N天的访问量, 数据来自Redis按天计数器
func (s *analyticsService) Traffic(ctx context.Context, days int) ([]dto.TrafficPoint, error) {
	if days <= 0 || days > 90 {
		days = 7
	}

	points := make([]dto.TrafficPoint, 0, days)
	now := time.Now()
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")

		value, err := s.rdb.Get(ctx, trafficKeyPrefix+date).Result()
		if err != nil && err != redis.Nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询流量数据失败", err)
		}

		count, _ := strconv.ParseInt(value, 10, 64)
		points = append(points, dto.TrafficPoint{Date: date, Count: count})
	}
	return points, nil
}

// Performance 部署成功率与平均耗时
func (s *analyticsService) Performance() (*dto.PerformanceMetrics, error) {
	byStatus, err := s.deployRepo.CountByStatus()
	if err != nil {
		return nil, err
	}

	completed := byStatus[constants.DeploymentStatusCompleted]
	failed := byStatus[constants.DeploymentStatusFailed]

	var successRate float64
	if completed+failed > 0 {
		successRate = float64(completed) / float64(completed+failed) * 100
	}

	avgDuration, err := s.deployRepo.AvgDuration(constants.DeploymentStatusCompleted)
	if err != nil {
		return nil, err
	}

	return &dto.PerformanceMetrics{
		CompletedDeployments: completed,
		FailedDeployments:    failed,
		SuccessRate:          successRate,
		AvgDurationSeconds:   avgDuration.Seconds(),
	}, nil
}

// RecordVisit 累加当日访问计数, 保留90天
func (s *analyticsService) RecordVisit(ctx context.Context) error {
	key := trafficKeyPrefix + time.Now().Format("2006-01-02")

	if err := s.rdb.Incr(ctx, key).Err(); err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "记录访问失败", err)
	}
	s.rdb.Expire(ctx, key, 90*24*time.Hour)
	return nil
}

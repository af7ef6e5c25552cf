package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cloud-deploy/internal/adapter/notification"
	"cloud-deploy/internal/adapter/provisioner"
	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/model"
	"cloud-deploy/internal/pkg/config"
	"cloud-deploy/internal/pkg/logger"
	"cloud-deploy/internal/repository"
	"cloud-deploy/pkg/constants"
	pkgErrors "cloud-deploy/pkg/errors"
)

type DeploymentService interface {
	Create(ctx context.Context, req *dto.CreateDeploymentRequest) (*model.Deployment, error)
	GetByID(userID, deploymentID int64) (*model.Deployment, error)
	List(userID int64) ([]*model.Deployment, error)
	Delete(ctx context.Context, userID, deploymentID int64) error
	Rollback(ctx context.Context, userID, deploymentID int64) (*dto.RollbackResponse, error)
}

type deploymentService struct {
	deployRepo  repository.DeploymentRepository
	logRepo     repository.LogRepository
	provisioner provisioner.Provisioner
	notifier    notification.Notifier
	awsCfg      *config.AWSConfig
}

func NewDeploymentService(
	deployRepo repository.DeploymentRepository,
	logRepo repository.LogRepository,
	prov provisioner.Provisioner,
	notifier notification.Notifier,
	awsCfg *config.AWSConfig,
) DeploymentService {
	return &deploymentService{
		deployRepo:  deployRepo,
		logRepo:     logRepo,
		provisioner: prov,
		notifier:    notifier,
		awsCfg:      awsCfg,
	}
}

// Create 创建并执行一次部署
// 先落库Pending再调用云服务; 供应按 实例→存储桶→DNS 顺序执行,
// 任一步失败立即终止并置Failed, 不回滚已供应资源(由回滚接口显式处理);
// 失败时记录保留在库中, 向调用方返回供应商错误
func (s *deploymentService) Create(ctx context.Context, req *dto.CreateDeploymentRequest) (*model.Deployment, error) {
	branch := req.Branch
	if branch == "" {
		branch = "main"
	}
	target := req.Target
	if target == "" {
		target = constants.DeployTargetAWS
	}

	dep := &model.Deployment{
		ProjectName:   req.ProjectName,
		UserID:        req.UserID,
		RepositoryURL: req.RepositoryURL,
		Branch:        branch,
		Status:        constants.DeploymentStatusPending,
		TargetConfig:  req.TargetConfig,
	}
	if dep.TargetConfig == nil {
		dep.TargetConfig = map[string]interface{}{}
	}
	dep.TargetConfig["target"] = target

	if err := s.deployRepo.Create(dep); err != nil {
		return nil, err
	}

	logger.Info("部署记录已创建",
		zap.Int64("deployment_id", dep.ID),
		zap.String("project_name", dep.ProjectName),
		zap.String("target", target))

	if err := s.transition(dep, constants.DeploymentStatusInProgress); err != nil {
		return nil, err
	}

	go s.notifier.SendDeploymentNotification(context.Background(), dep.ID, dep.ProjectName,
		notification.NotifyDeployStart, "部署已开始")

	var provErr error
	switch target {
	case constants.DeployTargetLocal:
		provErr = s.provisionLocal(dep)
	default:
		provErr = s.provisionAWS(ctx, dep)
	}

	if provErr != nil {
		// 供应商错误原样记入部署日志, 便于排查
		dep.AppendLog(fmt.Sprintf("[ERROR] %v", provErr))
		if err := s.transition(dep, constants.DeploymentStatusFailed); err != nil {
			return nil, err
		}

		s.recordLog(constants.LogLevelError, fmt.Sprintf("部署失败: %v", provErr), dep.ID)
		go s.notifier.SendDeploymentNotification(context.Background(), dep.ID, dep.ProjectName,
			notification.NotifyDeployFailed, provErr.Error())

		// 记录已落库为Failed, 调用方收到供应商错误
		var appErr *pkgErrors.AppError
		if !errors.As(provErr, &appErr) {
			provErr = pkgErrors.Wrap(pkgErrors.CodeProviderError, "云服务调用失败", provErr)
		}
		return nil, provErr
	}

	if err := s.transition(dep, constants.DeploymentStatusCompleted); err != nil {
		return nil, err
	}

	s.recordLog(constants.LogLevelInfo, fmt.Sprintf("部署完成: %s", dep.ProjectName), dep.ID)
	go s.notifier.SendDeploymentNotification(context.Background(), dep.ID, dep.ProjectName,
		notification.NotifyDeploySuccess, "部署已完成")

	return dep, nil
}

// provisionAWS 按固定顺序供应云资源
func (s *deploymentService) provisionAWS(ctx context.Context, dep *model.Deployment) error {
	// 1. 计算实例
	instanceID, err := s.provisioner.LaunchInstance(ctx, provisioner.LaunchInstanceRequest{
		ImageID:       s.awsCfg.AMIID,
		InstanceType:  s.awsCfg.InstanceType,
		KeyPair:       s.awsCfg.KeyPair,
		SecurityGroup: s.awsCfg.SecurityGroup,
		TagName:       fmt.Sprintf("%s-deployment-%d", dep.ProjectName, dep.ID),
	})
	if err != nil {
		return err
	}
	dep.InstanceID = &instanceID
	dep.AppendLog(fmt.Sprintf("[INFO] 计算实例已启动: %s", instanceID))

	// 2. 对象存储桶, 桶名带UUID后缀保证全局唯一
	bucketName := s.bucketName(dep)
	if err := s.provisioner.CreateBucket(ctx, bucketName, s.awsCfg.Region); err != nil {
		return err
	}
	dep.BucketName = &bucketName
	dep.AppendLog(fmt.Sprintf("[INFO] 存储桶已创建: %s", bucketName))

	// 3. DNS记录(UPSERT, 重复部署覆盖旧记录)
	recordName := s.dnsRecordName(dep)
	if err := s.provisioner.UpsertDNSRecord(ctx, provisioner.DNSRecord{
		HostedZoneID: s.hostedZoneID(dep),
		Name:         recordName,
		Type:         "CNAME",
		Value:        fmt.Sprintf("%s.s3-website-%s.amazonaws.com", bucketName, s.awsCfg.Region),
		TTL:          300,
	}); err != nil {
		return err
	}
	dep.DNSRecordName = &recordName
	dep.AppendLog(fmt.Sprintf("[INFO] DNS记录已配置: %s", recordName))

	deployedURL := fmt.Sprintf("http://%s", recordName)

	// 4. 可选CDN分发(target_config.cdn开启时)
	if enabled, ok := dep.TargetConfig["cdn"].(bool); ok && enabled {
		distributionID, err := s.provisioner.CreateCDNDistribution(ctx, bucketName, recordName)
		if err != nil {
			return err
		}
		dep.AppendLog(fmt.Sprintf("[INFO] CDN分发已创建: %s", distributionID))
		deployedURL = fmt.Sprintf("https://%s", recordName)
	}

	dep.DeployedURL = &deployedURL

	return nil
}

// provisionLocal 本地目标不接触云服务, 仅生成本地访问地址
func (s *deploymentService) provisionLocal(dep *model.Deployment) error {
	deployedURL := fmt.Sprintf("http://localhost/%s", strings.ToLower(dep.ProjectName))
	dep.DeployedURL = &deployedURL
	dep.AppendLog("[INFO] 本地部署完成")
	return nil
}

// GetByID 查询部署详情, 仅允许归属用户访问
func (s *deploymentService) GetByID(userID, deploymentID int64) (*model.Deployment, error) {
	dep, err := s.deployRepo.FindByID(deploymentID)
	if err != nil {
		return nil, err
	}
	if dep.UserID != userID {
		return nil, pkgErrors.ErrRecordNotFound
	}
	return dep, nil
}

// List 查询用户的部署列表
func (s *deploymentService) List(userID int64) ([]*model.Deployment, error) {
	return s.deployRepo.ListByUser(userID)
}

// Delete 删除部署
// 先尽力回收已供应资源再删行; 资源回收失败不阻塞删除, 只记日志
func (s *deploymentService) Delete(ctx context.Context, userID, deploymentID int64) error {
	dep, err := s.deployRepo.FindByID(deploymentID)
	if err != nil {
		return err
	}
	if dep.UserID != userID {
		return pkgErrors.ErrRecordNotFound
	}

	s.teardown(ctx, dep)

	if err := s.deployRepo.Delete(deploymentID); err != nil {
		return err
	}

	logger.Info("部署已删除", zap.Int64("deployment_id", deploymentID))
	return nil
}

// Rollback 回滚部署: 显式回收该行记录的全部已供应资源
func (s *deploymentService) Rollback(ctx context.Context, userID, deploymentID int64) (*dto.RollbackResponse, error) {
	dep, err := s.deployRepo.FindByID(deploymentID)
	if err != nil {
		return nil, err
	}
	if dep.UserID != userID {
		return nil, pkgErrors.ErrRecordNotFound
	}

	resp := &dto.RollbackResponse{DeploymentID: dep.ID}

	if dep.DNSRecordName != nil && dep.BucketName != nil {
		err := s.provisioner.DeleteDNSRecord(ctx, provisioner.DNSRecord{
			HostedZoneID: s.hostedZoneID(dep),
			Name:         *dep.DNSRecordName,
			Type:         "CNAME",
			Value:        fmt.Sprintf("%s.s3-website-%s.amazonaws.com", *dep.BucketName, s.awsCfg.Region),
			TTL:          300,
		})
		if err != nil {
			resp.Failures = append(resp.Failures, fmt.Sprintf("dns_record %s: %v", *dep.DNSRecordName, err))
		} else {
			resp.TornDown = append(resp.TornDown, fmt.Sprintf("dns_record %s", *dep.DNSRecordName))
			dep.DNSRecordName = nil
			dep.DeployedURL = nil
		}
	}

	if dep.BucketName != nil {
		if err := s.provisioner.DeleteBucket(ctx, *dep.BucketName); err != nil {
			resp.Failures = append(resp.Failures, fmt.Sprintf("bucket %s: %v", *dep.BucketName, err))
		} else {
			resp.TornDown = append(resp.TornDown, fmt.Sprintf("bucket %s", *dep.BucketName))
			dep.BucketName = nil
		}
	}

	if dep.InstanceID != nil {
		if err := s.provisioner.TerminateInstance(ctx, *dep.InstanceID); err != nil {
			resp.Failures = append(resp.Failures, fmt.Sprintf("instance %s: %v", *dep.InstanceID, err))
		} else {
			resp.TornDown = append(resp.TornDown, fmt.Sprintf("instance %s", *dep.InstanceID))
			dep.InstanceID = nil
		}
	}

	dep.AppendLog(fmt.Sprintf("[INFO] 回滚执行: 回收%d项, 失败%d项", len(resp.TornDown), len(resp.Failures)))
	if err := s.deployRepo.Update(dep); err != nil {
		return nil, err
	}

	logger.Info("部署回滚完成",
		zap.Int64("deployment_id", dep.ID),
		zap.Int("torn_down", len(resp.TornDown)),
		zap.Int("failures", len(resp.Failures)))

	return resp, nil
}

// teardown 尽力回收资源, 失败只记日志
func (s *deploymentService) teardown(ctx context.Context, dep *model.Deployment) {
	if dep.DNSRecordName != nil && dep.BucketName != nil {
		err := s.provisioner.DeleteDNSRecord(ctx, provisioner.DNSRecord{
			HostedZoneID: s.hostedZoneID(dep),
			Name:         *dep.DNSRecordName,
			Type:         "CNAME",
			Value:        fmt.Sprintf("%s.s3-website-%s.amazonaws.com", *dep.BucketName, s.awsCfg.Region),
			TTL:          300,
		})
		if err != nil {
			logger.Warn("回收DNS记录失败", zap.Int64("deployment_id", dep.ID), zap.Error(err))
		}
	}
	if dep.BucketName != nil {
		if err := s.provisioner.DeleteBucket(ctx, *dep.BucketName); err != nil {
			logger.Warn("回收存储桶失败", zap.Int64("deployment_id", dep.ID), zap.Error(err))
		}
	}
	if dep.InstanceID != nil {
		if err := s.provisioner.TerminateInstance(ctx, *dep.InstanceID); err != nil {
			logger.Warn("回收计算实例失败", zap.Int64("deployment_id", dep.ID), zap.Error(err))
		}
	}
}

// transition 状态流转并落库, 非法流转直接拒绝
func (s *deploymentService) transition(dep *model.Deployment, to string) error {
	if !constants.CanTransition(dep.Status, to) {
		return pkgErrors.Wrap(pkgErrors.CodeStateError,
			fmt.Sprintf("部署状态不允许从 %s 流转到 %s", dep.Status, to), nil)
	}
	dep.Status = to
	return s.deployRepo.Update(dep)
}

// bucketName 生成全局唯一的桶名: {project}-{userID}-{uuid8}-bucket
func (s *deploymentService) bucketName(dep *model.Deployment) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s-%d-%s-bucket", strings.ToLower(dep.ProjectName), dep.UserID, suffix)
}

// dnsRecordName 部署访问域名, target_config.domain 优先
func (s *deploymentService) dnsRecordName(dep *model.Deployment) string {
	if domain, ok := dep.TargetConfig["domain"].(string); ok && domain != "" {
		return domain
	}
	return fmt.Sprintf("%s-%d.deployments.local", strings.ToLower(dep.ProjectName), dep.ID)
}

// hostedZoneID target_config.hosted_zone_id 优先, 否则用默认Zone
func (s *deploymentService) hostedZoneID(dep *model.Deployment) string {
	if zoneID, ok := dep.TargetConfig["hosted_zone_id"].(string); ok && zoneID != "" {
		return zoneID
	}
	return s.awsCfg.HostedZoneID
}

// recordLog 写入运行日志表, 失败只告警
func (s *deploymentService) recordLog(level, message string, deploymentID int64) {
	entry := &model.LogEntry{
		Level:        level,
		Message:      message,
		DeploymentID: &deploymentID,
		CreatedAt:    time.Now(),
	}
	if err := s.logRepo.Create(entry); err != nil {
		logger.Warn("写入运行日志失败", zap.Error(err))
	}
}

package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"cloud-deploy/internal/adapter/provisioner"
	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/model"
	"cloud-deploy/internal/pkg/logger"
	"cloud-deploy/internal/repository"
	pkgErrors "cloud-deploy/pkg/errors"
)

type DomainService interface {
	Register(ctx context.Context, req *dto.RegisterDomainRequest) (*dto.RegisterDomainResponse, error)
	ConfigureDNS(ctx context.Context, req *dto.ConfigureDNSRequest) error
	Status(ctx context.Context, domainName string) (*dto.DomainStatusResponse, error)
	Delete(ctx context.Context, userID int64, domainName string) error
}

type domainService struct {
	domainRepo  repository.DomainRepository
	provisioner provisioner.Provisioner
}

func NewDomainService(domainRepo repository.DomainRepository, prov provisioner.Provisioner) DomainService {
	return &domainService{
		domainRepo:  domainRepo,
		provisioner: prov,
	}
}

// Register 注册域名
// 先查本地记录与供应商Zone防重复, 再创建Zone; ssl开启时同步申请DNS校验证书
func (s *domainService) Register(ctx context.Context, req *dto.RegisterDomainRequest) (*dto.RegisterDomainResponse, error) {
	domainName := provisioner.NormalizeZoneName(req.DomainName)

	if _, err := s.domainRepo.FindByName(domainName); err == nil {
		return nil, pkgErrors.ErrDomainRegistered
	} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.provisioner.GetHostedZone(ctx, domainName); err == nil {
		return nil, pkgErrors.ErrDomainRegistered
	} else if !errors.Is(err, pkgErrors.ErrZoneNotFound) {
		return nil, err
	}

	zone, err := s.provisioner.CreateHostedZone(ctx, domainName)
	if err != nil {
		return nil, err
	}

	resp := &dto.RegisterDomainResponse{
		DomainName:   domainName,
		HostedZoneID: zone.ID,
	}

	sslEnabled := false
	if req.SSL {
		arn, err := s.provisioner.RequestCertificate(ctx, domainName)
		if err != nil {
			// 证书申请失败不回滚Zone, 域名仍注册成功
			logger.Warn("申请SSL证书失败", zap.String("domain", domainName), zap.Error(err))
		} else {
			resp.CertificateARN = arn
			sslEnabled = true
		}
	}

	domain := &model.Domain{
		UserID:     req.UserID,
		DomainName: domainName,
		Registered: true,
		SSLEnabled: sslEnabled,
	}
	if err := s.domainRepo.Create(domain); err != nil {
		return nil, err
	}

	logger.Info("域名注册成功",
		zap.String("domain", domainName),
		zap.String("zone_id", zone.ID),
		zap.Bool("ssl", sslEnabled))

	return resp, nil
}

// ConfigureDNS 为域名UPSERT一条A记录, 指向目标IP
func (s *domainService) ConfigureDNS(ctx context.Context, req *dto.ConfigureDNSRequest) error {
	err := s.provisioner.UpsertDNSRecord(ctx, provisioner.DNSRecord{
		HostedZoneID: req.HostedZoneID,
		Name:         provisioner.NormalizeZoneName(req.DomainName),
		Type:         "A",
		Value:        req.Target,
		TTL:          300,
	})
	if err != nil {
		return err
	}

	logger.Info("DNS记录已配置",
		zap.String("domain", req.DomainName),
		zap.String("target", req.Target))
	return nil
}

// Status 查询域名状态
// 本地记录与供应商Zone联合返回, Zone不存在时Registered为false
func (s *domainService) Status(ctx context.Context, domainName string) (*dto.DomainStatusResponse, error) {
	domainName = provisioner.NormalizeZoneName(domainName)

	domain, err := s.domainRepo.FindByName(domainName)
	if err != nil {
		return nil, err
	}

	resp := &dto.DomainStatusResponse{
		DomainName: domainName,
		Registered: domain.Registered,
		SSLEnabled: domain.SSLEnabled,
	}

	zone, err := s.provisioner.GetHostedZone(ctx, domainName)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrZoneNotFound) {
			resp.Registered = false
			return resp, nil
		}
		return nil, err
	}
	resp.HostedZoneID = zone.ID

	return resp, nil
}

// Delete 注销域名: 删除供应商Zone后移除本地记录
func (s *domainService) Delete(ctx context.Context, userID int64, domainName string) error {
	domainName = provisioner.NormalizeZoneName(domainName)

	domain, err := s.domainRepo.FindByName(domainName)
	if err != nil {
		return err
	}
	if domain.UserID != userID {
		return pkgErrors.ErrRecordNotFound
	}

	zone, err := s.provisioner.GetHostedZone(ctx, domainName)
	if err == nil {
		if err := s.provisioner.DeleteHostedZone(ctx, zone.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, pkgErrors.ErrZoneNotFound) {
		return err
	}

	if err := s.domainRepo.DeleteByName(domainName); err != nil {
		return err
	}

	logger.Info("域名已注销", zap.String("domain", domainName))
	return nil
}

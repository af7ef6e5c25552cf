package provisioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cloud-deploy/internal/pkg/config"
	pkgErrors "cloud-deploy/pkg/errors"
)

// AWSProvisioner AWS实现
type AWSProvisioner struct {
	region      string
	callTimeout time.Duration
	logger      *zap.Logger

	ec2Client        *ec2.Client
	s3Client         *s3.Client
	route53Client    *route53.Client
	acmClient        *acm.Client
	cloudfrontClient *cloudfront.Client
}

// NewAWSProvisioner 创建AWS供应适配器
func NewAWSProvisioner(cfg *config.AWSConfig, logger *zap.Logger) (*AWSProvisioner, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %w", err)
	}

	callTimeout := 30 * time.Second
	if cfg.CallTimeout != "" {
		if d, err := time.ParseDuration(cfg.CallTimeout); err == nil {
			callTimeout = d
		}
	}

	return &AWSProvisioner{
		region:           cfg.Region,
		callTimeout:      callTimeout,
		logger:           logger,
		ec2Client:        ec2.NewFromConfig(awsCfg),
		s3Client:         s3.NewFromConfig(awsCfg),
		route53Client:    route53.NewFromConfig(awsCfg),
		acmClient:        acm.NewFromConfig(awsCfg),
		cloudfrontClient: cloudfront.NewFromConfig(awsCfg),
	}, nil
}

// withTimeout 为单次API调用附加超时
func (p *AWSProvisioner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.callTimeout)
}

// LaunchInstance 启动EC2实例
func (p *AWSProvisioner) LaunchInstance(ctx context.Context, req LaunchInstanceRequest) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	out, err := p.ec2Client.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:          aws.String(req.ImageID),
		InstanceType:     ec2types.InstanceType(req.InstanceType),
		MinCount:         aws.Int32(1),
		MaxCount:         aws.Int32(1),
		KeyName:          aws.String(req.KeyPair),
		SecurityGroupIds: []string{req.SecurityGroup},
		TagSpecifications: []ec2types.TagSpecification{
			{
				ResourceType: ec2types.ResourceTypeInstance,
				Tags: []ec2types.Tag{
					{Key: aws.String("Name"), Value: aws.String(req.TagName)},
				},
			},
		},
	})
	if err != nil {
		p.logger.Error("启动EC2实例失败", zap.String("image_id", req.ImageID), zap.Error(err))
		return "", pkgErrors.Wrap(pkgErrors.CodeProviderError, "启动计算实例失败", err)
	}
	if len(out.Instances) == 0 || out.Instances[0].InstanceId == nil {
		return "", pkgErrors.New(pkgErrors.CodeProviderError, "EC2响应缺少实例信息")
	}

	instanceID := *out.Instances[0].InstanceId
	p.logger.Info("EC2实例已启动", zap.String("instance_id", instanceID))
	return instanceID, nil
}

// CreateBucket 创建S3存储桶
func (p *AWSProvisioner) CreateBucket(ctx context.Context, bucketName, region string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if region == "" {
		region = p.region
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	}
	// us-east-1 不接受 LocationConstraint
	if region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}

	if _, err := p.s3Client.CreateBucket(ctx, input); err != nil {
		p.logger.Error("创建S3存储桶失败", zap.String("bucket", bucketName), zap.Error(err))
		return pkgErrors.Wrap(pkgErrors.CodeProviderError, "创建存储桶失败", err)
	}

	p.logger.Info("S3存储桶已创建", zap.String("bucket", bucketName))
	return nil
}

// UpsertDNSRecord UPSERT一条DNS记录
func (p *AWSProvisioner) UpsertDNSRecord(ctx context.Context, record DNSRecord) error {
	return p.changeDNSRecord(ctx, r53types.ChangeActionUpsert, record)
}

// DeleteDNSRecord 删除一条DNS记录
func (p *AWSProvisioner) DeleteDNSRecord(ctx context.Context, record DNSRecord) error {
	return p.changeDNSRecord(ctx, r53types.ChangeActionDelete, record)
}

func (p *AWSProvisioner) changeDNSRecord(ctx context.Context, action r53types.ChangeAction, record DNSRecord) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	ttl := record.TTL
	if ttl == 0 {
		ttl = 300
	}

	_, err := p.route53Client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(record.HostedZoneID),
		ChangeBatch: &r53types.ChangeBatch{
			Comment: aws.String(fmt.Sprintf("%s record for %s", action, record.Name)),
			Changes: []r53types.Change{
				{
					Action: action,
					ResourceRecordSet: &r53types.ResourceRecordSet{
						Name: aws.String(record.Name),
						Type: r53types.RRType(record.Type),
						TTL:  aws.Int64(ttl),
						ResourceRecords: []r53types.ResourceRecord{
							{Value: aws.String(record.Value)},
						},
					},
				},
			},
		},
	})
	if err != nil {
		p.logger.Error("变更DNS记录失败",
			zap.String("action", string(action)),
			zap.String("record", record.Name),
			zap.Error(err))
		return pkgErrors.Wrap(pkgErrors.CodeProviderError, "变更DNS记录失败", err)
	}

	p.logger.Info("DNS记录已变更", zap.String("action", string(action)), zap.String("record", record.Name))
	return nil
}

// RequestCertificate 申请ACM证书(DNS校验)
func (p *AWSProvisioner) RequestCertificate(ctx context.Context, domainName string) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	out, err := p.acmClient.RequestCertificate(ctx, &acm.RequestCertificateInput{
		DomainName:       aws.String(domainName),
		ValidationMethod: acmtypes.ValidationMethodDns,
	})
	if err != nil {
		p.logger.Error("申请SSL证书失败", zap.String("domain", domainName), zap.Error(err))
		return "", pkgErrors.Wrap(pkgErrors.CodeProviderError, "申请SSL证书失败", err)
	}

	arn := aws.ToString(out.CertificateArn)
	p.logger.Info("SSL证书已申请", zap.String("domain", domainName), zap.String("arn", arn))
	return arn, nil
}

// CreateCDNDistribution 为S3桶创建CloudFront分发
func (p *AWSProvisioner) CreateCDNDistribution(ctx context.Context, bucketName, domainName string) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	out, err := p.cloudfrontClient.CreateDistribution(ctx, &cloudfront.CreateDistributionInput{
		DistributionConfig: &cftypes.DistributionConfig{
			CallerReference: aws.String(uuid.NewString()),
			Comment:         aws.String(fmt.Sprintf("distribution for %s", domainName)),
			Enabled:         aws.Bool(true),
			Origins: &cftypes.Origins{
				Quantity: aws.Int32(1),
				Items: []cftypes.Origin{
					{
						Id:         aws.String(bucketName),
						DomainName: aws.String(fmt.Sprintf("%s.s3.amazonaws.com", bucketName)),
						S3OriginConfig: &cftypes.S3OriginConfig{
							OriginAccessIdentity: aws.String(""),
						},
					},
				},
			},
			DefaultCacheBehavior: &cftypes.DefaultCacheBehavior{
				TargetOriginId:       aws.String(bucketName),
				ViewerProtocolPolicy: cftypes.ViewerProtocolPolicyRedirectToHttps,
				MinTTL:               aws.Int64(0),
				ForwardedValues: &cftypes.ForwardedValues{
					QueryString: aws.Bool(false),
					Cookies: &cftypes.CookiePreference{
						Forward: cftypes.ItemSelectionNone,
					},
				},
				AllowedMethods: &cftypes.AllowedMethods{
					Quantity: aws.Int32(2),
					Items:    []cftypes.Method{cftypes.MethodGet, cftypes.MethodHead},
					CachedMethods: &cftypes.CachedMethods{
						Quantity: aws.Int32(2),
						Items:    []cftypes.Method{cftypes.MethodGet, cftypes.MethodHead},
					},
				},
			},
		},
	})
	if err != nil {
		p.logger.Error("创建CDN分发失败", zap.String("bucket", bucketName), zap.Error(err))
		return "", pkgErrors.Wrap(pkgErrors.CodeProviderError, "创建CDN分发失败", err)
	}
	if out.Distribution == nil || out.Distribution.Id == nil {
		return "", pkgErrors.New(pkgErrors.CodeProviderError, "CloudFront响应缺少分发信息")
	}

	distributionID := *out.Distribution.Id
	p.logger.Info("CDN分发已创建", zap.String("distribution_id", distributionID))
	return distributionID, nil
}

// CreateHostedZone 创建Hosted Zone
func (p *AWSProvisioner) CreateHostedZone(ctx context.Context, domainName string) (*HostedZone, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	out, err := p.route53Client.CreateHostedZone(ctx, &route53.CreateHostedZoneInput{
		Name:            aws.String(domainName),
		CallerReference: aws.String(uuid.NewString()),
	})
	if err != nil {
		var existsErr *r53types.HostedZoneAlreadyExists
		if errors.As(err, &existsErr) {
			return nil, pkgErrors.ErrDomainRegistered
		}
		p.logger.Error("创建Hosted Zone失败", zap.String("domain", domainName), zap.Error(err))
		return nil, pkgErrors.Wrap(pkgErrors.CodeProviderError, "创建Hosted Zone失败", err)
	}

	zone := &HostedZone{
		ID:   aws.ToString(out.HostedZone.Id),
		Name: NormalizeZoneName(aws.ToString(out.HostedZone.Name)),
	}
	p.logger.Info("Hosted Zone已创建", zap.String("domain", domainName), zap.String("zone_id", zone.ID))
	return zone, nil
}

// GetHostedZone 按域名精确查找Hosted Zone
// Route53返回的Zone名称带尾点, 与调用方的不带点输入归一化后比较
func (p *AWSProvisioner) GetHostedZone(ctx context.Context, domainName string) (*HostedZone, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	out, err := p.route53Client.ListHostedZonesByName(ctx, &route53.ListHostedZonesByNameInput{
		DNSName: aws.String(domainName),
	})
	if err != nil {
		p.logger.Error("查询Hosted Zone失败", zap.String("domain", domainName), zap.Error(err))
		return nil, pkgErrors.Wrap(pkgErrors.CodeProviderError, "查询Hosted Zone失败", err)
	}

	for _, zone := range out.HostedZones {
		if NormalizeZoneName(aws.ToString(zone.Name)) == NormalizeZoneName(domainName) {
			return &HostedZone{
				ID:   aws.ToString(zone.Id),
				Name: NormalizeZoneName(aws.ToString(zone.Name)),
			}, nil
		}
	}

	return nil, pkgErrors.ErrZoneNotFound
}

// DeleteHostedZone 删除Hosted Zone
func (p *AWSProvisioner) DeleteHostedZone(ctx context.Context, zoneID string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if _, err := p.route53Client.DeleteHostedZone(ctx, &route53.DeleteHostedZoneInput{
		Id: aws.String(zoneID),
	}); err != nil {
		p.logger.Error("删除Hosted Zone失败", zap.String("zone_id", zoneID), zap.Error(err))
		return pkgErrors.Wrap(pkgErrors.CodeProviderError, "删除Hosted Zone失败", err)
	}
	return nil
}

// TerminateInstance 终止EC2实例
func (p *AWSProvisioner) TerminateInstance(ctx context.Context, instanceID string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if _, err := p.ec2Client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{instanceID},
	}); err != nil {
		p.logger.Error("终止EC2实例失败", zap.String("instance_id", instanceID), zap.Error(err))
		return pkgErrors.Wrap(pkgErrors.CodeProviderError, "终止计算实例失败", err)
	}

	p.logger.Info("EC2实例已终止", zap.String("instance_id", instanceID))
	return nil
}

// DeleteBucket 删除S3存储桶
func (p *AWSProvisioner) DeleteBucket(ctx context.Context, bucketName string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if _, err := p.s3Client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(bucketName),
	}); err != nil {
		p.logger.Error("删除S3存储桶失败", zap.String("bucket", bucketName), zap.Error(err))
		return pkgErrors.Wrap(pkgErrors.CodeProviderError, "删除存储桶失败", err)
	}

	p.logger.Info("S3存储桶已删除", zap.String("bucket", bucketName))
	return nil
}

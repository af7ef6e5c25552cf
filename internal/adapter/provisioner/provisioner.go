package provisioner

import (
	"context"
)

// LaunchInstanceRequest 计算实例启动参数
type LaunchInstanceRequest struct {
	ImageID       string
	InstanceType  string
	KeyPair       string
	SecurityGroup string
	TagName       string
}

// DNSRecord DNS记录
type DNSRecord struct {
	HostedZoneID string
	Name         string
	Type         string
	Value        string
	TTL          int64
}

// HostedZone Route53 Hosted Zone
type HostedZone struct {
	ID   string
	Name string
}

// Provisioner 基础设施供应适配器接口
// 所有调用同步阻塞, 失败即终止, 不做重试; 单次调用超时由实现方配置
type Provisioner interface {

	// LaunchInstance 启动计算实例, 返回实例ID
	LaunchInstance(ctx context.Context, req LaunchInstanceRequest) (string, error)

	// CreateBucket 创建对象存储桶, 桶名需全局唯一, 由调用方保证
	CreateBucket(ctx context.Context, bucketName, region string) error

	// UpsertDNSRecord 创建或覆盖DNS记录(UPSERT语义, 幂等)
	UpsertDNSRecord(ctx context.Context, record DNSRecord) error

	// DeleteDNSRecord 删除DNS记录
	DeleteDNSRecord(ctx context.Context, record DNSRecord) error

	// RequestCertificate 申请DNS校验的SSL证书, 返回证书ARN
	RequestCertificate(ctx context.Context, domainName string) (string, error)

	// CreateCDNDistribution 为存储桶创建CDN分发, 返回分发ID
	CreateCDNDistribution(ctx context.Context, bucketName, domainName string) (string, error)

	// CreateHostedZone 创建Hosted Zone, 域名已存在时返回冲突错误
	CreateHostedZone(ctx context.Context, domainName string) (*HostedZone, error)

	// GetHostedZone 按域名精确查找Hosted Zone
	// 供应商返回的Zone名称带尾点, 实现方负责归一化后比较
	GetHostedZone(ctx context.Context, domainName string) (*HostedZone, error)

	// DeleteHostedZone 删除Hosted Zone
	DeleteHostedZone(ctx context.Context, zoneID string) error

	// TerminateInstance 终止计算实例
	TerminateInstance(ctx context.Context, instanceID string) error

	// DeleteBucket 删除对象存储桶
	DeleteBucket(ctx context.Context, bucketName string) error
}

// NormalizeZoneName 去除Zone名称的尾点
func NormalizeZoneName(name string) string {
	if len(name) > 0 && name[len(name)-1] == '.' {
		return name[:len(name)-1]
	}
	return name
}

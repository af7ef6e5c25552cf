package provisioner

import (
	"context"
	"fmt"
	"sync"

	pkgErrors "cloud-deploy/pkg/errors"
)

// MockProvisioner 模拟供应适配器
type MockProvisioner struct {
	mu sync.Mutex

	// 可控行为
	launchError      error // LaunchInstance 是否返回错误
	bucketError      error // CreateBucket 是否返回错误
	dnsError         error // UpsertDNSRecord 是否返回错误
	certError        error // RequestCertificate 是否返回错误
	zoneError        error // CreateHostedZone 是否返回错误
	terminateError   error // TerminateInstance 是否返回错误
	deleteBucketErr  error // DeleteBucket 是否返回错误
	existingZones    map[string]*HostedZone
	nextInstanceID   string
	nextCertARN      string
	nextDistribution string

	// 调用记录
	launchCalled       int
	bucketCalled       int
	upsertDNSCalled    int
	deleteDNSCalled    int
	certCalled         int
	cdnCalled          int
	createZoneCalled   int
	getZoneCalled      int
	deleteZoneCalled   int
	terminateCalled    int
	deleteBucketCalled int

	launchedInstances []string
	createdBuckets    []string
	upsertedRecords   []DNSRecord
	terminatedIDs     []string
	deletedBuckets    []string
}

func NewMockProvisioner() *MockProvisioner {
	return &MockProvisioner{
		existingZones:    make(map[string]*HostedZone),
		nextInstanceID:   "i-mock0001",
		nextCertARN:      "arn:aws:acm:us-east-1:000000000000:certificate/mock",
		nextDistribution: "EMOCK0001",
	}
}

// === 配置方法 ===

func (m *MockProvisioner) SetLaunchError(err error) *MockProvisioner {
	m.launchError = err
	return m
}

func (m *MockProvisioner) SetBucketError(err error) *MockProvisioner {
	m.bucketError = err
	return m
}

func (m *MockProvisioner) SetDNSError(err error) *MockProvisioner {
	m.dnsError = err
	return m
}

func (m *MockProvisioner) SetCertError(err error) *MockProvisioner {
	m.certError = err
	return m
}

func (m *MockProvisioner) SetZoneError(err error) *MockProvisioner {
	m.zoneError = err
	return m
}

func (m *MockProvisioner) SetTerminateError(err error) *MockProvisioner {
	m.terminateError = err
	return m
}

func (m *MockProvisioner) SetDeleteBucketError(err error) *MockProvisioner {
	m.deleteBucketErr = err
	return m
}

func (m *MockProvisioner) SetInstanceID(id string) *MockProvisioner {
	m.nextInstanceID = id
	return m
}

// AddZone 预置一个已存在的Hosted Zone
func (m *MockProvisioner) AddZone(domainName, zoneID string) *MockProvisioner {
	name := NormalizeZoneName(domainName)
	m.existingZones[name] = &HostedZone{ID: zoneID, Name: name}
	return m
}

// === 接口实现 ===

func (m *MockProvisioner) LaunchInstance(ctx context.Context, req LaunchInstanceRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.launchCalled++

	if m.launchError != nil {
		return "", m.launchError
	}
	m.launchedInstances = append(m.launchedInstances, m.nextInstanceID)
	return m.nextInstanceID, nil
}

func (m *MockProvisioner) CreateBucket(ctx context.Context, bucketName, region string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucketCalled++

	if m.bucketError != nil {
		return m.bucketError
	}
	for _, existing := range m.createdBuckets {
		if existing == bucketName {
			return fmt.Errorf("BucketAlreadyExists: %s", bucketName)
		}
	}
	m.createdBuckets = append(m.createdBuckets, bucketName)
	return nil
}

func (m *MockProvisioner) UpsertDNSRecord(ctx context.Context, record DNSRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertDNSCalled++

	if m.dnsError != nil {
		return m.dnsError
	}

	// UPSERT语义: 同名同类型的记录覆盖而不是追加
	for i, existing := range m.upsertedRecords {
		if existing.Name == record.Name && existing.Type == record.Type {
			m.upsertedRecords[i] = record
			return nil
		}
	}
	m.upsertedRecords = append(m.upsertedRecords, record)
	return nil
}

func (m *MockProvisioner) DeleteDNSRecord(ctx context.Context, record DNSRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteDNSCalled++

	for i, existing := range m.upsertedRecords {
		if existing.Name == record.Name && existing.Type == record.Type {
			m.upsertedRecords = append(m.upsertedRecords[:i], m.upsertedRecords[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MockProvisioner) RequestCertificate(ctx context.Context, domainName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.certCalled++

	if m.certError != nil {
		return "", m.certError
	}
	return m.nextCertARN, nil
}

func (m *MockProvisioner) CreateCDNDistribution(ctx context.Context, bucketName, domainName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cdnCalled++
	return m.nextDistribution, nil
}

func (m *MockProvisioner) CreateHostedZone(ctx context.Context, domainName string) (*HostedZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createZoneCalled++

	if m.zoneError != nil {
		return nil, m.zoneError
	}

	name := NormalizeZoneName(domainName)
	zone := &HostedZone{ID: fmt.Sprintf("Z-MOCK-%d", m.createZoneCalled), Name: name}
	m.existingZones[name] = zone
	return zone, nil
}

func (m *MockProvisioner) GetHostedZone(ctx context.Context, domainName string) (*HostedZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getZoneCalled++

	if zone, ok := m.existingZones[NormalizeZoneName(domainName)]; ok {
		return zone, nil
	}
	return nil, pkgErrors.ErrZoneNotFound
}

func (m *MockProvisioner) DeleteHostedZone(ctx context.Context, zoneID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteZoneCalled++

	for name, zone := range m.existingZones {
		if zone.ID == zoneID {
			delete(m.existingZones, name)
			return nil
		}
	}
	return pkgErrors.ErrZoneNotFound
}

func (m *MockProvisioner) TerminateInstance(ctx context.Context, instanceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminateCalled++

	if m.terminateError != nil {
		return m.terminateError
	}
	m.terminatedIDs = append(m.terminatedIDs, instanceID)
	return nil
}

func (m *MockProvisioner) DeleteBucket(ctx context.Context, bucketName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteBucketCalled++

	if m.deleteBucketErr != nil {
		return m.deleteBucketErr
	}
	m.deletedBuckets = append(m.deletedBuckets, bucketName)
	return nil
}

// === 断言辅助 ===

func (m *MockProvisioner) LaunchCalled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.launchCalled
}

func (m *MockProvisioner) BucketCalled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bucketCalled
}

func (m *MockProvisioner) UpsertDNSCalled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertDNSCalled
}

func (m *MockProvisioner) CertCalled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.certCalled
}

func (m *MockProvisioner) TerminatedInstances() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.terminatedIDs))
	copy(out, m.terminatedIDs)
	return out
}

func (m *MockProvisioner) DeletedBuckets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.deletedBuckets))
	copy(out, m.deletedBuckets)
	return out
}

func (m *MockProvisioner) UpsertedRecords() []DNSRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DNSRecord, len(m.upsertedRecords))
	copy(out, m.upsertedRecords)
	return out
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-deploy/internal/adapter/provisioner"
	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/model"
	"cloud-deploy/internal/repository"
	pkgErrors "cloud-deploy/pkg/errors"
)

type fakeDomainRepo struct {
	rows   map[string]*model.Domain
	nextID int64
}

func newFakeDomainRepo() *fakeDomainRepo {
	return &fakeDomainRepo{rows: make(map[string]*model.Domain), nextID: 1}
}

func (r *fakeDomainRepo) Create(domain *model.Domain) error {
	domain.ID = r.nextID
	r.nextID++
	copied := *domain
	r.rows[domain.DomainName] = &copied
	return nil
}

func (r *fakeDomainRepo) FindByName(domainName string) (*model.Domain, error) {
	d, ok := r.rows[domainName]
	if !ok {
		return nil, pkgErrors.ErrRecordNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDomainRepo) Update(domain *model.Domain) error {
	copied := *domain
	r.rows[domain.DomainName] = &copied
	return nil
}

func (r *fakeDomainRepo) DeleteByName(domainName string) error {
	if _, ok := r.rows[domainName]; !ok {
		return pkgErrors.ErrRecordNotFound
	}
	delete(r.rows, domainName)
	return nil
}

func (r *fakeDomainRepo) Count() (int64, error) {
	return int64(len(r.rows)), nil
}

var _ repository.DomainRepository = (*fakeDomainRepo)(nil)

func TestRegisterDomain(t *testing.T) {
	mock := provisioner.NewMockProvisioner()
	svc := NewDomainService(newFakeDomainRepo(), mock)

	resp, err := svc.Register(context.Background(), &dto.RegisterDomainRequest{
		DomainName: "example.com",
		UserID:     7,
	})
	require.NoError(t, err)

	assert.Equal(t, "example.com", resp.DomainName)
	assert.NotEmpty(t, resp.HostedZoneID)
	assert.Empty(t, resp.CertificateARN)
}

func TestRegisterDomain_WithSSL(t *testing.T) {
	mock := provisioner.NewMockProvisioner()
	svc := NewDomainService(newFakeDomainRepo(), mock)

	resp, err := svc.Register(context.Background(), &dto.RegisterDomainRequest{
		DomainName: "example.com",
		SSL:        true,
		UserID:     7,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.CertificateARN)
	assert.Equal(t, 1, mock.CertCalled())
}

func TestRegisterDomain_Conflict(t *testing.T) {
	mock := provisioner.NewMockProvisioner()
	svc := NewDomainService(newFakeDomainRepo(), mock)

	_, err := svc.Register(context.Background(), &dto.RegisterDomainRequest{
		DomainName: "example.com",
		UserID:     7,
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &dto.RegisterDomainRequest{
		DomainName: "example.com",
		UserID:     8,
	})
	assert.ErrorIs(t, err, pkgErrors.ErrDomainRegistered)
}

func TestRegisterDomain_ProviderZoneConflict(t *testing.T) {
	// 供应商侧已有Zone但本地无记录, 同样拒绝注册
	mock := provisioner.NewMockProvisioner().AddZone("example.com", "Z-EXISTING")
	svc := NewDomainService(newFakeDomainRepo(), mock)

	_, err := svc.Register(context.Background(), &dto.RegisterDomainRequest{
		DomainName: "example.com",
		UserID:     7,
	})
	assert.ErrorIs(t, err, pkgErrors.ErrDomainRegistered)
}

func TestDomainStatus_TrailingDot(t *testing.T) {
	mock := provisioner.NewMockProvisioner()
	svc := NewDomainService(newFakeDomainRepo(), mock)

	_, err := svc.Register(context.Background(), &dto.RegisterDomainRequest{
		DomainName: "example.com",
		UserID:     7,
	})
	require.NoError(t, err)

	// 供应商风格的带尾点名称同样能命中
	resp, err := svc.Status(context.Background(), "example.com.")
	require.NoError(t, err)
	assert.Equal(t, "example.com", resp.DomainName)
	assert.True(t, resp.Registered)
	assert.NotEmpty(t, resp.HostedZoneID)
}

func TestDeleteDomain(t *testing.T) {
	mock := provisioner.NewMockProvisioner()
	repo := newFakeDomainRepo()
	svc := NewDomainService(repo, mock)

	_, err := svc.Register(context.Background(), &dto.RegisterDomainRequest{
		DomainName: "example.com",
		UserID:     7,
	})
	require.NoError(t, err)

	// 非归属用户不可注销
	err = svc.Delete(context.Background(), 8, "example.com")
	assert.ErrorIs(t, err, pkgErrors.ErrRecordNotFound)

	require.NoError(t, svc.Delete(context.Background(), 7, "example.com"))

	_, err = svc.Status(context.Background(), "example.com")
	assert.ErrorIs(t, err, pkgErrors.ErrRecordNotFound)

	// Zone已随注销删除
	_, err = mock.GetHostedZone(context.Background(), "example.com")
	assert.ErrorIs(t, err, pkgErrors.ErrZoneNotFound)
}

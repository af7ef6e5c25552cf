package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-deploy/internal/adapter/notification"
	"cloud-deploy/internal/adapter/provisioner"
	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/model"
	"cloud-deploy/internal/pkg/config"
	"cloud-deploy/internal/repository"
	"cloud-deploy/pkg/constants"
	pkgErrors "cloud-deploy/pkg/errors"
)

// === 内存版Repository ===

type fakeDeploymentRepo struct {
	rows    map[int64]*model.Deployment
	nextID  int64
	creates int
	updates int
	deletes int
}

func newFakeDeploymentRepo() *fakeDeploymentRepo {
	return &fakeDeploymentRepo{rows: make(map[int64]*model.Deployment), nextID: 1}
}

func (r *fakeDeploymentRepo) Create(dep *model.Deployment) error {
	dep.ID = r.nextID
	r.nextID++
	dep.CreatedAt = time.Now()
	copied := *dep
	r.rows[dep.ID] = &copied
	r.creates++
	return nil
}

func (r *fakeDeploymentRepo) FindByID(id int64) (*model.Deployment, error) {
	dep, ok := r.rows[id]
	if !ok {
		return nil, pkgErrors.ErrRecordNotFound
	}
	copied := *dep
	return &copied, nil
}

func (r *fakeDeploymentRepo) ListByUser(userID int64) ([]*model.Deployment, error) {
	var out []*model.Deployment
	for _, dep := range r.rows {
		if dep.UserID == userID {
			copied := *dep
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDeploymentRepo) ListAll() ([]*model.Deployment, error) {
	var out []*model.Deployment
	for _, dep := range r.rows {
		copied := *dep
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeDeploymentRepo) ListByStatus(status string) ([]*model.Deployment, error) {
	var out []*model.Deployment
	for _, dep := range r.rows {
		if dep.Status == status {
			copied := *dep
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDeploymentRepo) Update(dep *model.Deployment) error {
	if _, ok := r.rows[dep.ID]; !ok {
		return pkgErrors.ErrRecordNotFound
	}
	copied := *dep
	r.rows[dep.ID] = &copied
	r.updates++
	return nil
}

func (r *fakeDeploymentRepo) Delete(id int64) error {
	if _, ok := r.rows[id]; !ok {
		return pkgErrors.ErrRecordNotFound
	}
	delete(r.rows, id)
	r.deletes++
	return nil
}

func (r *fakeDeploymentRepo) CountByStatus() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, dep := range r.rows {
		counts[dep.Status]++
	}
	return counts, nil
}

func (r *fakeDeploymentRepo) AvgDuration(status string) (time.Duration, error) {
	return 0, nil
}

var _ repository.DeploymentRepository = (*fakeDeploymentRepo)(nil)

type fakeLogRepo struct {
	entries []*model.LogEntry
}

func (r *fakeLogRepo) Create(entry *model.LogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLogRepo) ListByDeployment(deploymentID int64) ([]*model.LogEntry, error) {
	var out []*model.LogEntry
	for _, e := range r.entries {
		if e.DeploymentID != nil && *e.DeploymentID == deploymentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) ListByLevel(level string, limit int) ([]*model.LogEntry, error) {
	var out []*model.LogEntry
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeLogRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	var kept []*model.LogEntry
	var deleted int64
	for _, e := range r.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return deleted, nil
}

var _ repository.LogRepository = (*fakeLogRepo)(nil)

type fakeNotifier struct{}

func (n *fakeNotifier) Send(ctx context.Context, msg *notification.NotificationMessage) error {
	return nil
}

func (n *fakeNotifier) SendDeploymentNotification(ctx context.Context, deploymentID int64, projectName string, notifyType notification.NotificationType, message string) error {
	return nil
}

func testAWSConfig() *config.AWSConfig {
	return &config.AWSConfig{
		Region:        "us-east-1",
		HostedZoneID:  "Z-TEST",
		AMIID:         "ami-test",
		InstanceType:  "t2.micro",
		KeyPair:       "test-key",
		SecurityGroup: "sg-test",
	}
}

func newTestDeploymentService(repo *fakeDeploymentRepo, mock *provisioner.MockProvisioner) DeploymentService {
	return NewDeploymentService(repo, &fakeLogRepo{}, mock, &fakeNotifier{}, testAWSConfig())
}

// singleDeployment 取出库中唯一一条部署记录
func singleDeployment(t *testing.T, repo *fakeDeploymentRepo) *model.Deployment {
	t.Helper()
	rows, err := repo.ListAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

// === 测试 ===

func TestCreateDeployment_Success(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner()
	svc := newTestDeploymentService(repo, mock)

	dep, err := svc.Create(context.Background(), &dto.CreateDeploymentRequest{
		ProjectName:   "myapp",
		RepositoryURL: "https://github.com/acme/myapp",
		UserID:        7,
	})
	require.NoError(t, err)

	assert.Equal(t, constants.DeploymentStatusCompleted, dep.Status)
	require.NotNil(t, dep.DeployedURL)
	assert.NotEmpty(t, *dep.DeployedURL)
	require.NotNil(t, dep.InstanceID)
	require.NotNil(t, dep.BucketName)
	require.NotNil(t, dep.DNSRecordName)

	// 桶名唯一后缀与固定结尾
	assert.True(t, strings.HasPrefix(*dep.BucketName, "myapp-7-"))
	assert.True(t, strings.HasSuffix(*dep.BucketName, "-bucket"))

	assert.Equal(t, 1, mock.LaunchCalled())
	assert.Equal(t, 1, mock.BucketCalled())
	assert.Equal(t, 1, mock.UpsertDNSCalled())

	// 落库的行与返回值一致
	stored, err := repo.FindByID(dep.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DeploymentStatusCompleted, stored.Status)
}

func TestCreateDeployment_InstanceFailure(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner().
		SetLaunchError(errors.New("InsufficientInstanceCapacity"))
	svc := newTestDeploymentService(repo, mock)

	_, err := svc.Create(context.Background(), &dto.CreateDeploymentRequest{
		ProjectName:   "myapp",
		RepositoryURL: "https://github.com/acme/myapp",
		UserID:        7,
	})

	// 供应失败向调用方返回供应商错误
	require.Error(t, err)
	var appErr *pkgErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgErrors.CodeProviderError, appErr.Code)

	// 记录以Failed状态保留在库中
	stored := singleDeployment(t, repo)
	assert.Equal(t, constants.DeploymentStatusFailed, stored.Status)
	assert.Nil(t, stored.DeployedURL)
	require.NotNil(t, stored.Logs)
	assert.Contains(t, *stored.Logs, "InsufficientInstanceCapacity")

	// 第一步失败后续供应不再执行
	assert.Equal(t, 1, mock.LaunchCalled())
	assert.Equal(t, 0, mock.BucketCalled())
	assert.Equal(t, 0, mock.UpsertDNSCalled())
}

func TestCreateDeployment_BucketCollision(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner().
		SetBucketError(errors.New("BucketAlreadyExists: myapp-7-abc-bucket"))
	svc := newTestDeploymentService(repo, mock)

	_, err := svc.Create(context.Background(), &dto.CreateDeploymentRequest{
		ProjectName:   "myapp",
		RepositoryURL: "https://github.com/acme/myapp",
		UserID:        7,
	})

	var appErr *pkgErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgErrors.CodeProviderError, appErr.Code)

	stored := singleDeployment(t, repo)
	assert.Equal(t, constants.DeploymentStatusFailed, stored.Status)
	require.NotNil(t, stored.Logs)
	assert.Contains(t, *stored.Logs, "BucketAlreadyExists")
	assert.Equal(t, 0, mock.UpsertDNSCalled())

	// 实例已供应并记录在行上, 供显式回滚
	assert.NotNil(t, stored.InstanceID)
}

func TestCreateDeployment_LocalTarget(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner()
	svc := newTestDeploymentService(repo, mock)

	dep, err := svc.Create(context.Background(), &dto.CreateDeploymentRequest{
		ProjectName:   "MyApp",
		RepositoryURL: "https://github.com/acme/myapp",
		Target:        constants.DeployTargetLocal,
		UserID:        7,
	})
	require.NoError(t, err)

	assert.Equal(t, constants.DeploymentStatusCompleted, dep.Status)
	require.NotNil(t, dep.DeployedURL)
	assert.Equal(t, "http://localhost/myapp", *dep.DeployedURL)

	// 本地目标不接触云服务
	assert.Equal(t, 0, mock.LaunchCalled())
	assert.Equal(t, 0, mock.BucketCalled())
	assert.Equal(t, 0, mock.UpsertDNSCalled())
}

func TestCreateDeployment_WithCDN(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner()
	svc := newTestDeploymentService(repo, mock)

	dep, err := svc.Create(context.Background(), &dto.CreateDeploymentRequest{
		ProjectName:   "myapp",
		RepositoryURL: "https://github.com/acme/myapp",
		TargetConfig:  map[string]interface{}{"cdn": true, "domain": "app.example.com"},
		UserID:        7,
	})
	require.NoError(t, err)

	assert.Equal(t, constants.DeploymentStatusCompleted, dep.Status)
	require.NotNil(t, dep.DeployedURL)
	assert.Equal(t, "https://app.example.com", *dep.DeployedURL)
	require.NotNil(t, dep.Logs)
	assert.Contains(t, *dep.Logs, "CDN")
}

func TestGetDeployment_OtherUser(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner()
	svc := newTestDeploymentService(repo, mock)

	dep, err := svc.Create(context.Background(), &dto.CreateDeploymentRequest{
		ProjectName:   "myapp",
		RepositoryURL: "https://github.com/acme/myapp",
		UserID:        7,
	})
	require.NoError(t, err)

	// 归属用户可见
	_, err = svc.GetByID(7, dep.ID)
	assert.NoError(t, err)

	// 其他用户返回不存在, 不泄露归属信息
	_, err = svc.GetByID(8, dep.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrRecordNotFound)
}

func TestDeleteDeployment_NotFound(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner()
	svc := newTestDeploymentService(repo, mock)

	err := svc.Delete(context.Background(), 7, 999)
	assert.ErrorIs(t, err, pkgErrors.ErrRecordNotFound)

	// 未知ID不产生任何变更与资源回收
	assert.Equal(t, 0, repo.deletes)
	assert.Empty(t, mock.TerminatedInstances())
	assert.Empty(t, mock.DeletedBuckets())
}

func TestDeleteDeployment_TeardownResources(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner()
	svc := newTestDeploymentService(repo, mock)

	dep, err := svc.Create(context.Background(), &dto.CreateDeploymentRequest{
		ProjectName:   "myapp",
		RepositoryURL: "https://github.com/acme/myapp",
		UserID:        7,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 7, dep.ID))

	assert.Equal(t, []string{*dep.InstanceID}, mock.TerminatedInstances())
	assert.Equal(t, []string{*dep.BucketName}, mock.DeletedBuckets())

	_, err = repo.FindByID(dep.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrRecordNotFound)
}

func TestRollbackDeployment(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner()
	svc := newTestDeploymentService(repo, mock)

	dep, err := svc.Create(context.Background(), &dto.CreateDeploymentRequest{
		ProjectName:   "myapp",
		RepositoryURL: "https://github.com/acme/myapp",
		UserID:        7,
	})
	require.NoError(t, err)

	resp, err := svc.Rollback(context.Background(), 7, dep.ID)
	require.NoError(t, err)

	assert.Equal(t, dep.ID, resp.DeploymentID)
	assert.Len(t, resp.TornDown, 3)
	assert.Empty(t, resp.Failures)

	// 回滚后资源指针清空, 行仍保留
	stored, err := repo.FindByID(dep.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.InstanceID)
	assert.Nil(t, stored.BucketName)
	assert.Nil(t, stored.DNSRecordName)
	assert.Nil(t, stored.DeployedURL)
}

func TestRollbackDeployment_PartialFailure(t *testing.T) {
	repo := newFakeDeploymentRepo()
	mock := provisioner.NewMockProvisioner()
	svc := newTestDeploymentService(repo, mock)

	dep, err := svc.Create(context.Background(), &dto.CreateDeploymentRequest{
		ProjectName:   "myapp",
		RepositoryURL: "https://github.com/acme/myapp",
		UserID:        7,
	})
	require.NoError(t, err)

	mock.SetTerminateError(errors.New("instance busy"))

	resp, err := svc.Rollback(context.Background(), 7, dep.ID)
	require.NoError(t, err)

	assert.Len(t, resp.TornDown, 2)
	require.Len(t, resp.Failures, 1)
	assert.Contains(t, resp.Failures[0], "instance busy")

	// 失败的资源保留在行上, 可重试回滚
	stored, err := repo.FindByID(dep.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.InstanceID)
	assert.Nil(t, stored.BucketName)
}

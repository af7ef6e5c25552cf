package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/model"
	"cloud-deploy/internal/service"
	"cloud-deploy/pkg/constants"
	pkgErrors "cloud-deploy/pkg/errors"
)

type fakeDeploymentService struct {
	createCalled int
	createErr    error
}

func (s *fakeDeploymentService) Create(ctx context.Context, req *dto.CreateDeploymentRequest) (*model.Deployment, error) {
	s.createCalled++
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &model.Deployment{ProjectName: req.ProjectName, Status: "Completed"}, nil
}

func (s *fakeDeploymentService) GetByID(userID, deploymentID int64) (*model.Deployment, error) {
	return nil, nil
}

func (s *fakeDeploymentService) List(userID int64) ([]*model.Deployment, error) {
	return nil, nil
}

func (s *fakeDeploymentService) Delete(ctx context.Context, userID, deploymentID int64) error {
	return nil
}

func (s *fakeDeploymentService) Rollback(ctx context.Context, userID, deploymentID int64) (*dto.RollbackResponse, error) {
	return nil, nil
}

var _ service.DeploymentService = (*fakeDeploymentService)(nil)

func newTestRouter(h *DeploymentHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/deploy/create", func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, int64(7))
		h.Create(c)
	})
	return r
}

func TestCreateDeployment_ValidationListsAllFields(t *testing.T) {
	svc := &fakeDeploymentService{}
	r := newTestRouter(NewDeploymentHandler(svc))

	// 同时缺少project_name与repository_url
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/deploy/create", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 错误报告一次列出全部缺失字段
	body := w.Body.String()
	assert.Contains(t, body, "ProjectName")
	assert.Contains(t, body, "RepositoryURL")

	// 校验失败不触达服务层
	assert.Equal(t, 0, svc.createCalled)
}

func TestCreateDeployment_InvalidTarget(t *testing.T) {
	svc := &fakeDeploymentService{}
	r := newTestRouter(NewDeploymentHandler(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/deploy/create", strings.NewReader(
		`{"project_name":"myapp","repository_url":"https://github.com/acme/myapp","target":"azure"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Target")
	assert.Equal(t, 0, svc.createCalled)
}

func TestCreateDeployment_ValidRequest(t *testing.T) {
	svc := &fakeDeploymentService{}
	r := newTestRouter(NewDeploymentHandler(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/deploy/create", strings.NewReader(
		`{"project_name":"myapp","repository_url":"https://github.com/acme/myapp"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, svc.createCalled)
}

func TestCreateDeployment_ProvisionFailure(t *testing.T) {
	svc := &fakeDeploymentService{
		createErr: pkgErrors.Wrap(pkgErrors.CodeProviderError, "云服务调用失败",
			errors.New("BucketAlreadyExists: myapp-7-abc-bucket")),
	}
	r := newTestRouter(NewDeploymentHandler(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/deploy/create", strings.NewReader(
		`{"project_name":"myapp","repository_url":"https://github.com/acme/myapp"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// 供应失败响应500, 不返回创建成功
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "部署已创建")
	assert.Equal(t, 1, svc.createCalled)
}

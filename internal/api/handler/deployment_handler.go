package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cloud-deploy/internal/api/middleware"
	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/service"
	pkgErrors "cloud-deploy/pkg/errors"
	"cloud-deploy/pkg/responses"
	"cloud-deploy/pkg/utils"
)

type DeploymentHandler struct {
	deployService service.DeploymentService
}

func NewDeploymentHandler(deployService service.DeploymentService) *DeploymentHandler {
	return &DeploymentHandler{
		deployService: deployService,
	}
}

// Create 创建部署
func (h *DeploymentHandler) Create(c *gin.Context) {
	var req dto.CreateDeploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}
	req.UserID = middleware.CurrentUserID(c)

	dep, err := h.deployService.Create(c.Request.Context(), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Created(c, "部署已创建", dep)
}

// Get 查询部署详情
func (h *DeploymentHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	dep, err := h.deployService.GetByID(middleware.CurrentUserID(c), id)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, dep)
}

// List 查询当前用户的部署列表
func (h *DeploymentHandler) List(c *gin.Context) {
	deps, err := h.deployService.List(middleware.CurrentUserID(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, deps)
}

// Delete 删除部署
func (h *DeploymentHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	if err := h.deployService.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "部署已删除", nil)
}

// Rollback 回滚部署
func (h *DeploymentHandler) Rollback(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	resp, err := h.deployService.Rollback(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, resp)
}

// parseID 解析路径中的数字ID
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgErrors.New(pkgErrors.CodeBadRequest, "无效的ID")
	}
	return id, nil
}

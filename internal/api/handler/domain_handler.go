package handler

import (
	"github.com/gin-gonic/gin"

	"cloud-deploy/internal/api/middleware"
	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/service"
	"cloud-deploy/pkg/responses"
	"cloud-deploy/pkg/utils"
)

type DomainHandler struct {
	domainService service.DomainService
}

func NewDomainHandler(domainService service.DomainService) *DomainHandler {
	return &DomainHandler{
		domainService: domainService,
	}
}

// Register 注册域名
func (h *DomainHandler) Register(c *gin.Context) {
	var req dto.RegisterDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}
	req.UserID = middleware.CurrentUserID(c)

	resp, err := h.domainService.Register(c.Request.Context(), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Created(c, "域名注册成功", resp)
}

// ConfigureDNS 配置DNS记录
func (h *DomainHandler) ConfigureDNS(c *gin.Context) {
	var req dto.ConfigureDNSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.domainService.ConfigureDNS(c.Request.Context(), &req); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "DNS记录已配置", nil)
}

// Status 查询域名状态
func (h *DomainHandler) Status(c *gin.Context) {
	domainName := c.Param("domain")

	resp, err := h.domainService.Status(c.Request.Context(), domainName)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, resp)
}

// Delete 注销域名
func (h *DomainHandler) Delete(c *gin.Context) {
	domainName := c.Param("domain")

	if err := h.domainService.Delete(c.Request.Context(), middleware.CurrentUserID(c), domainName); err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, "域名已注销", nil)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"cloud-deploy/internal/api/middleware"
	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/service"
	pkgErrors "cloud-deploy/pkg/errors"
	"cloud-deploy/pkg/responses"
	"cloud-deploy/pkg/utils"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 注册用户
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Created(c, "注册成功", user)
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, resp)
}

// GetMe 获取当前用户信息
// 用户信息由认证中间件设置
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		responses.Error(c, pkgErrors.ErrUnauthorized)
		return
	}

	user, err := h.authService.Me(userID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/pkg/jwt"
	"cloud-deploy/pkg/constants"
	"cloud-deploy/pkg/responses"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			responses.ErrorWithCode(c, 401, "缺少Authorization Header")
			c.Abort()
			return
		}

		// 检查Bearer前缀
		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			responses.ErrorWithCode(c, 401, "Authorization格式错误")
			c.Abort()
			return
		}

		// 提取Token
		token := strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix)

		// 验证Token
		claims, err := jwt.ValidateToken(token)
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}

		// 检查Token类型(必须是AccessToken)
		if claims.Type != constants.JWTTypeAccess {
			responses.ErrorWithCode(c, 401, "无效的Token类型")
			c.Abort()
			return
		}

		// 将用户信息存入context
		userInfo := &dto.UserInfo{
			ID:       claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
		}
		c.Set(constants.ContextKeyUser, userInfo)
		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyUsername, claims.Username)

		c.Next()
	}
}

// CurrentUserID 从context取当前用户ID
func CurrentUserID(c *gin.Context) int64 {
	if v, ok := c.Get(constants.ContextKeyUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

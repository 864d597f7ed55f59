package middleware

import (
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/util"
	"curriculum_backend/pkg/logger"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) (string, bool) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// AuthMiddleware 校验 Bearer token，Claims 同时写入 gin 上下文与 request context，
// 服务层从 context 取身份
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(token, secret)
		if err != nil {
			logger.Log.Debug("令牌校验失败", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Request = c.Request.WithContext(util.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// RoleMiddleware 管理员拥有全部编辑权限
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if user.Role != model.Admin && !slices.Contains(roles, user.Role) {
			logger.Log.Debug("角色不允许访问", zap.Uint("userId", user.UserID), zap.String("role", string(user.Role)), zap.String("path", c.FullPath()))
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

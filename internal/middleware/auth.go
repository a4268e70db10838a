package middleware

import (
	"strings"

	"predict-go/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	contextUserID   = "user_id"
	contextUsername = "username"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "未认证")
			c.Abort()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			utils.Unauthorized(c, "无效的认证格式")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			utils.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextUsername, claims.Username)
		c.Next()
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(contextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

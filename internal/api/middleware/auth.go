package middleware

import (
	"InsightLedger/internal/pkg/response"
	"InsightLedger/internal/pkg/security"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	OperatorKey = "operator"
	ClaimsKey   = "claims"
)

// AuthMiddleware 负责验证 JWT 并将操作人信息注入 Context
func AuthMiddleware(signer *security.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		claims, err := signer.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set(OperatorKey, claims.Subject)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

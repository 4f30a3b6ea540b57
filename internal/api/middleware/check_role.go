package middleware

import (
	"InsightLedger/internal/pkg/response"
	"InsightLedger/internal/pkg/security"

	"github.com/gin-gonic/gin"
)

// CheckRoles 检查当前操作人是否拥有至少一个指定的角色
func CheckRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, _ := c.Get(ClaimsKey)
		claims, ok := value.(*security.OperatorClaims)
		if !ok || !claims.HasAnyRole(requiredRoles...) {
			response.Fail(c, response.Forbidden, "权限不足：无权访问该资源")
			c.Abort()
			return
		}

		c.Next()
	}
}

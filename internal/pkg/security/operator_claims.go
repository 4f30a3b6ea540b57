package security

import (
	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims 运维 token 中的身份信息，Subject 为操作人
type OperatorClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasAnyRole 是否拥有任一角色
func (c *OperatorClaims) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range c.Roles {
			if want == have {
				return true
			}
		}
	}
	return false
}

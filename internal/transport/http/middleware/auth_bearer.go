package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-bookstore/internal/domain"
	resp "go-gin-bookstore/internal/transport/http/response"
)

const KeyIdentity = "identity"

// IdentityResolver 把裸 token 解析为当前活跃用户
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// AuthBearer 提取 Bearer 凭证并解析为用户。任何失败统一回 401，
// 不区分签名错/过期/用户已删，避免向调用方泄露细节。
func AuthBearer(r IdentityResolver, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(401, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}
		u, err := r.Resolve(c.Request.Context(), strings.TrimPrefix(ah, "Bearer "))
		if err != nil || u == nil {
			c.AbortWithStatusJSON(401, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}
		if requireRole != "" && u.Role != requireRole {
			c.AbortWithStatusJSON(403, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyIdentity, u)
		c.Next()
	}
}

// Identity 取出 AuthBearer 放进来的用户；没走鉴权分组时返回 nil
func Identity(c *gin.Context) *domain.User {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

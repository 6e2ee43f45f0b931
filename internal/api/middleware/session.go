package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/jwt"
)

// IdentityKey gin.Context 中会话身份的键
const IdentityKey = "identity"

// TokenBlacklist 查询 Token 是否已登出
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Session 会话解析中间件
// 从 Authorization: Bearer <token> 中解析会话身份并注入上下文。
// 本中间件从不拦截请求：缺失或无效的 Token 只是没有身份，是否放行由访问守卫决定。
// blacklist 为 nil 时跳过黑名单检查
func Session(jwtMgr *jwt.Manager, blacklist TokenBlacklist, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			logger.Debug("忽略无效 Token", zap.Error(err))
			c.Next()
			return
		}

		if blacklist != nil && claims.ID != "" {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// Redis 出错时降级放行
				logger.Warn("查询 Token 黑名单失败", zap.Error(err))
			} else if revoked {
				c.Next()
				return
			}
		}

		identity := &service.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     model.Role(claims.Role),
			TokenID:  claims.ID,
		}
		if claims.ExpiresAt != nil {
			identity.ExpiresAt = claims.ExpiresAt.Time
		}
		c.Set(IdentityKey, identity)

		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

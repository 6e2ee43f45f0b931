package service

import (
	"time"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
)

// Identity 会话身份，由 Session 中间件从 Bearer Token 解析
// Role 仅为签发时的快照，鉴权以访问守卫重新读取的用户记录为准
type Identity struct {
	UserID    string
	Username  string
	Role      model.Role
	TokenID   string
	ExpiresAt time.Time
}

package service

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
	apperrors "github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/errors"
)

// ── 角色策略 ──
// 角色为精确匹配，admin 不会自动获得 bolsista 的权限

var (
	// RolesStaff 可登记设备、机器、报告，可查看维护日历
	RolesStaff = []model.Role{model.RoleAdmin, model.RoleBolsista}
	// RolesAnyUser 所有登录用户：查询列表、下载文件、导出台账
	RolesAnyUser = []model.Role{model.RoleAdmin, model.RoleBolsista, model.RoleVisitor}
	// RolesAdmin 修改实验室信息、查看一致性报告
	RolesAdmin = []model.Role{model.RoleAdmin}
)

// 拒绝原因
const (
	ReasonNoIdentity   = "未登录"
	ReasonEmptyUserID  = "会话身份为空"
	ReasonUnknownUser  = "会话用户不存在"
	ReasonLookupFailed = "身份查询失败"
	ReasonRoleMismatch = "角色不满足要求"
)

// Decision 访问守卫的判定结果
// 拒绝是一个普通返回值，调用方必须据此分支，不得继续执行受保护操作
type Decision struct {
	Allowed bool
	Reason  string
	User    *model.User // 放行时为重新读取的用户记录

	kind error
}

// Err 将拒绝结果转换为错误；放行时返回 nil
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.kind != nil {
		return d.kind
	}
	return apperrors.ErrAccessDenied
}

// AccessGuard 访问守卫
type AccessGuard interface {
	Authorize(ctx context.Context, identity *Identity, required ...model.Role) Decision
}

type accessGuard struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewAccessGuard 创建 AccessGuard 实例
func NewAccessGuard(repo *repository.Repository, logger *zap.Logger) AccessGuard {
	return &accessGuard{users: repo.User, logger: logger}
}

// Authorize 当且仅当会话身份可解析为已存储用户、且其角色属于 required 时放行
func (g *accessGuard) Authorize(ctx context.Context, identity *Identity, required ...model.Role) Decision {
	if identity == nil {
		return deny(ReasonNoIdentity, apperrors.ErrUnauthenticated)
	}
	if identity.UserID == "" {
		return deny(ReasonEmptyUserID, apperrors.ErrUnauthenticated)
	}

	user, err := g.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return deny(ReasonUnknownUser, apperrors.ErrUnauthenticated)
		}
		g.logger.Error("访问守卫查询用户失败", zap.String("user_id", identity.UserID), zap.Error(err))
		return deny(ReasonLookupFailed, apperrors.ErrAccessDenied)
	}

	if !slices.Contains(required, user.Role) {
		return deny(ReasonRoleMismatch, apperrors.ErrAccessDenied)
	}

	return Decision{Allowed: true, User: user}
}

func deny(reason string, kind error) Decision {
	return Decision{Reason: reason, kind: kind}
}

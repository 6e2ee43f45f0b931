package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/config"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrOldPasswordWrong   = errors.New("原密码错误")
	ErrSamePassword       = errors.New("新密码不能与原密码相同")
)

// TokenBlacklist Token 黑名单存储
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, identity *Identity) error
	Me(ctx context.Context, identity *Identity) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, identity *Identity, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	guard     AccessGuard
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist // 为 nil 时登出仅由客户端丢弃 Token
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	guard AccessGuard,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		guard:     guard,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Access Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Username, string(user.Role))
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录", zap.String("username", user.Username), zap.String("role", string(user.Role)))

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, identity *Identity) error {
	if identity == nil || identity.TokenID == "" {
		return nil
	}
	if s.blacklist == nil {
		return nil
	}

	ttl := time.Until(identity.ExpiresAt)
	if err := s.blacklist.BlacklistToken(ctx, identity.TokenID, ttl); err != nil {
		// 黑名单写入失败不影响登出结果
		s.logger.Warn("写入 Token 黑名单失败", zap.String("jti", identity.TokenID), zap.Error(err))
	}
	return nil
}

func (s *authService) Me(ctx context.Context, identity *Identity) (*dto.UserResponse, error) {
	d := s.guard.Authorize(ctx, identity, RolesAnyUser...)
	if !d.Allowed {
		return nil, d.Err()
	}
	resp := toUserResponse(d.User)
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, identity *Identity, req *dto.ChangePasswordRequest) error {
	d := s.guard.Authorize(ctx, identity, RolesAnyUser...)
	if !d.Allowed {
		return d.Err()
	}
	user := d.User

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrOldPasswordWrong
	}
	if req.OldPassword == req.NewPassword {
		return ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("生成密码哈希失败", zap.Error(err))
		return err
	}
	user.PasswordHash = string(hash)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.String("user_id", user.UserID), zap.Error(err))
		return err
	}
	return nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.UserID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

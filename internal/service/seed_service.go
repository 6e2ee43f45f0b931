package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/config"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
)

// SeedService 启动时写入初始数据
type SeedService interface {
	// EnsureSeeded 幂等：重复调用后仍只有三个初始账号和一条实验室信息
	EnsureSeeded(ctx context.Context) error
}

type seedService struct {
	accounts *config.SeedConfig
	lab      *config.LabConfig
	repo     *repository.Repository
	logger   *zap.Logger

	mu     sync.Mutex
	seeded bool
}

// NewSeedService 创建 SeedService 实例
func NewSeedService(accounts *config.SeedConfig, lab *config.LabConfig, repo *repository.Repository, logger *zap.Logger) SeedService {
	return &seedService{accounts: accounts, lab: lab, repo: repo, logger: logger}
}

func (s *seedService) EnsureSeeded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded {
		return nil
	}

	seeds := []struct {
		account config.SeedAccount
		role    model.Role
	}{
		{s.accounts.Admin, model.RoleAdmin},
		{s.accounts.Bolsista, model.RoleBolsista},
		{s.accounts.Visitor, model.RoleVisitor},
	}

	created := 0
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, seed := range seeds {
			ok, err := ensureUser(ctx, tx, seed.account, seed.role)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}

		count, err := tx.LabInfo.Count(ctx)
		if err != nil {
			return fmt.Errorf("统计实验室信息失败: %w", err)
		}
		if count == 0 {
			if err := tx.LabInfo.Create(ctx, newPlaceholderLabInfo(s.lab)); err != nil {
				return fmt.Errorf("创建实验室信息失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("写入初始数据失败", zap.Error(err))
		return err
	}

	s.seeded = true
	s.logger.Info("初始数据检查完成", zap.Int("created_users", created))
	return nil
}

// ensureUser 用户名不存在时创建账号，返回是否新建
func ensureUser(ctx context.Context, tx *repository.Repository, account config.SeedAccount, role model.Role) (bool, error) {
	_, err := tx.User.GetByUsername(ctx, account.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("查询初始账号 %s 失败: %w", account.Username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("生成密码哈希失败: %w", err)
	}

	user := &model.User{
		Username:     account.Username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := tx.User.Create(ctx, user); err != nil {
		return false, fmt.Errorf("创建初始账号 %s 失败: %w", account.Username, err)
	}
	return true, nil
}

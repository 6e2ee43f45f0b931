package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/config"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
)

// LabInfoService 实验室信息业务接口
// 每次读取都直接查询数据库，不做缓存
type LabInfoService interface {
	Get(ctx context.Context) (*dto.LabInfoResponse, error)
	Update(ctx context.Context, identity *Identity, req *dto.UpdateLabInfoRequest) (*dto.LabInfoResponse, error)
}

type labInfoService struct {
	placeholder *config.LabConfig
	repo        *repository.Repository
	guard       AccessGuard
	logger      *zap.Logger
}

// NewLabInfoService 创建 LabInfoService 实例
func NewLabInfoService(placeholder *config.LabConfig, repo *repository.Repository, guard AccessGuard, logger *zap.Logger) LabInfoService {
	return &labInfoService{placeholder: placeholder, repo: repo, guard: guard, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *labInfoService) Get(ctx context.Context) (*dto.LabInfoResponse, error) {
	info, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return toLabInfoResponse(info), nil
}

// load 读取单行记录，不存在时以占位值创建
func (s *labInfoService) load(ctx context.Context) (*model.LabInfo, error) {
	info, err := s.repo.LabInfo.Get(ctx)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询实验室信息失败", zap.Error(err))
		return nil, err
	}

	info = newPlaceholderLabInfo(s.placeholder)
	if err := s.repo.LabInfo.Create(ctx, info); err != nil {
		// 并发请求已先行创建
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.repo.LabInfo.Get(ctx)
		}
		s.logger.Error("创建实验室信息失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("实验室信息不存在，已写入占位值")
	return info, nil
}

// ────────────────────── Update ──────────────────────

func (s *labInfoService) Update(ctx context.Context, identity *Identity, req *dto.UpdateLabInfoRequest) (*dto.LabInfoResponse, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAdmin...); !d.Allowed {
		return nil, d.Err()
	}

	info, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if req.CoordinatorName != nil {
		info.CoordinatorName = *req.CoordinatorName
	}
	if req.CoordinatorEmail != nil {
		info.CoordinatorEmail = *req.CoordinatorEmail
	}
	if req.AssistantName != nil {
		info.AssistantName = *req.AssistantName
	}
	if req.AssistantEmail != nil {
		info.AssistantEmail = *req.AssistantEmail
	}

	if err := s.repo.LabInfo.Update(ctx, info); err != nil {
		s.logger.Error("更新实验室信息失败", zap.Error(err))
		return nil, err
	}

	return toLabInfoResponse(info), nil
}

func newPlaceholderLabInfo(p *config.LabConfig) *model.LabInfo {
	return &model.LabInfo{
		Singleton:        true,
		CoordinatorName:  p.CoordinatorName,
		CoordinatorEmail: p.CoordinatorEmail,
		AssistantName:    p.AssistantName,
		AssistantEmail:   p.AssistantEmail,
	}
}

func toLabInfoResponse(info *model.LabInfo) *dto.LabInfoResponse {
	return &dto.LabInfoResponse{
		CoordinatorName:  info.CoordinatorName,
		CoordinatorEmail: info.CoordinatorEmail,
		AssistantName:    info.AssistantName,
		AssistantEmail:   info.AssistantEmail,
		UpdatedAt:        info.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

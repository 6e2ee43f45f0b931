package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
	apperrors "github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/errors"
)

// ── 机器模块业务错误 ──

var (
	ErrMachineNotFound = apperrors.Wrap(apperrors.ErrNotFound, "机器不存在")
)

// MachineService 机器查询业务接口
type MachineService interface {
	List(ctx context.Context, identity *Identity, page *dto.PaginationRequest) ([]dto.MachineResponse, int64, error)
	Get(ctx context.Context, identity *Identity, id string) (*dto.MachineResponse, error)
}

type machineService struct {
	repo   *repository.Repository
	guard  AccessGuard
	logger *zap.Logger
}

// NewMachineService 创建 MachineService 实例
func NewMachineService(repo *repository.Repository, guard AccessGuard, logger *zap.Logger) MachineService {
	return &machineService{repo: repo, guard: guard, logger: logger}
}

func (s *machineService) List(ctx context.Context, identity *Identity, page *dto.PaginationRequest) ([]dto.MachineResponse, int64, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAnyUser...); !d.Allowed {
		return nil, 0, d.Err()
	}

	list, total, err := s.repo.Machine.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询机器列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.MachineResponse, 0, len(list))
	for i := range list {
		result = append(result, *toMachineResponse(&list[i]))
	}
	return result, total, nil
}

func (s *machineService) Get(ctx context.Context, identity *Identity, id string) (*dto.MachineResponse, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAnyUser...); !d.Allowed {
		return nil, d.Err()
	}

	machine, err := s.repo.Machine.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		s.logger.Error("查询机器失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toMachineResponse(machine), nil
}

// ── 转换 ──

func toMachineResponse(m *model.Machine) *dto.MachineResponse {
	return &dto.MachineResponse{
		ID:                m.MachineID,
		Name:              m.Name,
		Status:            m.Status,
		Type:              m.Type,
		Brand:             m.Brand,
		Model:             m.Model,
		SerialNumber:      m.SerialNumber,
		OS:                m.OS,
		InstalledSoftware: m.InstalledSoftware,
		Licenses:          m.Licenses,
		LastCleaningDate:  formatDate(m.LastCleaningDate),
		LastFormatDate:    formatDate(m.LastFormatDate),
		Responsible:       m.Responsible,
		ImagemFilename:    m.ImagemFilename,
		ImageURL:          fileURL(m.ImagemFilename),
		CreatedAt:         m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
	apperrors "github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/errors"
)

// ── 设备模块业务错误 ──

var (
	ErrEquipmentNotFound = apperrors.Wrap(apperrors.ErrNotFound, "设备不存在")
)

// EquipmentService 设备查询业务接口
type EquipmentService interface {
	List(ctx context.Context, identity *Identity, page *dto.PaginationRequest) ([]dto.EquipmentResponse, int64, error)
	Get(ctx context.Context, identity *Identity, id string) (*dto.EquipmentResponse, error)
}

type equipmentService struct {
	repo   *repository.Repository
	guard  AccessGuard
	logger *zap.Logger
}

// NewEquipmentService 创建 EquipmentService 实例
func NewEquipmentService(repo *repository.Repository, guard AccessGuard, logger *zap.Logger) EquipmentService {
	return &equipmentService{repo: repo, guard: guard, logger: logger}
}

func (s *equipmentService) List(ctx context.Context, identity *Identity, page *dto.PaginationRequest) ([]dto.EquipmentResponse, int64, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAnyUser...); !d.Allowed {
		return nil, 0, d.Err()
	}

	list, total, err := s.repo.Equipment.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询设备列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.EquipmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toEquipmentResponse(&list[i]))
	}
	return result, total, nil
}

func (s *equipmentService) Get(ctx context.Context, identity *Identity, id string) (*dto.EquipmentResponse, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAnyUser...); !d.Allowed {
		return nil, d.Err()
	}

	equipment, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("查询设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toEquipmentResponse(equipment), nil
}

// ── 转换 ──

func toEquipmentResponse(e *model.Equipment) *dto.EquipmentResponse {
	return &dto.EquipmentResponse{
		ID:             e.EquipmentID,
		Name:           e.Name,
		Tombo:          e.Tombo,
		Quantity:       e.Quantity,
		Model:          e.Model,
		Brand:          e.Brand,
		Purpose:        e.Purpose,
		Status:         e.Status,
		Location:       e.Location,
		Description:    e.Description,
		ImagemFilename: e.ImagemFilename,
		ImageURL:       fileURL(e.ImagemFilename),
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// fileURL 存储引用对应的下载地址
func fileURL(ref *string) string {
	if ref == nil || *ref == "" {
		return ""
	}
	return "/api/v1/files/" + url.PathEscape(*ref)
}

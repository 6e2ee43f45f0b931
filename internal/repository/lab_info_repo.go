package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
)

// LabInfoRepository 实验室信息数据访问接口
type LabInfoRepository interface {
	Get(ctx context.Context) (*model.LabInfo, error)
	Create(ctx context.Context, info *model.LabInfo) error
	Update(ctx context.Context, info *model.LabInfo) error
	Count(ctx context.Context) (int64, error)
}

type labInfoRepo struct {
	db *gorm.DB
}

// NewLabInfoRepo 创建 LabInfoRepository 实例
func NewLabInfoRepo(db *gorm.DB) LabInfoRepository {
	return &labInfoRepo{db: db}
}

func (r *labInfoRepo) Get(ctx context.Context) (*model.LabInfo, error) {
	var info model.LabInfo
	err := r.db.WithContext(ctx).First(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *labInfoRepo) Create(ctx context.Context, info *model.LabInfo) error {
	info.Singleton = true
	return r.db.WithContext(ctx).Create(info).Error
}

func (r *labInfoRepo) Update(ctx context.Context, info *model.LabInfo) error {
	info.Singleton = true
	return r.db.WithContext(ctx).Save(info).Error
}

func (r *labInfoRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LabInfo{}).Count(&count).Error
	return count, err
}

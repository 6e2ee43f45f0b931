package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
)

// EquipmentRepository 设备数据访问接口（只追加）
type EquipmentRepository interface {
	Create(ctx context.Context, equipment *model.Equipment) error
	GetByID(ctx context.Context, id string) (*model.Equipment, error)
	List(ctx context.Context, offset, limit int) ([]model.Equipment, int64, error)
	ListAll(ctx context.Context) ([]model.Equipment, error)
	ListFileRefs(ctx context.Context) ([]FileRef, error)
}

type equipmentRepo struct {
	db *gorm.DB
}

// NewEquipmentRepo 创建 EquipmentRepository 实例
func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Create(ctx context.Context, equipment *model.Equipment) error {
	return r.db.WithContext(ctx).Create(equipment).Error
}

func (r *equipmentRepo) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	var equipment model.Equipment
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", id).
		First(&equipment).Error
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *equipmentRepo) List(ctx context.Context, offset, limit int) ([]model.Equipment, int64, error) {
	var list []model.Equipment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Equipment{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *equipmentRepo) ListAll(ctx context.Context) ([]model.Equipment, error) {
	var list []model.Equipment
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&list).Error
	return list, err
}

func (r *equipmentRepo) ListFileRefs(ctx context.Context) ([]FileRef, error) {
	var rows []struct {
		EquipmentID    string
		ImagemFilename string
	}
	err := r.db.WithContext(ctx).
		Model(&model.Equipment{}).
		Select("equipment_id", "imagem_filename").
		Where("imagem_filename IS NOT NULL AND imagem_filename <> ''").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	refs := make([]FileRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, FileRef{Kind: KindEquipment, RecordID: row.EquipmentID, Ref: row.ImagemFilename})
	}
	return refs, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
)

// MachineRepository 机器数据访问接口（只追加）
type MachineRepository interface {
	Create(ctx context.Context, machine *model.Machine) error
	GetByID(ctx context.Context, id string) (*model.Machine, error)
	GetBySerialNumber(ctx context.Context, serial string) (*model.Machine, error)
	List(ctx context.Context, offset, limit int) ([]model.Machine, int64, error)
	ListAll(ctx context.Context) ([]model.Machine, error)
	ListFileRefs(ctx context.Context) ([]FileRef, error)
}

type machineRepo struct {
	db *gorm.DB
}

// NewMachineRepo 创建 MachineRepository 实例
func NewMachineRepo(db *gorm.DB) MachineRepository {
	return &machineRepo{db: db}
}

func (r *machineRepo) Create(ctx context.Context, machine *model.Machine) error {
	return r.db.WithContext(ctx).Create(machine).Error
}

func (r *machineRepo) GetByID(ctx context.Context, id string) (*model.Machine, error) {
	var machine model.Machine
	err := r.db.WithContext(ctx).
		Where("machine_id = ?", id).
		First(&machine).Error
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

func (r *machineRepo) GetBySerialNumber(ctx context.Context, serial string) (*model.Machine, error) {
	var machine model.Machine
	err := r.db.WithContext(ctx).
		Where("serial_number = ?", serial).
		First(&machine).Error
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

func (r *machineRepo) List(ctx context.Context, offset, limit int) ([]model.Machine, int64, error) {
	var list []model.Machine
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Machine{})

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

func (r *machineRepo) ListAll(ctx context.Context) ([]model.Machine, error) {
	var list []model.Machine
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&list).Error
	return list, err
}

func (r *machineRepo) ListFileRefs(ctx context.Context) ([]FileRef, error) {
	var rows []struct {
		MachineID      string
		ImagemFilename string
	}
	err := r.db.WithContext(ctx).
		Model(&model.Machine{}).
		Select("machine_id", "imagem_filename").
		Where("imagem_filename IS NOT NULL AND imagem_filename <> ''").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	refs := make([]FileRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, FileRef{Kind: KindMachine, RecordID: row.MachineID, Ref: row.ImagemFilename})
	}
	return refs, nil
}

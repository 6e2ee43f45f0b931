package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
)

// ReportRepository 报告数据访问接口（只追加）
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, offset, limit int) ([]model.Report, int64, error)
	ListFileRefs(ctx context.Context) ([]FileRef, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo 创建 ReportRepository 实例
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Where("report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) List(ctx context.Context, offset, limit int) ([]model.Report, int64, error) {
	var list []model.Report
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Report{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("uploaded_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *reportRepo) ListFileRefs(ctx context.Context) ([]FileRef, error) {
	var rows []struct {
		ReportID string
		Filename string
	}
	err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Select("report_id", "filename").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	refs := make([]FileRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, FileRef{Kind: KindReport, RecordID: row.ReportID, Ref: row.Filename})
	}
	return refs, nil
}

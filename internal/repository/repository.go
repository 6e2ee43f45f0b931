package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User      UserRepository
	LabInfo   LabInfoRepository
	Equipment EquipmentRepository
	Machine   MachineRepository
	Report    ReportRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:        db,
		User:      NewUserRepo(db),
		LabInfo:   NewLabInfoRepo(db),
		Equipment: NewEquipmentRepo(db),
		Machine:   NewMachineRepo(db),
		Report:    NewReportRepo(db),
	}
}

// Transaction 在同一事务内执行 fn，fn 收到绑定事务的 Repository 聚合
// 未绑定数据库（单元测试中手工组装）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// FileRef 记录对存储文件的弱引用（无外键约束）
type FileRef struct {
	Kind     string `json:"kind"`
	RecordID string `json:"record_id"`
	Ref      string `json:"ref"`
}

// 引用文件的记录类型
const (
	KindEquipment = "equipment"
	KindMachine   = "machine"
	KindReport    = "report"
)

// ListFileRefs 汇总所有记录引用的存储文件
func (r *Repository) ListFileRefs(ctx context.Context) ([]FileRef, error) {
	var all []FileRef
	for _, src := range []interface {
		ListFileRefs(ctx context.Context) ([]FileRef, error)
	}{r.Equipment, r.Machine, r.Report} {
		refs, err := src.ListFileRefs(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, refs...)
	}
	return all, nil
}

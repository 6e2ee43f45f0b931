package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
)

// ConsistencyService 文件与记录的一致性检查
//
// 记录通过文件名弱引用存储文件，没有外键约束。
// 这里只负责发现不一致，不做任何自动修复。
type ConsistencyService interface {
	// FindOrphanedFiles 上传目录中未被任何记录引用的文件
	FindOrphanedFiles(ctx context.Context) ([]string, error)
	// FindDanglingReferences 引用了不存在文件的记录
	FindDanglingReferences(ctx context.Context) ([]repository.FileRef, error)
	// Report 管理员查看的一致性报告
	Report(ctx context.Context, identity *Identity) (*dto.ConsistencyReportResponse, error)
}

type consistencyService struct {
	repo   *repository.Repository
	guard  AccessGuard
	files  FileStore
	now    func() time.Time
	logger *zap.Logger
}

// NewConsistencyService 创建 ConsistencyService 实例
func NewConsistencyService(repo *repository.Repository, guard AccessGuard, files FileStore, logger *zap.Logger) ConsistencyService {
	return &consistencyService{repo: repo, guard: guard, files: files, now: time.Now, logger: logger}
}

func (s *consistencyService) FindOrphanedFiles(ctx context.Context) ([]string, error) {
	stored, refs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return orphansOf(stored, refs), nil
}

func (s *consistencyService) FindDanglingReferences(ctx context.Context) ([]repository.FileRef, error) {
	refs, err := s.repo.ListFileRefs(ctx)
	if err != nil {
		s.logger.Error("查询文件引用失败", zap.Error(err))
		return nil, err
	}
	return s.danglingOf(refs), nil
}

func (s *consistencyService) Report(ctx context.Context, identity *Identity) (*dto.ConsistencyReportResponse, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAdmin...); !d.Allowed {
		return nil, d.Err()
	}

	stored, refs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	orphans := orphansOf(stored, refs)
	dangling := s.danglingOf(refs)

	orphanedFiles.Set(float64(len(orphans)))
	danglingReferences.Set(float64(len(dangling)))

	if len(orphans) > 0 || len(dangling) > 0 {
		s.logger.Warn("发现文件与记录不一致",
			zap.Int("orphaned_files", len(orphans)),
			zap.Int("dangling_references", len(dangling)),
		)
	}

	resp := &dto.ConsistencyReportResponse{
		OrphanedFiles:       orphans,
		DanglingReferences:  make([]dto.DanglingReferenceResponse, 0, len(dangling)),
		StoredFileCount:     len(stored),
		ReferencedFileCount: len(refs),
		CheckedAt:           s.now().UTC().Format(time.RFC3339),
	}
	for _, d := range dangling {
		resp.DanglingReferences = append(resp.DanglingReferences, dto.DanglingReferenceResponse{
			Kind:     d.Kind,
			RecordID: d.RecordID,
			Ref:      d.Ref,
		})
	}
	return resp, nil
}

// snapshot 读取上传目录与全部引用
// 两次读取之间可能有新登记写入，结果只反映近似一致的视图
func (s *consistencyService) snapshot(ctx context.Context) ([]string, []repository.FileRef, error) {
	stored, err := s.files.List()
	if err != nil {
		s.logger.Error("列出上传目录失败", zap.Error(err))
		return nil, nil, err
	}
	refs, err := s.repo.ListFileRefs(ctx)
	if err != nil {
		s.logger.Error("查询文件引用失败", zap.Error(err))
		return nil, nil, err
	}
	return stored, refs, nil
}

func orphansOf(stored []string, refs []repository.FileRef) []string {
	referenced := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		referenced[r.Ref] = struct{}{}
	}

	orphans := make([]string, 0)
	for _, name := range stored {
		if _, ok := referenced[name]; !ok {
			orphans = append(orphans, name)
		}
	}
	return orphans
}

func (s *consistencyService) danglingOf(refs []repository.FileRef) []repository.FileRef {
	dangling := make([]repository.FileRef, 0)
	for _, r := range refs {
		if !s.files.Exists(r.Ref) {
			dangling = append(dangling, r)
		}
	}
	return dangling
}

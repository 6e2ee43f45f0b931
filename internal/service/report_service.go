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
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/filestore"
)

// ── 报告模块业务错误 ──

var (
	ErrReportNotFound = apperrors.Wrap(apperrors.ErrNotFound, "报告不存在")
)

// ReportService 报告查询与下载业务接口
type ReportService interface {
	List(ctx context.Context, identity *Identity, page *dto.PaginationRequest) ([]dto.ReportResponse, int64, error)
	Get(ctx context.Context, identity *Identity, id string) (*dto.ReportResponse, error)
	Open(ctx context.Context, identity *Identity, id string) (*FileContent, error)
}

type reportService struct {
	repo   *repository.Repository
	guard  AccessGuard
	files  FileStore
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, guard AccessGuard, files FileStore, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, guard: guard, files: files, logger: logger}
}

func (s *reportService) List(ctx context.Context, identity *Identity, page *dto.PaginationRequest) ([]dto.ReportResponse, int64, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAnyUser...); !d.Allowed {
		return nil, 0, d.Err()
	}

	list, total, err := s.repo.Report.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询报告列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ReportResponse, 0, len(list))
	for i := range list {
		result = append(result, *toReportResponse(&list[i]))
	}
	return result, total, nil
}

func (s *reportService) Get(ctx context.Context, identity *Identity, id string) (*dto.ReportResponse, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAnyUser...); !d.Allowed {
		return nil, d.Err()
	}

	report, err := s.getReport(ctx, id)
	if err != nil {
		return nil, err
	}
	return toReportResponse(report), nil
}

// Open 打开报告关联的文件；记录存在但文件缺失时返回 filestore.ErrFileNotFound
func (s *reportService) Open(ctx context.Context, identity *Identity, id string) (*FileContent, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAnyUser...); !d.Allowed {
		return nil, d.Err()
	}

	report, err := s.getReport(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := openStored(s.files, report.Filename, s.logger)
	if err != nil {
		if errors.Is(err, filestore.ErrFileNotFound) {
			s.logger.Warn("报告文件缺失", zap.String("report_id", id), zap.String("ref", report.Filename))
		}
		return nil, err
	}
	return content, nil
}

func (s *reportService) getReport(ctx context.Context, id string) (*model.Report, error) {
	report, err := s.repo.Report.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询报告失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return report, nil
}

// ── 转换 ──

func toReportResponse(r *model.Report) *dto.ReportResponse {
	return &dto.ReportResponse{
		ID:          r.ReportID,
		Title:       r.Title,
		Filename:    r.Filename,
		DownloadURL: "/api/v1/reports/" + r.ReportID + "/download",
		UploadedAt:  r.UploadedAt.UTC().Format(time.RFC3339),
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
	apperrors "github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/errors"
)

// seedInconsistency 制造一个孤儿文件和一个悬空引用
func seedInconsistency(t *testing.T, f *fixture) (orphan string, dangling string) {
	t.Helper()
	ctx := context.Background()

	ok, err := f.files.Store(strings.NewReader("ok"), "ok.png")
	if err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}
	_ = f.equipment.Create(ctx, &model.Equipment{Name: "Com imagem", ImagemFilename: &ok})

	orphan, err = f.files.Store(strings.NewReader("orphan"), "orphan.png")
	if err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	dangling = "20260101000000000000_missing.pdf"
	_ = f.reports.Create(ctx, &model.Report{Title: "Sem arquivo", Filename: dangling})

	_ = f.equipment.Create(ctx, &model.Equipment{Name: "Sem imagem"})
	return orphan, dangling
}

func TestFindOrphanedFiles(t *testing.T) {
	f := newFixture(t)
	orphan, _ := seedInconsistency(t, f)
	svc := NewConsistencyService(f.repo, f.guard, f.files, f.logger)

	got, err := svc.FindOrphanedFiles(context.Background())
	if err != nil {
		t.Fatalf("FindOrphanedFiles 失败: %v", err)
	}
	if len(got) != 1 || got[0] != orphan {
		t.Errorf("期望孤儿文件 [%s]，实际=%v", orphan, got)
	}
}

func TestFindDanglingReferences(t *testing.T) {
	f := newFixture(t)
	_, dangling := seedInconsistency(t, f)
	svc := NewConsistencyService(f.repo, f.guard, f.files, f.logger)

	got, err := svc.FindDanglingReferences(context.Background())
	if err != nil {
		t.Fatalf("FindDanglingReferences 失败: %v", err)
	}
	want := repository.FileRef{Kind: repository.KindReport, RecordID: "rp-Sem arquivo", Ref: dangling}
	if len(got) != 1 || got[0] != want {
		t.Errorf("期望悬空引用 %+v，实际=%+v", want, got)
	}
}

func TestConsistency_CleanState(t *testing.T) {
	f := newFixture(t)
	svc := NewConsistencyService(f.repo, f.guard, f.files, f.logger)

	orphans, err := svc.FindOrphanedFiles(context.Background())
	if err != nil || len(orphans) != 0 {
		t.Errorf("空仓库不应有孤儿文件: %v %v", orphans, err)
	}
	dangling, err := svc.FindDanglingReferences(context.Background())
	if err != nil || len(dangling) != 0 {
		t.Errorf("空仓库不应有悬空引用: %v %v", dangling, err)
	}
}

func TestConsistencyReport_AdminOnly(t *testing.T) {
	f := newFixture(t)
	orphan, dangling := seedInconsistency(t, f)
	svc := NewConsistencyService(f.repo, f.guard, f.files, f.logger)
	ctx := context.Background()

	bolsista := f.identity("bolsista", model.RoleBolsista)
	if _, err := svc.Report(ctx, bolsista); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("bolsista 期望 ErrAccessDenied，实际: %v", err)
	}

	admin := f.identity("admin", model.RoleAdmin)
	report, err := svc.Report(ctx, admin)
	if err != nil {
		t.Fatalf("Report 失败: %v", err)
	}

	if report.StoredFileCount != 2 || report.ReferencedFileCount != 2 {
		t.Errorf("计数不符: stored=%d referenced=%d", report.StoredFileCount, report.ReferencedFileCount)
	}
	if len(report.OrphanedFiles) != 1 || report.OrphanedFiles[0] != orphan {
		t.Errorf("孤儿文件不符: %v", report.OrphanedFiles)
	}
	wantDangling := dto.DanglingReferenceResponse{Kind: repository.KindReport, RecordID: "rp-Sem arquivo", Ref: dangling}
	if len(report.DanglingReferences) != 1 || report.DanglingReferences[0] != wantDangling {
		t.Errorf("悬空引用不符: %+v", report.DanglingReferences)
	}

	// 只读：检查后文件仍在
	if len(f.storedFiles(t)) != 2 {
		t.Error("一致性检查不应删除任何文件")
	}
}

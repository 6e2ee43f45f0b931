package service

import (
	"go.uber.org/zap"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/config"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Guard        AccessGuard
	Auth         AuthService
	LabInfo      LabInfoService
	Registration RegistrationService
	Equipment    EquipmentService
	Machine      MachineService
	Report       ReportService
	File         FileService
	Export       ExportService
	Consistency  ConsistencyService
	Seed         SeedService
}

// NewService 创建 Service 聚合
// blacklist 为 nil 表示未启用 Redis
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	files FileStore,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	guard := NewAccessGuard(repo, logger)

	return &Service{
		Guard:        guard,
		Auth:         NewAuthService(cfg, repo, guard, jwtMgr, blacklist, logger),
		LabInfo:      NewLabInfoService(&cfg.Lab, repo, guard, logger),
		Registration: NewRegistrationService(repo, guard, files, logger),
		Equipment:    NewEquipmentService(repo, guard, logger),
		Machine:      NewMachineService(repo, guard, logger),
		Report:       NewReportService(repo, guard, files, logger),
		File:         NewFileService(guard, files, logger),
		Export:       NewExportService(repo, guard, logger),
		Consistency:  NewConsistencyService(repo, guard, files, logger),
		Seed:         NewSeedService(&cfg.Seed, &cfg.Lab, repo, logger),
	}
}

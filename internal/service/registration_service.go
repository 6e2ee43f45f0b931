package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
	apperrors "github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/errors"
)

// ── 登记模块业务错误 ──

var (
	ErrEquipmentNameRequired = apperrors.Wrap(apperrors.ErrValidation, "设备名称不能为空")
	ErrInvalidQuantity       = apperrors.Wrap(apperrors.ErrValidation, "数量不能为负数")
	ErrMachineNameRequired   = apperrors.Wrap(apperrors.ErrValidation, "机器名称不能为空")
	ErrSerialNumberTaken     = apperrors.Wrap(apperrors.ErrValidation, "序列号已被其他机器使用")
	ErrInvalidDate           = apperrors.Wrap(apperrors.ErrValidation, "日期格式应为 YYYY-MM-DD")
	ErrReportTitleRequired   = apperrors.Wrap(apperrors.ErrValidation, "报告标题不能为空")
	ErrReportFileRequired    = apperrors.Wrap(apperrors.ErrValidation, "报告必须上传文件")
)

const dateLayout = "2006-01-02"

// RegistrationService 上传并登记业务接口
//
// 流程：鉴权 → 字段校验 → 存储文件 → 写入记录。
// 文件写入与记录写入不在同一事务中：记录写入失败时已存储的文件保留在磁盘上，
// 成为孤儿文件，由一致性检查发现。
type RegistrationService interface {
	RegisterEquipment(ctx context.Context, identity *Identity, req *dto.CreateEquipmentRequest, upload *Upload) (*dto.EquipmentResponse, error)
	RegisterMachine(ctx context.Context, identity *Identity, req *dto.CreateMachineRequest, upload *Upload) (*dto.MachineResponse, error)
	RegisterReport(ctx context.Context, identity *Identity, req *dto.CreateReportRequest, upload *Upload) (*dto.ReportResponse, error)
}

type registrationService struct {
	repo   *repository.Repository
	guard  AccessGuard
	files  FileStore
	now    func() time.Time
	logger *zap.Logger
}

// NewRegistrationService 创建 RegistrationService 实例
func NewRegistrationService(
	repo *repository.Repository,
	guard AccessGuard,
	files FileStore,
	logger *zap.Logger,
) RegistrationService {
	return &registrationService{
		repo:   repo,
		guard:  guard,
		files:  files,
		now:    time.Now,
		logger: logger,
	}
}

// registration 描述一种记录的登记方式
type registration struct {
	kind         string
	fileRequired bool
	validate     func(ctx context.Context) error
	persist      func(ctx context.Context, ref *string, by *model.User, now time.Time) error
}

// ════════════════════════════════════════════════════════════
// register — 三种记录共用的登记流程
// ════════════════════════════════════════════════════════════

func (s *registrationService) register(ctx context.Context, identity *Identity, reg registration, upload *Upload) error {
	// 1. 鉴权：拒绝时不写文件、不写记录
	decision := s.guard.Authorize(ctx, identity, RolesStaff...)
	if !decision.Allowed {
		registrationsTotal.WithLabelValues(reg.kind, outcomeDenied).Inc()
		return decision.Err()
	}

	// 2. 字段校验
	if err := reg.validate(ctx); err != nil {
		registrationsTotal.WithLabelValues(reg.kind, outcomeInvalid).Inc()
		return err
	}

	// 3. 存储上传文件；文件名清洗为空视为未上传
	var ref *string
	if upload != nil && upload.Content != nil {
		counter := &countingReader{r: upload.Content}
		stored, err := s.files.Store(counter, upload.Filename)
		if err != nil {
			if errors.Is(err, apperrors.ErrValidation) {
				registrationsTotal.WithLabelValues(reg.kind, outcomeInvalid).Inc()
			} else {
				registrationsTotal.WithLabelValues(reg.kind, outcomeStorageError).Inc()
				s.logger.Error("存储上传文件失败",
					zap.String("kind", reg.kind),
					zap.String("client_name", upload.Filename),
					zap.Error(err),
				)
			}
			return err
		}
		if stored != "" {
			ref = &stored
			storedBytesTotal.Add(float64(counter.n))
		}
	}

	// 4. 报告必须关联文件
	if reg.fileRequired && ref == nil {
		registrationsTotal.WithLabelValues(reg.kind, outcomeInvalid).Inc()
		return ErrReportFileRequired
	}

	// 5. 写入记录；失败时不回滚已写入的文件
	if err := reg.persist(ctx, ref, decision.User, s.now().UTC()); err != nil {
		if ref != nil {
			s.logger.Warn("记录写入失败，已存储的文件成为孤儿文件",
				zap.String("kind", reg.kind),
				zap.String("ref", *ref),
				zap.Error(err),
			)
		}
		if errors.Is(err, apperrors.ErrValidation) {
			registrationsTotal.WithLabelValues(reg.kind, outcomeInvalid).Inc()
		} else {
			registrationsTotal.WithLabelValues(reg.kind, outcomePersistError).Inc()
			s.logger.Error("写入记录失败", zap.String("kind", reg.kind), zap.Error(err))
		}
		return err
	}

	registrationsTotal.WithLabelValues(reg.kind, outcomeCreated).Inc()
	fields := []zap.Field{
		zap.String("kind", reg.kind),
		zap.String("user", decision.User.Username),
	}
	if ref != nil {
		fields = append(fields, zap.String("ref", *ref))
	}
	s.logger.Info("登记成功", fields...)
	return nil
}

// ────────────────────── Equipment ──────────────────────

func (s *registrationService) RegisterEquipment(ctx context.Context, identity *Identity, req *dto.CreateEquipmentRequest, upload *Upload) (*dto.EquipmentResponse, error) {
	var created *model.Equipment

	err := s.register(ctx, identity, registration{
		kind: repository.KindEquipment,
		validate: func(context.Context) error {
			if strings.TrimSpace(req.Name) == "" {
				return ErrEquipmentNameRequired
			}
			if req.Quantity < 0 {
				return ErrInvalidQuantity
			}
			return nil
		},
		persist: func(ctx context.Context, ref *string, by *model.User, now time.Time) error {
			equipment := &model.Equipment{
				Name:           strings.TrimSpace(req.Name),
				Tombo:          strings.TrimSpace(req.Tombo),
				Quantity:       req.Quantity,
				Model:          strings.TrimSpace(req.Model),
				Brand:          strings.TrimSpace(req.Brand),
				Purpose:        strings.TrimSpace(req.Purpose),
				Status:         strings.TrimSpace(req.Status),
				Location:       strings.TrimSpace(req.Location),
				Description:    strings.TrimSpace(req.Description),
				ImagemFilename: ref,
				CreatedBy:      &by.UserID,
				CreatedAt:      now,
			}
			if err := s.repo.Equipment.Create(ctx, equipment); err != nil {
				return err
			}
			created = equipment
			return nil
		},
	}, upload)
	if err != nil {
		return nil, err
	}

	return toEquipmentResponse(created), nil
}

// ────────────────────── Machine ──────────────────────

func (s *registrationService) RegisterMachine(ctx context.Context, identity *Identity, req *dto.CreateMachineRequest, upload *Upload) (*dto.MachineResponse, error) {
	var (
		created     *model.Machine
		serial      *string
		cleaningAt  *time.Time
		formattedAt *time.Time
	)

	err := s.register(ctx, identity, registration{
		kind: repository.KindMachine,
		validate: func(ctx context.Context) error {
			if strings.TrimSpace(req.Name) == "" {
				return ErrMachineNameRequired
			}

			var err error
			if cleaningAt, err = parseDate(req.LastCleaningDate, "last_cleaning_date"); err != nil {
				return err
			}
			if formattedAt, err = parseDate(req.LastFormatDate, "last_format_date"); err != nil {
				return err
			}

			if sn := strings.TrimSpace(req.SerialNumber); sn != "" {
				_, err := s.repo.Machine.GetBySerialNumber(ctx, sn)
				if err == nil {
					return ErrSerialNumberTaken
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Error("查询序列号失败", zap.Error(err))
					return err
				}
				serial = &sn
			}
			return nil
		},
		persist: func(ctx context.Context, ref *string, by *model.User, now time.Time) error {
			status := strings.TrimSpace(req.Status)
			if status == "" {
				status = model.DefaultMachineStatus
			}
			machine := &model.Machine{
				Name:              strings.TrimSpace(req.Name),
				Status:            status,
				Type:              strings.TrimSpace(req.Type),
				Brand:             strings.TrimSpace(req.Brand),
				Model:             strings.TrimSpace(req.Model),
				SerialNumber:      serial,
				OS:                strings.TrimSpace(req.OS),
				InstalledSoftware: strings.TrimSpace(req.InstalledSoftware),
				Licenses:          strings.TrimSpace(req.Licenses),
				LastCleaningDate:  cleaningAt,
				LastFormatDate:    formattedAt,
				Responsible:       strings.TrimSpace(req.Responsible),
				ImagemFilename:    ref,
				CreatedBy:         &by.UserID,
				CreatedAt:         now,
			}
			if err := s.repo.Machine.Create(ctx, machine); err != nil {
				// 校验与写入之间被并发请求抢先
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrSerialNumberTaken
				}
				return err
			}
			created = machine
			return nil
		},
	}, upload)
	if err != nil {
		return nil, err
	}

	return toMachineResponse(created), nil
}

// ────────────────────── Report ──────────────────────

func (s *registrationService) RegisterReport(ctx context.Context, identity *Identity, req *dto.CreateReportRequest, upload *Upload) (*dto.ReportResponse, error) {
	var created *model.Report

	err := s.register(ctx, identity, registration{
		kind:         repository.KindReport,
		fileRequired: true,
		validate: func(context.Context) error {
			if strings.TrimSpace(req.Title) == "" {
				return ErrReportTitleRequired
			}
			return nil
		},
		persist: func(ctx context.Context, ref *string, by *model.User, now time.Time) error {
			report := &model.Report{
				Title:      strings.TrimSpace(req.Title),
				Filename:   *ref,
				CreatedBy:  &by.UserID,
				UploadedAt: now,
			}
			if err := s.repo.Report.Create(ctx, report); err != nil {
				return err
			}
			created = report
			return nil
		},
	}, upload)
	if err != nil {
		return nil, err
	}

	return toReportResponse(created), nil
}

// parseDate 解析可选的 YYYY-MM-DD 日期
func parseDate(value, field string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, field)
	}
	return &t, nil
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/model"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
//   - 台账导出为 Excel (.xlsx)：设备与机器各一个 Sheet
//   - 机器维护记录导出为 iCalendar (.ics)：每次清洁、格式化各为一个全天事件
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportInventory(ctx context.Context, identity *Identity) (*bytes.Buffer, string, error)
	MaintenanceCalendar(ctx context.Context, identity *Identity) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	guard  AccessGuard
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, guard AccessGuard, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, guard: guard, now: time.Now, logger: logger}
}

const (
	sheetEquipment = "Equipamentos"
	sheetMachines  = "Máquinas"
)

// ═══════════════════════════════════════════════════════════
// ExportInventory — 导出设备与机器台账为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportInventory(ctx context.Context, identity *Identity) (*bytes.Buffer, string, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAnyUser...); !d.Allowed {
		return nil, "", d.Err()
	}

	equipment, err := s.repo.Equipment.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询设备台账失败", zap.Error(err))
		return nil, "", err
	}
	machines, err := s.repo.Machine.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询机器台账失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		s.logger.Error("创建表头样式失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// 设备 Sheet（重命名默认 Sheet1）
	if err := f.SetSheetName("Sheet1", sheetEquipment); err != nil {
		s.logger.Error("初始化 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	equipmentRows := make([][]interface{}, 0, len(equipment))
	for _, e := range equipment {
		equipmentRows = append(equipmentRows, []interface{}{
			e.Name, e.Tombo, e.Quantity, e.Model, e.Brand, e.Purpose,
			e.Status, e.Location, e.Description, deref(e.ImagemFilename),
			e.CreatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}
	if err := writeSheet(f, sheetEquipment, headerStyle, []interface{}{
		"Nome", "Tombo", "Quantidade", "Modelo", "Marca", "Finalidade",
		"Status", "Localização", "Descrição", "Imagem", "Cadastrado em",
	}, equipmentRows); err != nil {
		s.logger.Error("写入设备 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// 机器 Sheet
	if _, err := f.NewSheet(sheetMachines); err != nil {
		s.logger.Error("创建机器 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	machineRows := make([][]interface{}, 0, len(machines))
	for _, m := range machines {
		machineRows = append(machineRows, []interface{}{
			m.Name, m.Status, m.Type, m.Brand, m.Model, deref(m.SerialNumber),
			m.OS, m.InstalledSoftware, m.Licenses,
			deref(formatDate(m.LastCleaningDate)), deref(formatDate(m.LastFormatDate)),
			m.Responsible,
		})
	}
	if err := writeSheet(f, sheetMachines, headerStyle, []interface{}{
		"Nome", "Status", "Tipo", "Marca", "Modelo", "Número de série",
		"Sistema operacional", "Softwares instalados", "Licenças",
		"Última limpeza", "Última formatação", "Responsável",
	}, machineRows); err != nil {
		s.logger.Error("写入机器 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("inventario_LTIP_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// writeSheet 写入表头与数据行，表头加样式并冻结首行
func writeSheet(f *excelize.File, sheet string, headerStyle int, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return err
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// ═══════════════════════════════════════════════════════════
// MaintenanceCalendar — 导出机器维护记录为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) MaintenanceCalendar(ctx context.Context, identity *Identity) (*bytes.Buffer, string, error) {
	if d := s.guard.Authorize(ctx, identity, RolesStaff...); !d.Allowed {
		return nil, "", d.Err()
	}

	machines, err := s.repo.Machine.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询机器台账失败", zap.Error(err))
		return nil, "", err
	}

	stamp := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//LTIP//Inventario do Laboratorio//PT")
	cal.SetXWRCalName("LTIP - Manutenção de máquinas")

	for _, m := range machines {
		addMaintenanceEvent(cal, m, "cleaning", "Limpeza", m.LastCleaningDate, stamp)
		addMaintenanceEvent(cal, m, "format", "Formatação", m.LastFormatDate, stamp)
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "manutencao_LTIP.ics", nil
}

func addMaintenanceEvent(cal *ics.Calendar, m model.Machine, kind, label string, day *time.Time, stamp time.Time) {
	if day == nil {
		return
	}

	event := cal.AddEvent(fmt.Sprintf("%s-%s@ltip", m.MachineID, kind))
	event.SetDtStampTime(stamp)
	event.SetAllDayStartAt(*day)
	event.SetAllDayEndAt(day.AddDate(0, 0, 1))
	event.SetSummary(fmt.Sprintf("%s: %s", label, m.Name))

	desc := fmt.Sprintf("Status: %s", m.Status)
	if m.Responsible != "" {
		desc += fmt.Sprintf("\nResponsável: %s", m.Responsible)
	}
	if m.SerialNumber != nil {
		desc += fmt.Sprintf("\nNúmero de série: %s", *m.SerialNumber)
	}
	event.SetDescription(desc)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

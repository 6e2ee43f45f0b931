package handler

import "github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	LabInfo     *LabInfoHandler
	Equipment   *EquipmentHandler
	Machine     *MachineHandler
	Report      *ReportHandler
	File        *FileHandler
	Export      *ExportHandler
	Consistency *ConsistencyHandler
}

// NewHandler 创建 Handler 聚合
// ping 用于健康检查探测数据库
func NewHandler(svc *service.Service, ping PingFunc) *Handler {
	return &Handler{
		Health:      NewHealthHandler(ping),
		Auth:        NewAuthHandler(svc.Auth),
		LabInfo:     NewLabInfoHandler(svc.LabInfo),
		Equipment:   NewEquipmentHandler(svc.Equipment, svc.Registration),
		Machine:     NewMachineHandler(svc.Machine, svc.Registration),
		Report:      NewReportHandler(svc.Report, svc.Registration),
		File:        NewFileHandler(svc.File),
		Export:      NewExportHandler(svc.Export),
		Consistency: NewConsistencyHandler(svc.Consistency),
	}
}

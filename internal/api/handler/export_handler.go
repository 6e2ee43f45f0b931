package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportInventory 导出设备与机器台账
// GET /api/v1/equipment/export
func (h *ExportHandler) ExportInventory(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportInventory(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// MaintenanceCalendar 导出机器维护日历
// GET /api/v1/machines/maintenance.ics
func (h *ExportHandler) MaintenanceCalendar(c *gin.Context) {
	buf, filename, err := h.exportSvc.MaintenanceCalendar(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeICS, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, 12101, "生成导出文件失败")
	default:
		handleCommonError(c, err)
	}
}

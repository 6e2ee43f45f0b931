package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/response"
)

// ReportHandler 报告模块 HTTP 处理器
type ReportHandler struct {
	reportSvc   service.ReportService
	registerSvc service.RegistrationService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService, registerSvc service.RegistrationService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, registerSvc: registerSvc}
}

// List 报告列表，按上传时间倒序
// GET /api/v1/reports?page=1&page_size=20
func (h *ReportHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		handleBindError(c, err)
		return
	}

	list, total, err := h.reportSvc.List(c.Request.Context(), CurrentIdentity(c), &page)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Get 报告详情
// GET /api/v1/reports/:id
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.reportSvc.Get(c.Request.Context(), CurrentIdentity(c), c.Param("id"))
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.OK(c, report)
}

// Create 上传报告，文件字段 arquivo 必填
// POST /api/v1/reports (multipart/form-data)
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBind(&req); err != nil {
		handleBindError(c, err)
		return
	}

	upload, file, err := formUpload(c, "arquivo")
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	report, err := h.registerSvc.RegisterReport(c.Request.Context(), CurrentIdentity(c), &req, upload)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.Created(c, report)
}

// Download 下载报告文件
// GET /api/v1/reports/:id/download
func (h *ReportHandler) Download(c *gin.Context) {
	content, err := h.reportSvc.Open(c.Request.Context(), CurrentIdentity(c), c.Param("id"))
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	defer content.File.Close()

	attachment(c, content.Name)
	serveFile(c, content)
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 14001, "报告不存在")
	case errors.Is(err, service.ErrReportTitleRequired):
		response.BadRequest(c, 14002, "报告标题不能为空")
	case errors.Is(err, service.ErrReportFileRequired):
		response.BadRequest(c, 14003, "报告必须上传文件")
	default:
		handleCommonError(c, err)
	}
}

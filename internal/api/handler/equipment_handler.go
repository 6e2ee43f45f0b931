package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/response"
)

// EquipmentHandler 设备模块 HTTP 处理器
type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
	registerSvc  service.RegistrationService
}

// NewEquipmentHandler 创建 EquipmentHandler
func NewEquipmentHandler(equipmentSvc service.EquipmentService, registerSvc service.RegistrationService) *EquipmentHandler {
	return &EquipmentHandler{equipmentSvc: equipmentSvc, registerSvc: registerSvc}
}

// List 设备列表
// GET /api/v1/equipment?page=1&page_size=20
func (h *EquipmentHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		handleBindError(c, err)
		return
	}

	list, total, err := h.equipmentSvc.List(c.Request.Context(), CurrentIdentity(c), &page)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Get 设备详情
// GET /api/v1/equipment/:id
func (h *EquipmentHandler) Get(c *gin.Context) {
	equipment, err := h.equipmentSvc.Get(c.Request.Context(), CurrentIdentity(c), c.Param("id"))
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}
	response.OK(c, equipment)
}

// Create 登记设备，可选图片字段 imagem
// POST /api/v1/equipment (multipart/form-data)
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if err := c.ShouldBind(&req); err != nil {
		handleBindError(c, err)
		return
	}

	upload, file, err := formUpload(c, "imagem")
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	equipment, err := h.registerSvc.RegisterEquipment(c.Request.Context(), CurrentIdentity(c), &req, upload)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}
	response.Created(c, equipment)
}

func (h *EquipmentHandler) handleEquipmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEquipmentNotFound):
		response.NotFound(c, 12001, "设备不存在")
	case errors.Is(err, service.ErrEquipmentNameRequired):
		response.BadRequest(c, 12002, "设备名称不能为空")
	case errors.Is(err, service.ErrInvalidQuantity):
		response.BadRequest(c, 12003, "数量不能为负数")
	default:
		handleCommonError(c, err)
	}
}

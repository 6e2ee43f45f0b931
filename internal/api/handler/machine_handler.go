package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/response"
)

// MachineHandler 机器模块 HTTP 处理器
type MachineHandler struct {
	machineSvc  service.MachineService
	registerSvc service.RegistrationService
}

// NewMachineHandler 创建 MachineHandler
func NewMachineHandler(machineSvc service.MachineService, registerSvc service.RegistrationService) *MachineHandler {
	return &MachineHandler{machineSvc: machineSvc, registerSvc: registerSvc}
}

// List 机器列表
// GET /api/v1/machines?page=1&page_size=20
func (h *MachineHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		handleBindError(c, err)
		return
	}

	list, total, err := h.machineSvc.List(c.Request.Context(), CurrentIdentity(c), &page)
	if err != nil {
		h.handleMachineError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Get 机器详情
// GET /api/v1/machines/:id
func (h *MachineHandler) Get(c *gin.Context) {
	machine, err := h.machineSvc.Get(c.Request.Context(), CurrentIdentity(c), c.Param("id"))
	if err != nil {
		h.handleMachineError(c, err)
		return
	}
	response.OK(c, machine)
}

// Create 登记机器，可选图片字段 imagem
// POST /api/v1/machines (multipart/form-data)
func (h *MachineHandler) Create(c *gin.Context) {
	var req dto.CreateMachineRequest
	if err := c.ShouldBind(&req); err != nil {
		handleBindError(c, err)
		return
	}

	upload, file, err := formUpload(c, "imagem")
	if err != nil {
		h.handleMachineError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	machine, err := h.registerSvc.RegisterMachine(c.Request.Context(), CurrentIdentity(c), &req, upload)
	if err != nil {
		h.handleMachineError(c, err)
		return
	}
	response.Created(c, machine)
}

func (h *MachineHandler) handleMachineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMachineNotFound):
		response.NotFound(c, 13001, "机器不存在")
	case errors.Is(err, service.ErrMachineNameRequired):
		response.BadRequest(c, 13002, "机器名称不能为空")
	case errors.Is(err, service.ErrSerialNumberTaken):
		response.BadRequest(c, 13003, "序列号已被其他机器使用")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13004, err.Error())
	default:
		handleCommonError(c, err)
	}
}

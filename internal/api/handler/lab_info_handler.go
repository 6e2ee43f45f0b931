package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/response"
)

// LabInfoHandler 实验室信息 HTTP 处理器
type LabInfoHandler struct {
	labSvc service.LabInfoService
}

// NewLabInfoHandler 创建 LabInfoHandler
func NewLabInfoHandler(labSvc service.LabInfoService) *LabInfoHandler {
	return &LabInfoHandler{labSvc: labSvc}
}

// Get 获取实验室信息（公开）
// GET /api/v1/lab-info
func (h *LabInfoHandler) Get(c *gin.Context) {
	info, err := h.labSvc.Get(c.Request.Context())
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, info)
}

// Update 更新实验室信息
// PUT /api/v1/lab-info
func (h *LabInfoHandler) Update(c *gin.Context) {
	var req dto.UpdateLabInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	info, err := h.labSvc.Update(c.Request.Context(), CurrentIdentity(c), &req)
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, info)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/response"
)

// ConsistencyHandler 文件与记录一致性检查
type ConsistencyHandler struct {
	consistencySvc service.ConsistencyService
}

// NewConsistencyHandler 创建 ConsistencyHandler
func NewConsistencyHandler(consistencySvc service.ConsistencyService) *ConsistencyHandler {
	return &ConsistencyHandler{consistencySvc: consistencySvc}
}

// Report 孤儿文件与悬空引用报告（只读）
// GET /api/v1/admin/consistency
func (h *ConsistencyHandler) Report(c *gin.Context) {
	report, err := h.consistencySvc.Report(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, report)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc 探测数据库连通性
type PingFunc func(ctx context.Context) error

// HealthHandler 健康检查
type HealthHandler struct {
	ping PingFunc
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(ping PingFunc) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// Health 健康检查，数据库不可用时返回 503
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	database := "ok"

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
			database = "fail"
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

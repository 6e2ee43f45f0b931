package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/config"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/api/handler"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/api/middleware"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/jwt"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/redis"
)

// formOverhead multipart 表单字段与边界的额外开销
const formOverhead = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// 角色校验在 Service 层由访问守卫完成，路由只负责解析会话
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Storage.MaxUploadBytes + formOverhead))

	// ── 健康检查与指标 ──
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// rdb 为 nil 时不能直接传入接口，否则黑名单检查会对 nil 指针调用
	var blacklist middleware.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Session(jwtMgr, blacklist, logger))
	{
		// 认证模块
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow, logger), h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", h.Auth.Me)
			auth.PUT("/password", h.Auth.ChangePassword)
		}

		// 实验室信息（读取公开）
		v1.GET("/lab-info", h.LabInfo.Get)
		v1.PUT("/lab-info", h.LabInfo.Update)

		// 设备
		equipment := v1.Group("/equipment")
		{
			equipment.GET("", h.Equipment.List)
			equipment.POST("", h.Equipment.Create)
			equipment.GET("/export", h.Export.ExportInventory)
			equipment.GET("/:id", h.Equipment.Get)
		}

		// 机器
		machines := v1.Group("/machines")
		{
			machines.GET("", h.Machine.List)
			machines.POST("", h.Machine.Create)
			machines.GET("/maintenance.ics", h.Export.MaintenanceCalendar)
			machines.GET("/:id", h.Machine.Get)
		}

		// 报告
		reports := v1.Group("/reports")
		{
			reports.GET("", h.Report.List)
			reports.POST("", h.Report.Create)
			reports.GET("/:id", h.Report.Get)
			reports.GET("/:id/download", h.Report.Download)
		}

		// 上传文件
		v1.GET("/files/:ref", h.File.Serve)

		// 管理
		admin := v1.Group("/admin")
		{
			admin.GET("/consistency", h.Consistency.Report)
		}
	}

	return r
}

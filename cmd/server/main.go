package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/config"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/api/handler"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/api/router"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/repository"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/database"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/filestore"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/jwt"
	applogger "github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/logger"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml 或 ./config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("upload_dir", cfg.Storage.UploadDir),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, applogger.GormLogLevel(cfg.Log.Level), logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，Token 黑名单与登录限流将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 5. 初始化上传文件仓库
	files, err := filestore.NewOS(cfg.Storage.UploadDir, cfg.Storage.MaxUploadBytes)
	if err != nil {
		logger.Fatal("初始化上传目录失败", zap.String("dir", cfg.Storage.UploadDir), zap.Error(err))
	}

	// 6. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	svc := service.NewService(cfg, repo, files, jwtMgr, blacklist, logger)
	h := handler.NewHandler(svc, sqlDB.PingContext)

	// 8. 写入初始账号与实验室信息
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Seed.EnsureSeeded(seedCtx); err != nil {
		seedCancel()
		logger.Fatal("写入初始数据失败", zap.Error(err))
	}
	seedCancel()

	// 9. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second, // 上传大文件
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"user-service/internal/core/cache"
	"user-service/internal/core/config"
	"user-service/internal/core/logger"
	"user-service/internal/core/server"
	"user-service/internal/repo"
	"user-service/internal/transport/http/handler"
	"user-service/internal/transport/http/router"
	"user-service/internal/usecase"
	"user-service/pkg/utils"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.App.IsProd(),
		Fields:      []zap.Field{zap.String("service", cfg.App.Name), zap.String("env", cfg.App.Env)},
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.Rotate.Enable,
			Filename:   cfg.Log.Rotate.Filename,
			MaxSizeMB:  cfg.Log.Rotate.MaxSizeMB,
			MaxBackups: cfg.Log.Rotate.MaxBackups,
			MaxAgeDays: cfg.Log.Rotate.MaxAgeDays,
			Compress:   cfg.Log.Rotate.Compress,
		},
	})
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := repo.Open(ctx, cfg.Storage, log)
	if err != nil {
		cancel()
		log.Fatal("storage open", zap.Error(err))
	}
	defer store.Close()
	log.Info("storage connected", zap.String("driver", store.Driver()))

	// 自动迁移
	if cfg.Storage.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			cancel()
			log.Fatal("migrate failed", zap.Error(err))
		}
		log.Info("migrate done")
	}
	cancel()

	// 可选 redis 列表缓存；挂了会回源，所以只在就绪检查里展示，不拉低就绪
	var redisCache *cache.Cache
	if cfg.Redis.Enabled {
		redisCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		store.WithCache(redisCache, time.Duration(cfg.Redis.ListTTLSec)*time.Second, log)
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// 用例
	hasher := utils.NewBcryptHasher(cfg.Security.BcryptCost)
	users := handler.NewUserHandler(
		usecase.NewListUsers(store.Users, log),
		usecase.NewCreateUser(store.Users, hasher, log),
		usecase.NewDeleteUser(store.Users, log),
		handler.MapError(log),
	)
	health := handler.NewHealthHandler(cfg.App.Name, version, map[string]handler.Pinger{"storage": store})
	if redisCache != nil {
		health.WithOptional("redis", redisCache)
	}
	reg := router.NewRegistry(users, health)

	// 路由
	r := router.NewAPIEngine(router.Deps{
		Log:           log,
		Registry:      reg,
		Limits:        cfg.Limits,
		CORS:          cfg.CORS.AllowedOrigins,
		ExposeMetrics: !cfg.App.Admin.Enabled,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	servers := []*http.Server{srv}

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1/users"),
	)

	errCh := make(chan error, 2)
	go func() { errCh <- server.StartHTTP(srv, log) }()

	// 管理端口：/metrics + 健康检查
	if cfg.App.Admin.Enabled {
		adminSrv := server.BuildServer(
			server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port),
			router.NewAdminEngine(log, reg),
			5*time.Second, 10*time.Second, 60*time.Second,
		)
		servers = append(servers, adminSrv)
		go func() { errCh <- server.StartHTTP(adminSrv, log) }()
	}

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			log.Error("http server FAILED", zap.Error(err))
		}
	}
	shutdown := time.Duration(cfg.App.HTTP.ShutdownSec) * time.Second
	for _, s := range servers {
		if err := server.Shutdown(s, shutdown); err != nil {
			log.Warn("shutdown", zap.String("addr", s.Addr), zap.Error(err))
		}
	}
	log.Info("user api stopped gracefully")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"btcfund.com/internal/pool/config"
	poolhttp "btcfund.com/internal/pool/http"
	"btcfund.com/internal/pool/http/handler"
	"btcfund.com/internal/pool/infra/persistence"
	"btcfund.com/internal/pool/service"
	pkgconfig "btcfund.com/pkg/config"
	"btcfund.com/pkg/logger"
	"btcfund.com/pkg/orm"
	"btcfund.com/pkg/trace"
	"btcfund.com/pkg/xredis"
)

func main() {
	// 1. 加载配置 (config/pool-service.yaml，支持环境变量覆盖和热更新)
	var cfg config.Cfg
	if _, err := pkgconfig.LoadAndWatch("pool-service", &cfg); err != nil {
		panic("load config failed: " + err.Error())
	}

	// 2. 初始化基础设施
	logger.Init(cfg.Name, cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := orm.NewMySQL(&orm.Config{
		DSN:         cfg.Db.SourceName,
		MaxIdle:     cfg.Db.MaxIdleConns,
		MaxOpen:     cfg.Db.MaxOpenConns,
		MaxLifetime: cfg.Db.ConnMaxLifetimeSeconds,
	})
	if cfg.Db.AutoMigrate {
		if err := persistence.AutoMigrate(db); err != nil {
			logger.Fatal(ctx, "auto migrate failed", zap.Error(err))
		}
	}

	rdb := xredis.NewRedis(&xredis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Auth,
		DB:           cfg.Redis.Database,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	if cfg.OTel.Enabled {
		shutdown, err := trace.InitTrace(cfg.Name, cfg.OTel.Addr)
		if err != nil {
			logger.Fatal(ctx, "init tracer failed", zap.Error(err))
		}
		defer func() {
			shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			_ = shutdown(shutdownCtx)
		}()
	}

	logger.Info(ctx, "infrastructure initialized")

	// 3. 依赖注入
	repo := persistence.New(db)
	cache := service.NewRedisCache(rdb)

	balanceSvc := service.NewBalanceService(repo, cache)
	querySvc := service.NewQueryService(repo, cache)
	poolSvc := service.NewPoolService(repo, cache)
	reconcileSvc := service.NewReconcileService(repo)

	h := handler.NewPool(balanceSvc, querySvc, poolSvc, reconcileSvc)

	// 4. 启动 HTTP 服务
	srv := poolhttp.NewRouter(ctx, cfg.Addr, h)
	go func() {
		logger.Info(ctx, "http server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "http server failed", zap.Error(err))
		}
	}()

	// 5. 优雅退出
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "shutdown signal received")
	cancel()

	shutdownCtx, c := context.WithTimeout(context.Background(), 10*time.Second)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http shutdown error", zap.Error(err))
	}
}

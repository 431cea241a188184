// VisitCare 上门护理派单服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/visitcare/internal/cache"
	"github.com/paiban/visitcare/internal/config"
	"github.com/paiban/visitcare/internal/database"
	"github.com/paiban/visitcare/internal/handler"
	"github.com/paiban/visitcare/internal/metrics"
	"github.com/paiban/visitcare/internal/middleware"
	"github.com/paiban/visitcare/internal/optimizer"
	"github.com/paiban/visitcare/internal/repository"
	"github.com/paiban/visitcare/internal/service"
	"github.com/paiban/visitcare/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:      cfg.App.LogLevel,
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("VisitCare 派单服务启动中")

	// ========================================
	// 存储
	// ========================================

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("连接数据库失败")
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("数据库迁移失败")
	}

	deps := service.Deps{
		Orders:    repository.NewOrderRepository(db),
		Reference: repository.NewReferenceRepository(db),
		Runs:      repository.NewOptimizationRunRepository(db),
		Optimizer: optimizer.New(&cfg.Optimizer),
	}
	checks := map[string]handler.Pinger{"database": db.Health}

	var stream *cache.EventStream
	if cfg.Redis.Enabled {
		rdb := cache.NewClient(&cfg.Redis)
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := cache.Ping(ctx, rdb)
		cancel()
		if err != nil {
			// 缓存不可用不影响核心功能
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("Redis 连接失败，缓存与事件刷新停用")
		} else {
			stream = cache.NewEventStream(rdb, cfg.Redis.EventStream, cfg.Redis.ConsumerGroup)
			deps.Findings = cache.NewFindingsStore(rdb, cfg.Redis.KeyPrefix, cfg.Redis.FindingsTTL)
			deps.TravelTimes = cache.NewTravelTimeStore(rdb, cfg.Redis.KeyPrefix)
			deps.Events = stream
			checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, rdb) }
		}
	}

	svc := service.New(deps)

	// ========================================
	// 后台任务
	// ========================================

	bgCtx, stopBackground := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	if stream != nil {
		refresher := service.NewAuditRefresher(svc, stream, "refresher-"+uuid.NewString()[:8])
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := refresher.Run(bgCtx); err != nil {
				logger.Error().Err(err).Msg("检查刷新器退出")
			}
		}()
	}

	// ========================================
	// HTTP
	// ========================================

	mux := http.NewServeMux()
	handler.NewSystem(handler.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}, checks).Register(mux)
	handler.New(svc).Register(mux)
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, metrics.Handler())
	}

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Recovery,
		middleware.RateLimit(rateLimiter(cfg.API.RateLimit)),
	}
	if cfg.API.CORS.Enabled {
		mws = append(mws, middleware.CORS(cfg.API.CORS.Origins))
	}
	mws = append(mws, middleware.Logging)

	// 中间件执行顺序：requestID -> recovery -> rateLimit -> cors -> logging -> handler
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      middleware.Chain(mux, mws...),
		ReadTimeout:  cfg.API.Timeout,
		WriteTimeout: cfg.Optimizer.Timeout + 30*time.Second, // 优化请求同步等待
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	stopBackground()
	wg.Wait()

	logger.Info().Msg("服务器已关闭")
}

func rateLimiter(qps int) *middleware.RateLimiter {
	if qps <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(float64(qps))
}

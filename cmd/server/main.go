package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"content-api/internal/auth"
	"content-api/internal/config"
	"content-api/internal/db"
	"content-api/internal/repository"
	"content-api/internal/server"
	"content-api/internal/service"
)

func main() {
	// 0. Load environment variables from .env file, then config
	_ = godotenv.Load()
	cfg := config.Load()

	// 1. Logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	// 2. Database connection pool
	pool, err := db.NewPostgresPool(cfg.DB)
	if err != nil {
		sugar.Fatalw("connect to database failed", "error", err)
	}
	defer pool.Close()
	sugar.Infow("connected to postgres", "host", cfg.DB.Host, "db", cfg.DB.DBName)

	// 3. Redis (token blacklist)
	redisClient, err := db.NewRedisClient(cfg.Redis)
	if err != nil {
		sugar.Fatalw("connect to redis failed", "error", err)
	}
	defer redisClient.Close()
	sugar.Infow("connected to redis", "addr", cfg.Redis.Addr)

	// 4. Repositories and core service
	articleRepo := repository.NewArticlePostgresRepository(pool)
	users := repository.NewUserPostgresDirectory(pool)
	svc := service.NewArticleService(articleRepo, users, sugar)

	// 5. Auth guard and HTTP adapter
	guard := auth.NewGuard(cfg.JWTSecret, redisClient)
	srv := server.New(svc, guard, sugar, map[string]server.HealthCheck{
		"postgres": pool.Ping,
		"redis":    redisClient.HealthCheck,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Routes(),
	}

	// 6. Start server in goroutine to handle graceful shutdown
	go func() {
		sugar.Infow("content api listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("serve failed", "error", err)
		}
	}()

	// 7. Wait for shutdown signal and drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	sugar.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("shutdown failed", "error", err)
	}
	sugar.Info("server stopped gracefully")
}

// Package main запускает HTTP-сервер сервиса printflow.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/printflow/internal/authz"
	"github.com/mmeshcher/printflow/internal/config"
	"github.com/mmeshcher/printflow/internal/handler"
	"github.com/mmeshcher/printflow/internal/repository"
	"github.com/mmeshcher/printflow/internal/service"
	"github.com/mmeshcher/printflow/internal/token"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Parse()
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Sugar().Fatalw("configuration error", "error", err.Error())
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		sugar.Fatalw("access policy initialization error", "error", err.Error())
	}

	svc := service.NewService(repo, cfg, logger, token.NewManager(cfg), enforcer)
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.EnsureAdmin(ctx); err != nil {
		sugar.Fatalw("admin bootstrap error", "error", err.Error())
	}

	h := handler.NewHandler(svc, logger, cfg, enforcer)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting printflow server",
			"addr", cfg.RunAddress,
			"environment", cfg.Environment,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg.Level = level

	return zcfg.Build()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-api/api/swagger"
	"github.com/noah-isme/sma-roster-api/internal/handler"
	"github.com/noah-isme/sma-roster-api/internal/repository"
	"github.com/noah-isme/sma-roster-api/internal/service"
	"github.com/noah-isme/sma-roster-api/pkg/config"
	"github.com/noah-isme/sma-roster-api/pkg/database"
	"github.com/noah-isme/sma-roster-api/pkg/logger"
	"github.com/noah-isme/sma-roster-api/pkg/obfuscation"
)

// @title SMA Roster API
// @version 1.0.0
// @description Student and instructor roster over a shared person table
// @BasePath /api
// @schemes http

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
		_ = logr.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	codec, err := obfuscation.New(cfg.Obfuscation.Secret)
	if err != nil {
		return fmt.Errorf("init obfuscation: %w", err)
	}

	var metrics *service.MetricsService
	opts := repository.CompositeOptions{OperationTimeout: cfg.Database.OperationTimeout}
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
		opts.Observer = metrics
	}

	var exports *service.ExportService
	if cfg.Exports.Enabled {
		exports = service.NewExportService(logr, nil, nil, nil)
	}

	provider := database.NewProvider(db, cfg.Database.AcquireTimeout)
	validate := validator.New()

	students := service.NewStudentService(repository.NewStudentRepository(provider, codec, opts), validate, exports, logr)
	instructors := service.NewInstructorService(repository.NewInstructorRepository(provider, codec, opts), validate, exports, logr)

	swagger.SwaggerInfo.BasePath = cfg.APIPrefix

	router := newRouter(cfg, logr, routes{
		students:    handler.NewStudentHandler(students),
		instructors: handler.NewInstructorHandler(instructors),
		metrics:     handler.NewMetricsHandler(metrics, provider),
	}, metrics)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("api_prefix", cfg.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logr.Info("server stopped")
	return nil
}

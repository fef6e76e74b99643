package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/handler"
	"github.com/Dan9191/loan-service/internal/integrations/cbr"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/Dan9191/loan-service/internal/scheduler"
	"github.com/Dan9191/loan-service/internal/service"
	"github.com/Dan9191/loan-service/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var store service.Store
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		store = repository.NewMemoryRepository()
	default:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		store = repository.NewRepository(db)
	}

	// Key rate cache
	var cache repository.Cache = repository.NewMemoryCache()
	if cfg.RedisAddr != "" {
		redisCache, err := repository.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPass)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache
	}

	// Initialize layers
	cbrClient := cbr.NewCBRClient(cfg, cache, logger)
	mailer := email.NewSender(cfg, logger)
	svc, err := service.NewService(store, logger, cfg, mailer, cbrClient)
	if err != nil {
		logger.Fatalf("Failed to initialize service: %v", err)
	}
	if err := svc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatalf("Failed to create admin user: %v", err)
	}

	reminder, err := scheduler.NewReminder(cfg.ReminderSchedule, svc, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize scheduler: %v", err)
	}
	reminder.Start()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(handler.NewHandler(svc, logger), svc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	if err := reminder.Stop(shutdownCtx); err != nil {
		logger.Errorf("Scheduler shutdown failed: %v", err)
	}
}

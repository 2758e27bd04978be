package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/creditreport/src/config"
	"github.com/username/creditreport/src/database"
	"github.com/username/creditreport/src/handlers"
	"github.com/username/creditreport/src/logger"
	"github.com/username/creditreport/src/model"
	"github.com/username/creditreport/src/parsers/experian"
	"github.com/username/creditreport/src/security"
	"github.com/username/creditreport/src/services"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Credit report backend server starting...")

	if err := config.Cfg.Validate(); err != nil {
		logger.L.Error("Configuration invalid", "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations()
	defer database.DB.Close()

	reportCache := cache.New(config.Cfg.ReportCacheTTL, services.CacheCleanupInterval)

	reportService := services.NewReportService(
		experian.NewExtractor(),
		model.NewReportStore(database.DB),
		reportCache,
		config.Cfg.MaxUploadSizeBytes,
	)
	reportHandler := handlers.NewReportHandler(reportService, config.Cfg.MaxUploadSizeBytes)

	routerCfg := handlers.RouterConfig{
		AllowedOrigins:     config.Cfg.AllowedOrigins,
		RateLimitPerSecond: config.Cfg.RateLimitPerSecond,
		RateLimitBurst:     config.Cfg.RateLimitBurst,
		StaticDir:          config.Cfg.StaticDir,
	}
	if config.Cfg.AuthEnabled() {
		routerCfg.AuthService = security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.TokenExpiry)
		logger.L.Info("Bearer authentication enabled for /api")
	} else {
		logger.L.Warn("JWT_SECRET not set, API is open")
	}

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handlers.NewRouter(reportHandler, routerCfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.L.Info("Shutdown signal received, draining connections...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
	}
	logger.L.Info("Server stopped")
}

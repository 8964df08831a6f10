package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appsuite-backend/internal/app"
	"appsuite-backend/internal/config"
	"appsuite-backend/internal/jobs"
	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/mail"
	"appsuite-backend/internal/repository/sqlite"
	"appsuite-backend/internal/scheduler"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file (empty to use the environment only)")
	flag.Parse()

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting app suite backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "base_path", cfg.Server.BasePath)
	logger.Info("Database configuration", "dir", cfg.Database.Dir, "busy_timeout_ms", cfg.Database.BusyTimeoutMS)
	logger.Info("Mail configuration", "provider", cfg.Mail.Provider, "host", cfg.Mail.Host, "port", cfg.Mail.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender, err := mail.NewFromConfig(cfg.Mail)
	if err != nil {
		log.Fatalf("Failed to configure mail: %v", err)
	}

	opener := sqlite.DirOpener(ctx, cfg.Database.Dir, cfg.Database.BusyTimeoutMS)
	a := app.Build(cfg, opener, sender, clockwork.NewRealClock())
	defer a.Close()

	for _, failed := range a.Report.Failed() {
		logger.Error("Module unavailable", "app", failed.App, "module", failed.Module, "error", failed.Err)
	}
	if a.Report.Mounted() == 0 {
		logger.Error("No modules mounted, refusing to start")
		os.Exit(1)
	}
	logger.Info("Modules mounted", "mounted", a.Report.Mounted(), "failed", len(a.Report.Failed()))

	// Notification retries run in-process when enabled
	var cronScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled && a.Waitlist != nil {
		cronScheduler = scheduler.NewScheduler(jobs.NewJobRunner(a.Waitlist, cfg))
		cronScheduler.Start()
	}

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	logger.Info("Server stopped. Goodbye!")
}

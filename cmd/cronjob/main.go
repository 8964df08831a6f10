package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"appsuite-backend/internal/config"
	"appsuite-backend/internal/jobs"
	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/mail"
	"appsuite-backend/internal/repository/sqlite"
	"appsuite-backend/internal/scheduler"
	"appsuite-backend/internal/service"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'retry-notifications', 'all')")
	flag.Parse()

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
	logger.Info("Starting notification retry runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	db, err := sqlite.Open(context.Background(), "safoai", cfg.DatabasePath("safoai"), cfg.Database.BusyTimeoutMS)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Initialize Services
	sender, err := mail.NewFromConfig(cfg.Mail)
	if err != nil {
		log.Fatalf("Failed to configure mail: %v", err)
	}
	store := sqlite.NewSafoaiStore(db)
	waitlist := service.NewWaitlistService(
		store.WaitlistRepository,
		store.NotificationRepository,
		service.NewEmailService(sender),
		clockwork.NewRealClock(),
		service.NotificationPolicy(cfg.Waitlist.NotificationPolicy),
		cfg.Waitlist.MaxNotificationAttempts,
	)

	jobRunner := jobs.NewJobRunner(waitlist, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "retry-notifications":
		jobRunner.RetryNotifications()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - retry-notifications\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}

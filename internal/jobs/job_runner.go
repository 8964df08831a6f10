package jobs

import (
	"time"

	"appsuite-backend/internal/config"
	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/service"
)

const (
	retryBatchSize = 50
	jobTimeout     = 2 * time.Minute
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	waitlist service.WaitlistService
	config   *config.Config
}

func NewJobRunner(waitlist service.WaitlistService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		waitlist: waitlist,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.RetryNotifications()
}

package jobs

import (
	"context"

	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/service"
)

// RetryNotifications resends waitlist emails queued in the outbox
func (jr *JobRunner) RetryNotifications() {
	jr.runWithRecovery("RetryNotifications", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := jr.retryNotifications(ctx); err != nil {
			logger.Error("Failed to retry notifications", "error", err)
		}
	})
}

func (jr *JobRunner) retryNotifications(ctx context.Context) (*service.RetryReport, error) {
	if jr.waitlist == nil {
		logger.Warn("Waitlist module unavailable, skipping notification retry")
		return &service.RetryReport{}, nil
	}

	report := &service.RetryReport{}
	for {
		batch, err := jr.waitlist.RetryNotifications(ctx, retryBatchSize)
		if batch != nil {
			report.Attempted += batch.Attempted
			report.Sent += batch.Sent
			report.Pending += batch.Pending
			report.Failed += batch.Failed
			report.Skipped += batch.Skipped
		}
		if err != nil {
			return report, err
		}
		// still-pending or contended rows would be picked up again; stop after a short batch
		if batch.Attempted < retryBatchSize || batch.Pending > 0 || batch.Skipped > 0 {
			break
		}
	}

	logger.Info("Notification retry summary",
		"attempted", report.Attempted, "sent", report.Sent, "pending", report.Pending, "failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}

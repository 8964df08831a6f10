package scheduler

import (
	"testing"

	"appsuite-backend/internal/config"
	"appsuite-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
)

func TestNewScheduler_RegistersRetryJob(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{Enabled: true, RetryNotifications: "0 */5 * * * *"}}
	s := NewScheduler(jobs.NewJobRunner(nil, cfg))
	assert.True(t, s.IsRunning())
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{Enabled: true, RetryNotifications: "every now and then"}}
	s := NewScheduler(jobs.NewJobRunner(nil, cfg))
	assert.False(t, s.IsRunning())
}

func TestScheduler_StartStop(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{Enabled: true, RetryNotifications: "0 0 0 1 1 *"}}
	s := NewScheduler(jobs.NewJobRunner(nil, cfg))
	s.Start()
	s.Stop()
}

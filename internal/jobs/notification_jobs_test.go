package jobs

import (
	"context"
	"errors"
	"testing"

	"appsuite-backend/internal/config"
	"appsuite-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWaitlist struct {
	service.WaitlistService
	mock.Mock
}

func (m *mockWaitlist) RetryNotifications(ctx context.Context, limit int) (*service.RetryReport, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RetryReport), args.Error(1)
}

func TestRetryNotifications_DrainsFullBatches(t *testing.T) {
	wl := new(mockWaitlist)
	jr := NewJobRunner(wl, &config.Config{})
	ctx := context.Background()

	wl.On("RetryNotifications", ctx, retryBatchSize).Return(&service.RetryReport{Attempted: retryBatchSize, Sent: retryBatchSize}, nil).Once()
	wl.On("RetryNotifications", ctx, retryBatchSize).Return(&service.RetryReport{Attempted: 3, Sent: 2, Failed: 1}, nil).Once()

	report, err := jr.retryNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, retryBatchSize+3, report.Attempted)
	assert.Equal(t, retryBatchSize+2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	wl.AssertExpectations(t)
}

func TestRetryNotifications_StopsWhenRowsStayPending(t *testing.T) {
	wl := new(mockWaitlist)
	jr := NewJobRunner(wl, &config.Config{})
	ctx := context.Background()

	wl.On("RetryNotifications", ctx, retryBatchSize).Return(&service.RetryReport{Attempted: retryBatchSize, Pending: retryBatchSize}, nil).Once()

	report, err := jr.retryNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, retryBatchSize, report.Pending)
	wl.AssertNumberOfCalls(t, "RetryNotifications", 1)
}

func TestRetryNotifications_StopsWhenAnotherRunnerClaimsRows(t *testing.T) {
	wl := new(mockWaitlist)
	jr := NewJobRunner(wl, &config.Config{})
	ctx := context.Background()

	wl.On("RetryNotifications", ctx, retryBatchSize).Return(&service.RetryReport{Attempted: retryBatchSize, Sent: retryBatchSize - 1, Skipped: 1}, nil).Once()

	report, err := jr.retryNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	wl.AssertNumberOfCalls(t, "RetryNotifications", 1)
}

func TestRetryNotifications_PropagatesError(t *testing.T) {
	wl := new(mockWaitlist)
	jr := NewJobRunner(wl, &config.Config{})
	ctx := context.Background()

	wl.On("RetryNotifications", ctx, retryBatchSize).Return(nil, errors.New("database is locked")).Once()

	_, err := jr.retryNotifications(ctx)
	assert.EqualError(t, err, "database is locked")
}

func TestRetryNotifications_WithoutWaitlist(t *testing.T) {
	jr := NewJobRunner(nil, &config.Config{})
	report, err := jr.retryNotifications(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Attempted)
}

func TestRunWithRecovery_SwallowsPanics(t *testing.T) {
	jr := NewJobRunner(nil, &config.Config{})
	assert.NotPanics(t, func() {
		jr.runWithRecovery("boom", func() { panic("boom") })
	})
}

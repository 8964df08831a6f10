package http_test

import (
	"context"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockWaitlistService
type MockWaitlistService struct {
	mock.Mock
}

func (m *MockWaitlistService) Join(ctx context.Context, email string) (*service.Transition, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Transition), args.Error(1)
}
func (m *MockWaitlistService) List(ctx context.Context, status string) ([]domain.WaitlistEntry, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WaitlistEntry), args.Error(1)
}
func (m *MockWaitlistService) Invite(ctx context.Context, id int64, message string) (*service.Transition, error) {
	args := m.Called(ctx, id, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Transition), args.Error(1)
}
func (m *MockWaitlistService) MarkJoined(ctx context.Context, id int64) (*service.Transition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Transition), args.Error(1)
}
func (m *MockWaitlistService) Remove(ctx context.Context, id int64) (*domain.WaitlistEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WaitlistEntry), args.Error(1)
}
func (m *MockWaitlistService) Stats(ctx context.Context) (*domain.WaitlistStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WaitlistStats), args.Error(1)
}
func (m *MockWaitlistService) ListNotifications(ctx context.Context, status string) ([]domain.Notification, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *MockWaitlistService) RetryNotifications(ctx context.Context, limit int) (*service.RetryReport, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RetryReport), args.Error(1)
}

// MockAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}
func (m *MockAuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

package repository

import (
	"context"
	"errors"
	"time"

	"appsuite-backend/internal/domain"
)

// ErrNotFound is returned by Get* lookups and by mutations that matched no row.
var ErrNotFound = errors.New("record not found")

// ConflictError reports a unique constraint violation raised by the store.
type ConflictError struct {
	Table string
	Err   error
}

func (e *ConflictError) Error() string {
	return "duplicate value in " + e.Table
}

func (e *ConflictError) Unwrap() error { return e.Err }

type WaitlistRepository interface {
	Create(ctx context.Context, entry *domain.WaitlistEntry) error
	GetByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error)
	GetByEmail(ctx context.Context, email string) (*domain.WaitlistEntry, error)
	List(ctx context.Context, status domain.WaitlistStatus) ([]domain.WaitlistEntry, error)
	MarkInvited(ctx context.Context, id int64, at time.Time) error
	MarkJoined(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*domain.WaitlistStats, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, status domain.NotificationStatus) ([]domain.Notification, error)
	ListRetryable(ctx context.Context, maxAttempts, limit int) ([]domain.Notification, error)
	// ClaimAttempt bumps attempts from the given value to the next one on a
	// pending row. It reports false when another worker got there first.
	ClaimAttempt(ctx context.Context, id int64, attempts int, at time.Time) (bool, error)
	RecordAttempt(ctx context.Context, note *domain.Notification) error
	// CancelForEntry fails every pending notification of a waitlist entry
	CancelForEntry(ctx context.Context, entryID int64, reason string, at time.Time) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

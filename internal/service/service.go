package service

import (
	"context"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/mail"
)

// NotificationOutcome reports what happened to the email a waitlist
// transition triggers.
type NotificationOutcome string

const (
	NotificationSent   NotificationOutcome = "sent"
	NotificationQueued NotificationOutcome = "queued"
	NotificationFailed NotificationOutcome = "failed"
)

// NotificationPolicy decides whether a failed email aborts the transition
type NotificationPolicy string

const (
	// PolicyOutbox commits the state change first and queues failed mail for retry
	PolicyOutbox NotificationPolicy = "outbox"
	// PolicyStrict sends before committing join and invite, and aborts when the send fails
	PolicyStrict NotificationPolicy = "strict"
)

type Transition struct {
	Entry        *domain.WaitlistEntry
	Notification NotificationOutcome
}

type RetryReport struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
	// Skipped rows were claimed by a concurrent retry run
	Skipped int `json:"skipped"`
}

type RegisterInput struct {
	Name       string
	Role       string
	Department string
	Email      string
	Phone      string
	Password   string
	CreatedBy  *int64
}

type WaitlistService interface {
	Join(ctx context.Context, email string) (*Transition, error)
	List(ctx context.Context, status string) ([]domain.WaitlistEntry, error)
	Invite(ctx context.Context, id int64, message string) (*Transition, error)
	MarkJoined(ctx context.Context, id int64) (*Transition, error)
	Remove(ctx context.Context, id int64) (*domain.WaitlistEntry, error)
	Stats(ctx context.Context) (*domain.WaitlistStats, error)
	ListNotifications(ctx context.Context, status string) ([]domain.Notification, error)
	RetryNotifications(ctx context.Context, limit int) (*RetryReport, error)
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error) // user, access token
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type EmailService interface {
	WelcomeMessage(email string) (mail.Message, error)
	InvitationMessage(email, message string) (mail.Message, error)
	JoinedMessage(email string) (mail.Message, error)
	Send(ctx context.Context, msg mail.Message) error
}

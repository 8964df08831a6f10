// Package mail delivers transactional email through an SMTP relay or the
// SendGrid API.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appsuite-backend/internal/config"
)

// ErrNotConfigured is returned by senders missing credentials.
var ErrNotConfigured = errors.New("mail relay not configured")

// Message is a single transactional email. HTML is required; Text is sent
// as the plain-text alternative when set.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message or returns the relay's error
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// NewFromConfig builds the configured transport wrapped in a circuit breaker
func NewFromConfig(cfg config.MailConfig) (Sender, error) {
	var transport Sender
	switch cfg.Provider {
	case "smtp":
		transport = NewSMTPSender(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.From, cfg.FromName)
	case "sendgrid":
		transport = NewSendGridSender(cfg.SendGridAPIKey, cfg.From, cfg.FromName)
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", cfg.Provider)
	}
	return NewBreakerSender(transport, cfg.Provider, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
}

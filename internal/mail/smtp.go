package mail

import (
	"context"
	"fmt"

	"appsuite-backend/internal/logger"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender submits mail to a relay. Port 465 uses implicit TLS; other
// ports upgrade with STARTTLS when the server offers it.
type SMTPSender struct {
	from     string
	fromName string
	username string
	dialer   dialer
}

func NewSMTPSender(host string, port int, username, password, from, fromName string) *SMTPSender {
	if from == "" {
		from = username
	}
	return &SMTPSender{
		from:     from,
		fromName: fromName,
		username: username,
		dialer:   gomail.NewDialer(host, port, username, password),
	}
}

func (s *SMTPSender) buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)

	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	return m
}

// Send delivers msg. gomail has no context support, so the dial runs in a
// goroutine and Send returns early when ctx is done.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.username == "" || s.from == "" {
		return ErrNotConfigured
	}

	logger.ExternalServiceCall("smtp", "DialAndSend", "to", msg.To, "subject", msg.Subject)

	done := make(chan error, 1)
	m := s.buildMessage(msg)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			err = fmt.Errorf("failed to send email via smtp: %w", err)
		}
		logger.ExternalServiceResult("smtp", "DialAndSend", err, "to", msg.To)
		return err
	case <-ctx.Done():
		err := fmt.Errorf("smtp send aborted: %w", ctx.Err())
		logger.ExternalServiceResult("smtp", "DialAndSend", err, "to", msg.To)
		return err
	}
}

package mail

import (
	"context"
	"fmt"

	"appsuite-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers mail through the SendGrid v3 API
type SendGridSender struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGridSender(apiKey, from, fromName string) *SendGridSender {
	return &SendGridSender{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" || s.from == "" {
		return ErrNotConfigured
	}

	from := sgmail.NewEmail(s.fromName, s.from)
	to := sgmail.NewEmail(msg.ToName, msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	logger.ExternalServiceCall("sendgrid", "Send", "to", msg.To, "subject", msg.Subject)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		err = fmt.Errorf("failed to send email via sendgrid: %w", err)
		logger.ExternalServiceResult("sendgrid", "Send", err, "to", msg.To)
		return err
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "Send", err, "to", msg.To)
		return err
	}

	logger.ExternalServiceResult("sendgrid", "Send", nil, "to", msg.To, "status", response.StatusCode)
	return nil
}

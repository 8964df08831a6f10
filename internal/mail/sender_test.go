package mail

import (
	"testing"

	"appsuite-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig(t *testing.T) {
	s, err := NewFromConfig(config.MailConfig{Provider: "smtp", Host: "smtp.gmail.com", Port: 465, User: "a@x.com", TimeoutSeconds: 5})
	require.NoError(t, err)
	b, ok := s.(*BreakerSender)
	require.True(t, ok)
	assert.IsType(t, &SMTPSender{}, b.next)

	s, err = NewFromConfig(config.MailConfig{Provider: "sendgrid", SendGridAPIKey: "SG.key", From: "a@x.com"})
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, s.(*BreakerSender).next)

	_, err = NewFromConfig(config.MailConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

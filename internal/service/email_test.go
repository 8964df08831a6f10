package service_test

import (
	"testing"

	"appsuite-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailService_Messages(t *testing.T) {
	svc := service.NewEmailService(&recordingSender{})

	welcome, err := svc.WelcomeMessage("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", welcome.To)
	assert.Contains(t, welcome.HTML, "Safo AI")
	assert.NotEmpty(t, welcome.Text)

	joined, err := svc.JoinedMessage("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, service.SubjectJoined, joined.Subject)
	assert.Contains(t, joined.HTML, "Your account has been activated!")

	invite, err := svc.InvitationMessage("a@x.com", "line one\r\n\r\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, invite.HTML, "<p>line one</p>")
	assert.NotContains(t, invite.HTML, "<script>")
	assert.Contains(t, invite.Text, "line one")
}

func TestValidEmail(t *testing.T) {
	assert.True(t, service.ValidEmail("first.last+tag@sub.example.io"))
	assert.False(t, service.ValidEmail("first.last@localhost"))
	assert.False(t, service.ValidEmail(""))
	assert.Equal(t, "a@x.com", service.NormalizeEmail("  A@X.COM "))
}

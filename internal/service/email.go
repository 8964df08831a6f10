package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/mail"
)

const (
	SubjectWelcome    = "Welcome to Our Waitlist"
	SubjectInvitation = "You're Invited!"
	SubjectJoined     = "Welcome Aboard!"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type emailData struct {
	Greeting   string
	Paragraphs []string
}

type emailService struct {
	sender mail.Sender
}

func NewEmailService(sender mail.Sender) EmailService {
	return &emailService{sender: sender}
}

func (s *emailService) WelcomeMessage(email string) (mail.Message, error) {
	html, err := render("welcome.html", emailData{Greeting: greeting(email)})
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		To:      email,
		Subject: SubjectWelcome,
		HTML:    html,
		Text:    "Thank you for joining the Safo AI waitlist. We'll notify you soon with your early access link.\n\nThe Safo Team",
	}, nil
}

// InvitationMessage renders the admin's free-text message. Blank lines split
// paragraphs; the text is escaped, never interpreted as markup.
func (s *emailService) InvitationMessage(email, message string) (mail.Message, error) {
	var paragraphs []string
	for _, p := range strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	html, err := render("invitation.html", emailData{Greeting: "there", Paragraphs: paragraphs})
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		To:      email,
		Subject: SubjectInvitation,
		HTML:    html,
		Text:    "Hi there,\n\n" + strings.TrimSpace(message) + "\n\nBest regards,\nThe Team",
	}, nil
}

func (s *emailService) JoinedMessage(email string) (mail.Message, error) {
	html, err := render("joined.html", emailData{Greeting: "there"})
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		To:      email,
		Subject: SubjectJoined,
		HTML:    html,
		Text:    "Hi there,\n\nYour account has been activated! You can now access our platform.\n\nBest regards,\nThe Team",
	}, nil
}

func (s *emailService) Send(ctx context.Context, msg mail.Message) error {
	if err := s.sender.Send(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to send email", "to", msg.To, "subject", msg.Subject, "error", err)
		return err
	}
	logger.InfoContext(ctx, "Email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func greeting(email string) string {
	if email == "" {
		return "there"
	}
	return email
}

func render(name string, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/mail"
	"appsuite-backend/internal/metrics"
	"appsuite-backend/internal/repository"

	"github.com/jonboulle/clockwork"
)

const defaultRetryBatch = 50

type waitlistService struct {
	entries     repository.WaitlistRepository
	outbox      repository.NotificationRepository
	email       EmailService
	clock       clockwork.Clock
	policy      NotificationPolicy
	maxAttempts int
}

func NewWaitlistService(entries repository.WaitlistRepository, outbox repository.NotificationRepository, email EmailService, clock clockwork.Clock, policy NotificationPolicy, maxAttempts int) WaitlistService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if policy == "" {
		policy = PolicyOutbox
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &waitlistService{
		entries:     entries,
		outbox:      outbox,
		email:       email,
		clock:       clock,
		policy:      policy,
		maxAttempts: maxAttempts,
	}
}

func (s *waitlistService) Join(ctx context.Context, rawEmail string) (*Transition, error) {
	email := NormalizeEmail(rawEmail)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if _, err := s.entries.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	msg, err := s.email.WelcomeMessage(email)
	if err != nil {
		return nil, err
	}

	entry := &domain.WaitlistEntry{
		Email:     email,
		Status:    domain.WaitlistStatusPending,
		CreatedAt: s.clock.Now().UTC(),
	}

	if s.policy == PolicyStrict {
		if err := s.email.Send(ctx, msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
		}
		if err := s.create(ctx, entry); err != nil {
			return nil, err
		}
		metrics.WaitlistTransitionsTotal.WithLabelValues("join").Inc()
		return &Transition{Entry: entry, Notification: NotificationSent}, nil
	}

	if err := s.create(ctx, entry); err != nil {
		return nil, err
	}
	metrics.WaitlistTransitionsTotal.WithLabelValues("join").Inc()
	return &Transition{Entry: entry, Notification: s.deliver(ctx, domain.NotificationKindWelcome, entry.ID, msg)}, nil
}

func (s *waitlistService) create(ctx context.Context, entry *domain.WaitlistEntry) error {
	err := s.entries.Create(ctx, entry)
	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *waitlistService) List(ctx context.Context, status string) ([]domain.WaitlistEntry, error) {
	filter := domain.WaitlistStatus(strings.TrimSpace(status))
	if filter != "" && !filter.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.entries.List(ctx, filter)
}

func (s *waitlistService) Invite(ctx context.Context, id int64, message string) (*Transition, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrMessageRequired
	}
	entry, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	msg, err := s.email.InvitationMessage(entry.Email, message)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if s.policy == PolicyStrict {
		if err := s.email.Send(ctx, msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
		}
		if err := s.markInvited(ctx, entry, now); err != nil {
			return nil, err
		}
		return &Transition{Entry: entry, Notification: NotificationSent}, nil
	}

	if err := s.markInvited(ctx, entry, now); err != nil {
		return nil, err
	}
	return &Transition{Entry: entry, Notification: s.deliver(ctx, domain.NotificationKindInvitation, entry.ID, msg)}, nil
}

func (s *waitlistService) markInvited(ctx context.Context, entry *domain.WaitlistEntry, now time.Time) error {
	if err := s.entries.MarkInvited(ctx, entry.ID, now); err != nil {
		return entryErr(err)
	}
	entry.Status = domain.WaitlistStatusInvited
	entry.InvitedAt = &now
	metrics.WaitlistTransitionsTotal.WithLabelValues("invite").Inc()
	return nil
}

// MarkJoined commits before notifying under both policies; a failed
// confirmation email never rolls the entry back.
func (s *waitlistService) MarkJoined(ctx context.Context, id int64) (*Transition, error) {
	entry, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if err := s.entries.MarkJoined(ctx, id, now); err != nil {
		return nil, entryErr(err)
	}
	entry.Status = domain.WaitlistStatusJoined
	entry.JoinedAt = &now
	metrics.WaitlistTransitionsTotal.WithLabelValues("mark_joined").Inc()

	msg, err := s.email.JoinedMessage(entry.Email)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to render joined email", "entry_id", id, "error", err)
		return &Transition{Entry: entry, Notification: NotificationFailed}, nil
	}

	if s.policy == PolicyStrict {
		outcome := NotificationSent
		if err := s.email.Send(ctx, msg); err != nil {
			outcome = NotificationFailed
		}
		return &Transition{Entry: entry, Notification: outcome}, nil
	}
	return &Transition{Entry: entry, Notification: s.deliver(ctx, domain.NotificationKindJoined, entry.ID, msg)}, nil
}

func (s *waitlistService) Remove(ctx context.Context, id int64) (*domain.WaitlistEntry, error) {
	entry, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	// queued mail must not reach someone who was removed
	cancelled, err := s.outbox.CancelForEntry(ctx, id, "waitlist entry removed", s.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return nil, entryErr(err)
	}
	if cancelled > 0 {
		logger.InfoContext(ctx, "Cancelled queued notifications", "entry_id", id, "count", cancelled)
	}
	metrics.WaitlistTransitionsTotal.WithLabelValues("remove").Inc()
	return entry, nil
}

func (s *waitlistService) Stats(ctx context.Context) (*domain.WaitlistStats, error) {
	return s.entries.Stats(ctx)
}

func (s *waitlistService) ListNotifications(ctx context.Context, status string) ([]domain.Notification, error) {
	filter := domain.NotificationStatus(strings.TrimSpace(status))
	if filter != "" && !filter.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.outbox.List(ctx, filter)
}

// RetryNotifications resends pending outbox records, oldest first. A record
// that reaches the attempt limit without success is marked failed.
func (s *waitlistService) RetryNotifications(ctx context.Context, limit int) (*RetryReport, error) {
	if limit <= 0 {
		limit = defaultRetryBatch
	}
	pending, err := s.outbox.ListRetryable(ctx, s.maxAttempts, limit)
	if err != nil {
		return nil, err
	}

	report := &RetryReport{}
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		n := &pending[i]
		report.Attempted++

		now := s.clock.Now().UTC()
		claimed, err := s.outbox.ClaimAttempt(ctx, n.ID, n.Attempts, now)
		if err != nil {
			return report, err
		}
		if !claimed {
			report.Skipped++
			continue
		}
		n.Attempts++
		n.UpdatedAt = now

		sendErr := s.email.Send(ctx, mail.Message{To: n.Recipient, Subject: n.Subject, HTML: n.HTMLBody})
		switch {
		case sendErr == nil:
			n.Status = domain.NotificationStatusSent
			n.LastError = ""
			report.Sent++
		case n.Attempts >= s.maxAttempts:
			n.Status = domain.NotificationStatusFailed
			n.LastError = sendErr.Error()
			report.Failed++
		default:
			n.LastError = sendErr.Error()
			report.Pending++
		}
		metrics.NotificationRetriesTotal.WithLabelValues(string(n.Status)).Inc()

		if err := s.outbox.RecordAttempt(ctx, n); err != nil {
			logger.ErrorContext(ctx, "Failed to record notification attempt", "notification_id", n.ID, "error", err)
			return report, err
		}
	}

	if report.Attempted > 0 {
		logger.InfoContext(ctx, "Notification retry finished",
			"attempted", report.Attempted, "sent", report.Sent, "pending", report.Pending,
			"failed", report.Failed, "skipped", report.Skipped)
	}
	return report, nil
}

// deliver sends msg and, on failure, queues it in the outbox with the first
// attempt already counted.
func (s *waitlistService) deliver(ctx context.Context, kind domain.NotificationKind, entryID int64, msg mail.Message) NotificationOutcome {
	sendErr := s.email.Send(ctx, msg)
	if sendErr == nil {
		return NotificationSent
	}

	now := s.clock.Now().UTC()
	status := domain.NotificationStatusPending
	if s.maxAttempts <= 1 {
		status = domain.NotificationStatusFailed
	}
	n := &domain.Notification{
		Kind:      kind,
		EntryID:   &entryID,
		Recipient: msg.To,
		Subject:   msg.Subject,
		HTMLBody:  msg.HTML,
		Status:    status,
		Attempts:  1,
		LastError: sendErr.Error(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.outbox.Create(ctx, n); err != nil {
		logger.ErrorContext(ctx, "Failed to queue notification", "kind", kind, "entry_id", entryID, "error", err)
		return NotificationFailed
	}
	metrics.NotificationsQueuedTotal.WithLabelValues(string(kind)).Inc()
	logger.WarnContext(ctx, "Notification queued for retry", "kind", kind, "entry_id", entryID, "notification_id", n.ID)
	return NotificationQueued
}

func (s *waitlistService) get(ctx context.Context, id int64) (*domain.WaitlistEntry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, entryErr(err)
	}
	return entry, nil
}

func entryErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEntryNotFound
	}
	return err
}

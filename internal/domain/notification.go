package domain

import "time"

type NotificationKind string

const (
	NotificationKindWelcome    NotificationKind = "welcome"
	NotificationKindInvitation NotificationKind = "invitation"
	NotificationKindJoined     NotificationKind = "joined"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

func (s NotificationStatus) Valid() bool {
	switch s {
	case NotificationStatusPending, NotificationStatusSent, NotificationStatusFailed:
		return true
	}
	return false
}

// Notification is an outbox record for an email that could not be delivered
// when its triggering state change committed.
type Notification struct {
	ID        int64              `json:"id"`
	Kind      NotificationKind   `json:"kind"`
	EntryID   *int64             `json:"entry_id"`
	Recipient string             `json:"recipient"`
	Subject   string             `json:"subject"`
	HTMLBody  string             `json:"-"`
	Status    NotificationStatus `json:"status"`
	Attempts  int                `json:"attempts"`
	LastError string             `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

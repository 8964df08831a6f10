package domain

import "time"

type WaitlistStatus string

const (
	WaitlistStatusPending WaitlistStatus = "pending"
	WaitlistStatusInvited WaitlistStatus = "invited"
	WaitlistStatusJoined  WaitlistStatus = "joined"
)

// WaitlistStatuses lists every valid status in lifecycle order
var WaitlistStatuses = []WaitlistStatus{WaitlistStatusPending, WaitlistStatusInvited, WaitlistStatusJoined}

// Valid reports whether s is one of the known statuses
func (s WaitlistStatus) Valid() bool {
	for _, v := range WaitlistStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type WaitlistEntry struct {
	ID        int64          `json:"id"`
	Email     string         `json:"email"`
	Status    WaitlistStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	InvitedAt *time.Time     `json:"invited_at"`
	JoinedAt  *time.Time     `json:"joined_at"`
}

// WaitlistStats holds per-status counts. Total always equals the sum of the others.
type WaitlistStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Invited int64 `json:"invited"`
	Joined  int64 `json:"joined"`
}

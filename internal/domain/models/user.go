// internal/domain/models/user.go
package models

// Terminology: User Identifiers
//   - Email: the unique identifier of a UserRecord, stored exactly as submitted (case-sensitive)
//   - Key: the record-store key derived from the email by the user repository

import (
	"time"
)

// UserRecord is the persisted identity, permission, and preference record
// for one email address.
//
// Status governs access:
//   - waitlist: created by signup, cannot sign in
//   - active:   granted by an admin, may sign in
//   - disabled: revoked by an admin, cannot sign in
type UserRecord struct {
	Email  string `json:"email"`
	Status string `json:"status"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`

	LastLogin       *time.Time `json:"lastLogin"`
	LastFeedRefresh *time.Time `json:"lastFeedRefresh"`

	// User preferences
	FeedTimeWindow   string `json:"feedTimeWindow"`
	BlueskyConnected bool   `json:"blueskyConnected"`
}

// User status values.
const (
	StatusWaitlist = "waitlist"
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// AllStatuses returns all valid user statuses.
func AllStatuses() []string {
	return []string{
		StatusActive,
		StatusWaitlist,
		StatusDisabled,
	}
}

// IsValidStatus checks if a status is valid.
func IsValidStatus(status string) bool {
	for _, s := range AllStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// Feed time windows.
const (
	FeedWindow1Hour   = "1hour"
	FeedWindow4Hours  = "4hours"
	FeedWindow8Hours  = "8hours"
	FeedWindow24Hours = "24hours"

	DefaultFeedTimeWindow = FeedWindow4Hours
)

// AllFeedTimeWindows returns all valid feed time windows, shortest first.
func AllFeedTimeWindows() []string {
	return []string{
		FeedWindow1Hour,
		FeedWindow4Hours,
		FeedWindow8Hours,
		FeedWindow24Hours,
	}
}

// IsValidFeedTimeWindow checks if a feed time window is valid.
func IsValidFeedTimeWindow(w string) bool {
	for _, v := range AllFeedTimeWindows() {
		if v == w {
			return true
		}
	}
	return false
}

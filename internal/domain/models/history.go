// internal/domain/models/history.go
package models

import "time"

// HistoryEntry is one generation event owned by a single user.
// Every field except Favorited is fixed at creation.
type HistoryEntry struct {
	ID             string    `json:"id"` // owner email + ":" + creation epoch millis
	OwnerEmail     string    `json:"ownerEmail"`
	Type           string    `json:"type"`
	FeedTimeWindow string    `json:"feedTimeWindow"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	WordCount      int       `json:"wordCount"`
	ReadingTime    int       `json:"readingTime"` // minutes
	Favorited      bool      `json:"favorited"`
}

// Content types.
const (
	ContentQuick        = "quick"
	ContentWhatsGoingOn = "whats-going-on"
	ContentDeepDive     = "deep-dive"
)

// AllContentTypes returns all valid content types.
func AllContentTypes() []string {
	return []string{
		ContentQuick,
		ContentWhatsGoingOn,
		ContentDeepDive,
	}
}

// IsValidContentType checks if a content type is valid.
func IsValidContentType(t string) bool {
	for _, v := range AllContentTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// WordsPerMinute is the reading speed used to derive ReadingTime.
const WordsPerMinute = 200

package types

import "time"

// Feedback is one user-submitted feedback entry. Entries are append-only;
// the only mutation is an admin marking one resolved.
type Feedback struct {
	// ID is the unique identifier of the feedback entry.
	ID int `json:"id" db:"id"`

	// UserID identifies the author.
	UserID int `json:"user_id" db:"user_id"`

	// TopicID identifies the quiz topic the feedback is about.
	TopicID int `json:"topic_id" db:"topic_id"`

	// Rating is an optional 1-5 rating. Zero means no rating was given.
	Rating int `json:"rating" db:"rating"`

	// Category is a free-form grouping label, "other" when unspecified.
	Category string `json:"category" db:"category"`

	// Message is the free-text feedback body.
	Message string `json:"message" db:"message"`

	// ScreenshotKey references an uploaded attachment in object storage.
	// Empty when no screenshot was attached.
	ScreenshotKey string `json:"screenshot_key" db:"screenshot_key"`

	// IsResolved is false until an admin resolves the entry.
	IsResolved bool `json:"is_resolved" db:"is_resolved"`

	// CreatedAt is the timestamp when the entry was submitted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

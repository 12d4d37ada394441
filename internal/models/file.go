package models

import "time"

// TimeLayout is the timestamp format used in file and template listings.
const TimeLayout = "2006-01-02 15:04:05"

// FileDB represents a generated CSV artifact owned by a user.
type FileDB struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Path       string    `json:"path" db:"path"`
	TotalPages int       `json:"total_pages" db:"total_pages"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UserID     int64     `json:"user_id" db:"user_id"`
}

// FileWithOwner is a file row joined with the owning user's name.
type FileWithOwner struct {
	FileDB
	OwnerName string `json:"owner_name" db:"owner_name"`
}

// FileEvent is published to Kafka when an artifact is created or removed.
type FileEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	FileID     int64  `json:"file_id"`
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	TotalPages int    `json:"total_pages"`
	Timestamp  int64  `json:"timestamp"`
}

// File event types.
const (
	FileEventScanned = "file.scanned"
	FileEventDeleted = "file.deleted"
)

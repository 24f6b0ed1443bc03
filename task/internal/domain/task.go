package domain

import "time"

// Task statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task is a to-do item owned by one user.
type Task struct {
	ID          int64
	AuthUserID  int64
	Title       string
	Description *string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidStatus reports whether status is a known task status.
func ValidStatus(status string) bool {
	return status == StatusPending || status == StatusCompleted
}

package domain

import "time"

// Profile holds display details for an auth user. There is at most one per user.
type Profile struct {
	ID         int64
	AuthUserID int64
	FullName   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

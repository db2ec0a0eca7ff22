package auth

import "time"

// User represents a registered back-office user account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

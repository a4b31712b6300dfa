package domain

import "time"

// User is the domain entity for a user account.
type User struct {
	ID             string
	Email          string
	Name           string
	PasswordHash   string
	TelegramChatID *string
	CreatedAt      time.Time
}

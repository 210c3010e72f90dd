package domain

import (
	"strings"
	"time"
)

// Account is the persisted user row behind a session.
type Account struct {
	ID        string
	Email     string
	Name      *string
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// User is the authenticated identity held for the lifetime of a session.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// Profile resolves the display identity of the account.
// The name falls back to the local part of the email, then to "User".
func (a *Account) Profile() User {
	return User{
		ID:        a.ID,
		Name:      DisplayName(a.Name, a.Email),
		Email:     a.Email,
		AvatarURL: deref(a.AvatarURL),
	}
}

// DisplayName picks the name shown for a user.
func DisplayName(fullName *string, email string) string {
	if fullName != nil && strings.TrimSpace(*fullName) != "" {
		return *fullName
	}
	if local, _, _ := strings.Cut(email, "@"); local != "" {
		return local
	}
	return "User"
}

// UserPassword stores password credentials separately from the account.
type UserPassword struct {
	UserID            string
	PasswordHash      string
	PasswordUpdatedAt time.Time
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

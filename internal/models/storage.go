package models

import "time"

// Roles stored on InternalUser.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// InternalUser represents a user account stored in the internal database.
// Authorization is decided by Role, never by the email address.
type InternalUser struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *InternalUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserRecord is a generic document record for all user domain data
// (portfolio items, reports, report history).
type UserRecord struct {
	UserID   string    `json:"user_id"`
	Subject  string    `json:"subject"`
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	Version  int       `json:"version"`
	DateTime time.Time `json:"datetime"`
}

package types

import "time"

// User represents a player account in the system.
// It contains identity, scoring, and moderation metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique display name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address, used as the login identity.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Birthday is the user's date of birth.
	Birthday time.Time `json:"birthday" db:"birthday"`

	// Age is the user's age in years, captured at registration.
	Age int `json:"age" db:"age"`

	// HighScore is the aggregate high score: the sum of the user's
	// best score across every game in the catalog.
	HighScore int `json:"high_score" db:"high_score"`

	// IsAdmin indicates whether the user can access the admin console.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// IsBlocked indicates whether the account is blocked from logging in.
	IsBlocked bool `json:"is_blocked" db:"is_blocked"`

	// BlockedReason is the moderation note recorded when blocking.
	// Empty when the account is not blocked.
	BlockedReason string `json:"blocked_reason" db:"blocked_reason"`

	// BlockedAt is when the account was blocked. Zero when not blocked.
	BlockedAt time.Time `json:"blocked_at" db:"blocked_at"`

	// FailedLogins counts consecutive failed login attempts. Reset to
	// zero on a successful login or an admin unblock.
	FailedLogins int `json:"failed_logins" db:"failed_logins"`

	// LastLoginAt is the instant of the most recent successful login.
	// Zero when the user has never logged in.
	LastLoginAt time.Time `json:"last_login_at" db:"last_login_at"`

	// LastLoginIP is the network origin of the most recent login.
	LastLoginIP string `json:"last_login_ip" db:"last_login_ip"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

package services

import "errors"

// ErrInvalidCredentials is returned by Login for a bad email or a bad
// password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrCannotBlockAdmin is returned when a block targets an admin account.
var ErrCannotBlockAdmin = errors.New("cannot block an admin")

// BlockedError is returned by Login when the account is blocked. It
// carries the stored moderation reason so callers can surface it.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return "account is blocked"
	}
	return "account is blocked: " + e.Reason
}

// ValidationError reports a rejected input value.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports a uniqueness violation on registration or
// account update.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyberquest/apiserver/config"
	"github.com/cyberquest/apiserver/internal/store"
	"github.com/cyberquest/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	TopByHighScore(ctx context.Context, limit int) ([]types.LeaderboardEntry, error)
	RecordLoginFailure(ctx context.Context, id int) error
	RecordLoginSuccess(ctx context.Context, id int, at time.Time, origin string) error
	SetBlocked(ctx context.Context, id int, reason string, at time.Time) error
	ClearBlocked(ctx context.Context, id int) error
	SetAdmin(ctx context.Context, id int) error
	SetHighScore(ctx context.Context, id int, highScore int) error
	Counts(ctx context.Context) (total, blocked int, err error)
}

// RegisterInput carries the validated registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Birthday time.Time
	Age      int
}

// AccountUpdateInput carries the self-service account change payload.
// CurrentPassword is always required; the other fields are optional.
type AccountUpdateInput struct {
	CurrentPassword string
	Username        string
	NewPassword     string
}

// UserService encapsulates registration, login, and account use-cases.
type UserService struct {
	repo         UserRepository
	registration config.RegistrationConfig
}

func NewUserService(repo UserRepository, registration config.RegistrationConfig) *UserService {
	return &UserService{repo: repo, registration: registration}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates a new account. Age must lie inside the configured
// band and username/email must be unused.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	if input.Age < s.registration.MinAge || input.Age > s.registration.MaxAge {
		return types.User{}, &ValidationError{Message: fmt.Sprintf(
			"age must be between %d and %d", s.registration.MinAge, s.registration.MaxAge)}
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return types.User{}, &ConflictError{Message: "email already registered"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		return types.User{}, &ConflictError{Message: "username already taken"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashed,
		Birthday:     input.Birthday,
		Age:          input.Age,
	})
	if err != nil {
		// The pre-checks race with concurrent registrations; the unique
		// constraints are the authority.
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, &ConflictError{Message: "username or email already taken"}
		}
		return types.User{}, err
	}
	return user, nil
}

// Login runs the credential check state machine: unknown email or bad
// password collapse to ErrInvalidCredentials (bumping the failure
// counter only when the account exists), a blocked account yields
// BlockedError with the stored reason, and success resets the counter
// and stamps the login instant and origin.
func (s *UserService) Login(ctx context.Context, email, password, origin string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if !verifyPassword(password, user.PasswordHash) {
		if err := s.repo.RecordLoginFailure(ctx, user.ID); err != nil {
			return types.User{}, err
		}
		return types.User{}, ErrInvalidCredentials
	}

	if user.IsBlocked {
		return types.User{}, &BlockedError{Reason: user.BlockedReason}
	}

	now := time.Now()
	if err := s.repo.RecordLoginSuccess(ctx, user.ID, now, origin); err != nil {
		return types.User{}, err
	}
	user.FailedLogins = 0
	user.LastLoginAt = now
	user.LastLoginIP = origin
	return user, nil
}

// UpdateAccount applies a self-service username and/or password change
// after re-verifying the current password.
func (s *UserService) UpdateAccount(ctx context.Context, userID int, input AccountUpdateInput) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}

	if !verifyPassword(input.CurrentPassword, user.PasswordHash) {
		return types.User{}, &ValidationError{Message: "current password is incorrect"}
	}

	if input.Username != "" && input.Username != user.Username {
		if other, err := s.repo.GetByUsername(ctx, input.Username); err == nil && other.ID != user.ID {
			return types.User{}, &ConflictError{Message: "username already taken"}
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return types.User{}, err
		}
		user.Username = input.Username
	}

	if input.NewPassword != "" {
		hashed, err := hashPassword(input.NewPassword)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = hashed
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, &ConflictError{Message: "username already taken"}
		}
		return types.User{}, err
	}
	return updated, nil
}

// GlobalLeaderboard returns the top users by aggregate high score.
func (s *UserService) GlobalLeaderboard(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	return s.repo.TopByHighScore(ctx, limit)
}

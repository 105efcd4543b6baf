package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cyberquest/apiserver/types"
)

const userColumns = `id, username, email, password_hash, birthday, age, high_score,
		is_admin, is_blocked, blocked_reason, blocked_at, failed_logins,
		last_login_at, last_login_ip, created_at, updated_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (username, email, password_hash, birthday, age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Birthday,
		user.Age,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

// Update persists the mutable account fields. Moderation and login
// bookkeeping have their own narrower statements below.
func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET username = $1,
			password_hash = $2,
			high_score = $3,
			is_admin = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.PasswordHash,
		user.HighScore,
		user.IsAdmin,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// TopByHighScore returns the global leaderboard: users ordered by
// aggregate high score descending, id ascending for equal scores.
func (r *UserRepository) TopByHighScore(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	const query = `
		SELECT id, username, high_score
		FROM users
		ORDER BY high_score DESC, id
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry types.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.Score); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// RecordLoginFailure bumps the failed-attempt counter.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, id int) error {
	const query = `
		UPDATE users
		SET failed_logins = failed_logins + 1, updated_at = $1
		WHERE id = $2`
	return r.exec(ctx, query, time.Now(), id)
}

// RecordLoginSuccess resets the failed-attempt counter and stamps the
// login instant and origin.
func (r *UserRepository) RecordLoginSuccess(ctx context.Context, id int, at time.Time, origin string) error {
	const query = `
		UPDATE users
		SET failed_logins = 0,
			last_login_at = $1,
			last_login_ip = $2,
			updated_at = $3
		WHERE id = $4`
	return r.exec(ctx, query, at, origin, time.Now(), id)
}

// SetBlocked records the block flag, reason, and timestamp.
func (r *UserRepository) SetBlocked(ctx context.Context, id int, reason string, at time.Time) error {
	const query = `
		UPDATE users
		SET is_blocked = TRUE,
			blocked_reason = $1,
			blocked_at = $2,
			updated_at = $3
		WHERE id = $4`
	return r.exec(ctx, query, reason, at, time.Now(), id)
}

// ClearBlocked removes the block state and resets the failed-attempt
// counter.
func (r *UserRepository) ClearBlocked(ctx context.Context, id int) error {
	const query = `
		UPDATE users
		SET is_blocked = FALSE,
			blocked_reason = '',
			blocked_at = NULL,
			failed_logins = 0,
			updated_at = $1
		WHERE id = $2`
	return r.exec(ctx, query, time.Now(), id)
}

// SetAdmin grants the admin flag.
func (r *UserRepository) SetAdmin(ctx context.Context, id int) error {
	const query = `
		UPDATE users
		SET is_admin = TRUE, updated_at = $1
		WHERE id = $2`
	return r.exec(ctx, query, time.Now(), id)
}

// SetHighScore persists the recomputed aggregate high score.
func (r *UserRepository) SetHighScore(ctx context.Context, id int, highScore int) error {
	const query = `
		UPDATE users
		SET high_score = $1, updated_at = $2
		WHERE id = $3`
	return r.exec(ctx, query, highScore, time.Now(), id)
}

// Counts returns the total and blocked user counts.
func (r *UserRepository) Counts(ctx context.Context) (total, blocked int, err error) {
	const query = `
		SELECT COUNT(1), COUNT(1) FILTER (WHERE is_blocked)
		FROM users`
	if err := r.db.QueryRowContext(ctx, query).Scan(&total, &blocked); err != nil {
		return 0, 0, err
	}
	return total, blocked, nil
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser reads one user row, collapsing nullable moderation columns
// onto always-present zero values.
func (r *UserRepository) scanUser(row rowScanner) (types.User, error) {
	var user types.User
	var blockedAt, lastLoginAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Birthday,
		&user.Age,
		&user.HighScore,
		&user.IsAdmin,
		&user.IsBlocked,
		&user.BlockedReason,
		&blockedAt,
		&user.FailedLogins,
		&lastLoginAt,
		&user.LastLoginIP,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	if blockedAt.Valid {
		user.BlockedAt = blockedAt.Time
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = lastLoginAt.Time
	}
	return user, nil
}

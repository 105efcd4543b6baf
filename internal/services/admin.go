package services

import (
	"context"
	"time"

	"github.com/cyberquest/apiserver/internal/store"
	"github.com/cyberquest/apiserver/types"
)

const suspiciousFailedLogins = 5
const reportTopLimit = 10

// ModeratedUser is a user annotated with the derived suspicious flag
// for the admin console listing.
type ModeratedUser struct {
	types.User
	// Suspicious flags accounts with many failed logins, or a recorded
	// login instant that has no recorded origin. A coarse fraud signal,
	// not a security control.
	Suspicious bool `json:"suspicious"`
}

// Stats are the admin console aggregate counts.
type Stats struct {
	TotalUsers      int `json:"total_users"`
	TotalScores     int `json:"total_scores"`
	UsersWithScores int `json:"users_with_scores"`
	BlockedUsers    int `json:"blocked_users"`
}

// ReportSummary is the admin progress report: aggregate counts plus the
// top best-score rows across the whole ledger.
type ReportSummary struct {
	Stats Stats             `json:"stats"`
	Top   []store.ReportRow `json:"top"`
}

// AdminService implements the admin console: read-only aggregation and
// moderation actions.
type AdminService struct {
	users     UserRepository
	scores    ScoreRepository
	publisher Publisher
}

func NewAdminService(users UserRepository, scores ScoreRepository, publisher Publisher) *AdminService {
	return &AdminService{users: users, scores: scores, publisher: publisher}
}

// ListUsers returns every user with moderation fields and the derived
// suspicious flag.
func (s *AdminService) ListUsers(ctx context.Context) ([]ModeratedUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	listed := make([]ModeratedUser, 0, len(users))
	for _, user := range users {
		listed = append(listed, ModeratedUser{
			User:       user,
			Suspicious: isSuspicious(user),
		})
	}
	return listed, nil
}

// isSuspicious applies the two independent trigger conditions: a high
// failed-login count, or a login instant recorded without an origin.
func isSuspicious(user types.User) bool {
	if user.FailedLogins >= suspiciousFailedLogins {
		return true
	}
	return !user.LastLoginAt.IsZero() && user.LastLoginIP == ""
}

// Stats returns the admin console counters.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	totalUsers, blocked, err := s.users.Counts(ctx)
	if err != nil {
		return Stats{}, err
	}
	totalScores, usersWithScores, err := s.scores.Counts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalUsers:      totalUsers,
		TotalScores:     totalScores,
		UsersWithScores: usersWithScores,
		BlockedUsers:    blocked,
	}, nil
}

// Block marks an account blocked with the given reason. Admin accounts
// cannot be blocked; the check runs before any mutation.
func (s *AdminService) Block(ctx context.Context, userID int, reason string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return ErrCannotBlockAdmin
	}

	if err := s.users.SetBlocked(ctx, userID, reason, time.Now()); err != nil {
		return err
	}
	if s.publisher != nil {
		_ = s.publisher.PublishJSON(ctx, "users.blocked", map[string]any{
			"user_id": userID,
			"reason":  reason,
		})
	}
	return nil
}

// Unblock clears the block state and resets the failed-attempt counter.
func (s *AdminService) Unblock(ctx context.Context, userID int) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.ClearBlocked(ctx, userID); err != nil {
		return err
	}
	if s.publisher != nil {
		_ = s.publisher.PublishJSON(ctx, "users.unblocked", map[string]any{
			"user_id": userID,
		})
	}
	return nil
}

// Promote grants the admin flag. There is no demote operation.
func (s *AdminService) Promote(ctx context.Context, userID int) (types.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	if err := s.users.SetAdmin(ctx, userID); err != nil {
		return types.User{}, err
	}
	user.IsAdmin = true
	return user, nil
}

// UserProgress returns a user's best score per game, keyed by game id.
func (s *AdminService) UserProgress(ctx context.Context, userID int) (map[int]int, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.scores.BestByUser(ctx, userID)
}

// ReportSummary returns the aggregate counts plus the top best-score
// rows across the whole ledger, highest first.
func (s *AdminService) ReportSummary(ctx context.Context) (ReportSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return ReportSummary{}, err
	}
	top, err := s.scores.TopAcrossLedger(ctx, reportTopLimit)
	if err != nil {
		return ReportSummary{}, err
	}
	return ReportSummary{Stats: stats, Top: top}, nil
}

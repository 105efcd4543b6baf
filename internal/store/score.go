package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cyberquest/apiserver/types"
)

// ScoreRepository handles persistence for the score ledger.
type ScoreRepository struct {
	db *sql.DB
}

func NewScoreRepository(db *sql.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// UpsertBest records a submission for a (user, game) pair atomically,
// keeping whichever score is greater. The unique constraint on
// (user_id, game_id) makes concurrent submissions safe: at most one row
// per pair can exist and a lower resubmission never clobbers the best.
func (r *ScoreRepository) UpsertBest(ctx context.Context, userID, gameID, score int) (types.Score, error) {
	now := time.Now()

	const query = `
		INSERT INTO scores (user_id, game_id, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id, game_id) DO UPDATE
		SET score = GREATEST(scores.score, EXCLUDED.score),
			updated_at = CASE
				WHEN EXCLUDED.score > scores.score THEN EXCLUDED.updated_at
				ELSE scores.updated_at
			END
		RETURNING id, user_id, game_id, score, created_at, updated_at`
	var best types.Score
	err := r.db.QueryRowContext(ctx, query, userID, gameID, score, now).Scan(
		&best.ID,
		&best.UserID,
		&best.GameID,
		&best.Score,
		&best.CreatedAt,
		&best.UpdatedAt,
	)
	if err != nil {
		return types.Score{}, translateError(err)
	}
	return best, nil
}

// SumBest returns the sum of a user's best score across all games.
func (r *ScoreRepository) SumBest(ctx context.Context, userID int) (int, error) {
	const query = `
		SELECT COALESCE(SUM(score), 0)
		FROM scores
		WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// BestByUser returns a user's best score per game, keyed by game id.
func (r *ScoreRepository) BestByUser(ctx context.Context, userID int) (map[int]int, error) {
	const query = `
		SELECT game_id, score
		FROM scores
		WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bests := make(map[int]int)
	for rows.Next() {
		var gameID, score int
		if err := rows.Scan(&gameID, &score); err != nil {
			return nil, err
		}
		bests[gameID] = score
	}
	return bests, rows.Err()
}

// TopByGame returns the per-game leaderboard: score descending, row id
// ascending for equal scores.
func (r *ScoreRepository) TopByGame(ctx context.Context, gameID, limit int) ([]types.LeaderboardEntry, error) {
	const query = `
		SELECT u.id, u.username, s.score
		FROM scores s
		JOIN users u ON u.id = s.user_id
		WHERE s.game_id = $1
		ORDER BY s.score DESC, s.id
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, gameID, limit)
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

// ReportRow is one (user, game, best score) triple for the admin report.
type ReportRow struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	GameID   int    `json:"game_id"`
	Score    int    `json:"score"`
}

// TopAcrossLedger returns the highest best-score rows across every game.
func (r *ScoreRepository) TopAcrossLedger(ctx context.Context, limit int) ([]ReportRow, error) {
	const query = `
		SELECT u.id, u.username, s.game_id, s.score
		FROM scores s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.score DESC, s.id
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := make([]ReportRow, 0, limit)
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(&row.UserID, &row.Username, &row.GameID, &row.Score); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

// Counts returns the total score rows and the number of distinct users
// holding at least one score.
func (r *ScoreRepository) Counts(ctx context.Context) (total, distinctUsers int, err error) {
	const query = `
		SELECT COUNT(1), COUNT(DISTINCT user_id)
		FROM scores`
	if err := r.db.QueryRowContext(ctx, query).Scan(&total, &distinctUsers); err != nil {
		return 0, 0, err
	}
	return total, distinctUsers, nil
}

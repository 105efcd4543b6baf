package services

import (
	"context"

	"github.com/cyberquest/apiserver/config"
	"github.com/cyberquest/apiserver/internal/store"
	"github.com/cyberquest/apiserver/types"
)

const defaultLeaderboardLimit = 10

// ScoreRepository defines persistence operations for the score ledger.
type ScoreRepository interface {
	UpsertBest(ctx context.Context, userID, gameID, score int) (types.Score, error)
	SumBest(ctx context.Context, userID int) (int, error)
	BestByUser(ctx context.Context, userID int) (map[int]int, error)
	TopByGame(ctx context.Context, gameID, limit int) ([]types.LeaderboardEntry, error)
	TopAcrossLedger(ctx context.Context, limit int) ([]store.ReportRow, error)
	Counts(ctx context.Context) (total, distinctUsers int, err error)
}

// Publisher emits domain events to an external broker. Implemented by
// events.Bus; nil disables publishing.
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, payload any) error
}

// SubmitResult is the outcome of a score submission.
type SubmitResult struct {
	// Best is the stored best score for the pair after the submission.
	Best int
	// Total is the user's recomputed aggregate high score: the sum of
	// bests across all games.
	Total int
}

// ScoreService implements the score ledger: best-score-kept submissions,
// sum-of-bests aggregation, progress, and leaderboards.
type ScoreService struct {
	scores    ScoreRepository
	users     UserRepository
	games     GameRepository
	maxScores map[int]int
	publisher Publisher
}

func NewScoreService(
	scores ScoreRepository,
	users UserRepository,
	games GameRepository,
	scoring config.ScoringConfig,
	publisher Publisher,
) *ScoreService {
	return &ScoreService{
		scores:    scores,
		users:     users,
		games:     games,
		maxScores: scoring.MaxScores,
		publisher: publisher,
	}
}

// Submit records a score for a (user, game) pair. The stored best only
// ever increases; the aggregate is recomputed as the sum of the user's
// bests and persisted on the user record. Resubmitting a lower or equal
// score is a no-op for the stored best but still returns the current
// aggregate.
func (s *ScoreService) Submit(ctx context.Context, userID, gameID, score int) (SubmitResult, error) {
	if score < 0 {
		return SubmitResult{}, &ValidationError{Message: "score must not be negative"}
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return SubmitResult{}, err
	}
	if _, err := s.games.Get(ctx, gameID); err != nil {
		return SubmitResult{}, err
	}

	best, err := s.scores.UpsertBest(ctx, userID, gameID, score)
	if err != nil {
		return SubmitResult{}, err
	}

	total, err := s.scores.SumBest(ctx, userID)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := s.users.SetHighScore(ctx, userID, total); err != nil {
		return SubmitResult{}, err
	}

	result := SubmitResult{Best: best.Score, Total: total}

	if s.publisher != nil {
		// Best effort: a broker outage must not fail the submission.
		_ = s.publisher.PublishJSON(ctx, "scores.submitted", map[string]any{
			"user_id": userID,
			"game_id": gameID,
			"score":   score,
			"best":    best.Score,
			"total":   total,
		})
	}
	return result, nil
}

// Progress reports the user's standing in every catalog game, played or
// not. Percent is floor(best/max*100); a game with no configured max
// reports 0% regardless of score.
func (s *ScoreService) Progress(ctx context.Context, userID int) ([]types.GameProgress, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	games, err := s.games.List(ctx)
	if err != nil {
		return nil, err
	}
	bests, err := s.scores.BestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := make([]types.GameProgress, 0, len(games))
	for _, game := range games {
		best := bests[game.ID]
		max := s.maxScores[game.ID]
		percent := 0
		if max > 0 {
			percent = best * 100 / max
		}
		progress = append(progress, types.GameProgress{
			GameID:    game.ID,
			Title:     game.Title,
			Emoji:     game.Emoji,
			BestScore: best,
			MaxScore:  max,
			Percent:   percent,
		})
	}
	return progress, nil
}

// GameLeaderboard returns the top scores for one game.
func (s *ScoreService) GameLeaderboard(ctx context.Context, gameID, limit int) ([]types.LeaderboardEntry, error) {
	if _, err := s.games.Get(ctx, gameID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	return s.scores.TopByGame(ctx, gameID, limit)
}

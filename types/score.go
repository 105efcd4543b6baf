package types

import "time"

// Score is a user's best result for one game. There is at most one
// Score row per (user, game) pair; resubmissions only ever raise it.
type Score struct {
	// ID is the unique identifier of the score row.
	ID int `json:"id" db:"id"`

	// UserID identifies the user the score belongs to.
	UserID int `json:"user_id" db:"user_id"`

	// GameID identifies the game the score was achieved in.
	GameID int `json:"game_id" db:"game_id"`

	// Score is the best score the user has achieved in this game.
	Score int `json:"score" db:"score"`

	// CreatedAt is when the first submission for this pair was recorded.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is when the best score last changed.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LeaderboardEntry is one row of a per-game or global leaderboard.
type LeaderboardEntry struct {
	// UserID identifies the ranked user.
	UserID int `json:"user_id"`

	// Username is the ranked user's display name.
	Username string `json:"username"`

	// Score is the user's best score for the game, or the aggregate
	// high score on the global leaderboard.
	Score int `json:"score"`
}

// GameProgress describes a user's progress in one catalog game.
type GameProgress struct {
	// GameID identifies the game.
	GameID int `json:"game_id"`

	// Title is the game's display title.
	Title string `json:"title"`

	// Emoji is the game's display glyph.
	Emoji string `json:"emoji"`

	// BestScore is the user's best score, 0 if the game was never played.
	BestScore int `json:"best_score"`

	// MaxScore is the configured maximum score for the game, 0 if none
	// is configured.
	MaxScore int `json:"max_score"`

	// Percent is floor(BestScore / MaxScore * 100), or 0 when MaxScore
	// is 0.
	Percent int `json:"percent"`
}

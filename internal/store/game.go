package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cyberquest/apiserver/types"
)

// GameRepository handles persistence for the game catalog.
type GameRepository struct {
	db *sql.DB
}

func NewGameRepository(db *sql.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Get(ctx context.Context, id int) (types.Game, error) {
	const query = `
		SELECT id, title, emoji, is_quiz
		FROM games
		WHERE id = $1`
	var game types.Game
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&game.ID,
		&game.Title,
		&game.Emoji,
		&game.IsQuiz,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Game{}, ErrNotFound
		}
		return types.Game{}, err
	}
	return game, nil
}

func (r *GameRepository) List(ctx context.Context) ([]types.Game, error) {
	const query = `
		SELECT id, title, emoji, is_quiz
		FROM games
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []types.Game
	for rows.Next() {
		var game types.Game
		if err := rows.Scan(&game.ID, &game.Title, &game.Emoji, &game.IsQuiz); err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (r *GameRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM games`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Seed inserts the catalog entries with explicit ids. Only called at
// startup when the table is empty.
func (r *GameRepository) Seed(ctx context.Context, games []types.Game) error {
	const query = `
		INSERT INTO games (id, title, emoji, is_quiz)
		VALUES ($1, $2, $3, $4)`
	for _, game := range games {
		if _, err := r.db.ExecContext(ctx, query, game.ID, game.Title, game.Emoji, game.IsQuiz); err != nil {
			return translateError(err)
		}
	}
	// Explicit ids bypass the sequence; realign it so later inserts work.
	const bump = `SELECT setval(pg_get_serial_sequence('games', 'id'), (SELECT MAX(id) FROM games))`
	_, err := r.db.ExecContext(ctx, bump)
	return err
}

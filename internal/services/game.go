package services

import (
	"context"

	"github.com/cyberquest/apiserver/types"
)

// GameRepository defines persistence operations for the game catalog.
type GameRepository interface {
	Get(ctx context.Context, id int) (types.Game, error)
	List(ctx context.Context) ([]types.Game, error)
	Count(ctx context.Context) (int, error)
	Seed(ctx context.Context, games []types.Game) error
}

// catalog is the fixed set of quiz topics shipped with the product.
var catalog = []types.Game{
	{ID: 1, Title: "My Digital Footprint", Emoji: "👣", IsQuiz: true},
	{ID: 2, Title: "Personal Info & Privacy", Emoji: "🧰", IsQuiz: true},
	{ID: 3, Title: "Passwords & Passphrases", Emoji: "🔐", IsQuiz: true},
	{ID: 4, Title: "Social Media Safety", Emoji: "📱", IsQuiz: true},
}

// GameService exposes the catalog and its one-time seeding.
type GameService struct {
	repo GameRepository
}

func NewGameService(repo GameRepository) *GameService {
	return &GameService{repo: repo}
}

func (s *GameService) Get(ctx context.Context, id int) (types.Game, error) {
	return s.repo.Get(ctx, id)
}

func (s *GameService) List(ctx context.Context) ([]types.Game, error) {
	return s.repo.List(ctx)
}

// EnsureSeeded inserts the catalog if the table is empty. Idempotent:
// a populated catalog is left untouched.
func (s *GameService) EnsureSeeded(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.repo.Seed(ctx, catalog)
}

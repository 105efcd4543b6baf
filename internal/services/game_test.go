package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cyberquest/apiserver/internal/store"
	"github.com/cyberquest/apiserver/types"
)

func TestEnsureSeededPopulatesEmptyCatalog(t *testing.T) {
	repo := newFakeGameRepo()
	svc := NewGameService(repo)
	ctx := context.Background()

	if err := svc.EnsureSeeded(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	games, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(games) != 4 {
		t.Fatalf("expected 4 catalog games, got %d", len(games))
	}
	for _, game := range games {
		if !game.IsQuiz {
			t.Errorf("game %d must be a quiz", game.ID)
		}
	}
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	repo := newFakeGameRepo()
	svc := NewGameService(repo)
	ctx := context.Background()

	if err := svc.EnsureSeeded(ctx); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := svc.EnsureSeeded(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	games, _ := svc.List(ctx)
	if len(games) != 4 {
		t.Fatalf("repeat seeding must not duplicate, got %d games", len(games))
	}
}

func TestEnsureSeededLeavesPopulatedCatalogAlone(t *testing.T) {
	repo := newFakeGameRepo(types.Game{ID: 1, Title: "Custom", Emoji: "x"})
	svc := NewGameService(repo)

	if err := svc.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	games, _ := svc.List(context.Background())
	if len(games) != 1 || games[0].Title != "Custom" {
		t.Fatalf("populated catalog must be left untouched, got %+v", games)
	}
}

func TestGameGetUnknown(t *testing.T) {
	svc := NewGameService(newFakeGameRepo())
	if _, err := svc.Get(context.Background(), 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

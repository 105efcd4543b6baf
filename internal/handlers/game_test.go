package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/cyberquest/apiserver/config"
	"github.com/cyberquest/apiserver/internal/services"
	"github.com/cyberquest/apiserver/internal/store"
	"github.com/cyberquest/apiserver/types"
)

// stubGameRepo satisfies the game repository interface; the dashboard
// endpoint never consults the catalog.
type stubGameRepo struct{}

func (stubGameRepo) Get(_ context.Context, id int) (types.Game, error) {
	return types.Game{}, store.ErrNotFound
}

func (stubGameRepo) List(context.Context) ([]types.Game, error) { return nil, nil }
func (stubGameRepo) Count(context.Context) (int, error)         { return 0, nil }
func (stubGameRepo) Seed(context.Context, []types.Game) error   { return nil }

func TestDashboardOmitsModerationFields(t *testing.T) {
	repo := &stubUserRepo{users: map[int]types.User{
		7: {
			ID:            7,
			Username:      "alice",
			Email:         "alice@example.com",
			Birthday:      time.Date(2012, 4, 1, 0, 0, 0, 0, time.UTC),
			Age:           14,
			HighScore:     70,
			IsBlocked:     true,
			BlockedReason: "bullying report pending",
			FailedLogins:  5,
			LastLoginAt:   time.Now(),
			LastLoginIP:   "203.0.113.55",
		},
	}}
	userService := services.NewUserService(repo, config.RegistrationConfig{MinAge: 13, MaxAge: 17})
	handler := NewGameHandler(services.NewGameService(stubGameRepo{}), userService)

	router := chi.NewRouter()
	GameRouter(router, handler)

	r := httptest.NewRequest(http.MethodGet, "/dashboard/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, field := range []string{
		"is_blocked", "blocked_reason", "blocked_at",
		"failed_logins", "last_login_at", "last_login_ip",
		"password_hash", "is_admin",
	} {
		if _, ok := body[field]; ok {
			t.Errorf("public dashboard must not expose %q", field)
		}
	}

	if body["username"] != "alice" {
		t.Errorf("expected username alice, got %v", body["username"])
	}
	if body["high_score"] != float64(70) {
		t.Errorf("expected high_score 70, got %v", body["high_score"])
	}
}

func TestDashboardUnknownUser(t *testing.T) {
	repo := &stubUserRepo{users: map[int]types.User{}}
	userService := services.NewUserService(repo, config.RegistrationConfig{MinAge: 13, MaxAge: 17})
	handler := NewGameHandler(services.NewGameService(stubGameRepo{}), userService)

	router := chi.NewRouter()
	GameRouter(router, handler)

	r := httptest.NewRequest(http.MethodGet, "/dashboard/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

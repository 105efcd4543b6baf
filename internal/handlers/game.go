package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/cyberquest/apiserver/internal/services"
)

// GameHandler provides the public catalog and leaderboard endpoints.
type GameHandler struct {
	gameService *services.GameService
	userService *services.UserService
}

func NewGameHandler(gameService *services.GameService, userService *services.UserService) *GameHandler {
	return &GameHandler{gameService: gameService, userService: userService}
}

// GameRouter registers game routes on the given router. All routes are
// public.
func GameRouter(r chi.Router, handler *GameHandler) {
	r.Get("/", handler.ListGames)
	r.Get("/leaderboard", handler.GlobalLeaderboard)
	r.Get("/dashboard/{userID}", handler.Dashboard)
}

// ListGames returns the seeded catalog.
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list games")
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GlobalLeaderboard returns the top users by aggregate high score.
func (h *GameHandler) GlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.userService.GlobalLeaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// DashboardProfile is the public view of a user: identity and the
// aggregate high score only. Moderation fields stay on the admin
// console.
type DashboardProfile struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Birthday  time.Time `json:"birthday"`
	Age       int       `json:"age"`
	HighScore int       `json:"high_score"`
}

// Dashboard returns a user's profile with the aggregate high score.
func (h *GameHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(chi.URLParam(r, "userID"), "user id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardProfile{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Birthday:  user.Birthday,
		Age:       user.Age,
		HighScore: user.HighScore,
	})
}

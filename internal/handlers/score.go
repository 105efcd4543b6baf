package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/cyberquest/apiserver/internal/services"
)

// ScoreHandler provides score submission, progress, and leaderboard
// endpoints.
type ScoreHandler struct {
	scoreService *services.ScoreService
}

func NewScoreHandler(scoreService *services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

// ScoreRouter registers score routes on the given router. Leaderboards
// are public; submission and progress require authentication.
func ScoreRouter(r chi.Router, handler *ScoreHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/leaderboard/{gameID}", handler.GameLeaderboard)
	r.With(authMiddleware).Post("/", handler.Submit)
	r.With(authMiddleware).Get("/progress/{userID}", handler.Progress)
}

type ScoreSubmitRequest struct {
	GameID int `json:"game_id"`
	Score  int `json:"score"`
}

type ScoreSubmitResponse struct {
	Message   string `json:"message"`
	BestScore int    `json:"best_score"`
	TotalBest int    `json:"total_best"`
}

// Submit records a score for the authenticated user. Lower or equal
// resubmissions leave the stored best untouched but still return the
// current aggregate.
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req ScoreSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.GameID < 1 {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	result, err := h.scoreService.Submit(r.Context(), user.ID, req.GameID, req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ScoreSubmitResponse{
		Message:   "score saved",
		BestScore: result.Best,
		TotalBest: result.Total,
	})
}

// GameLeaderboard returns the top scores for one game.
func (h *ScoreHandler) GameLeaderboard(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseIDParam(chi.URLParam(r, "gameID"), "game id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.scoreService.GameLeaderboard(r.Context(), gameID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Progress returns the user's standing in every catalog game.
func (h *ScoreHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(chi.URLParam(r, "userID"), "user id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	progress, err := h.scoreService.Progress(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

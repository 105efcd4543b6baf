package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/cyberquest/apiserver/internal/services"
)

// AccountHandler provides authenticated self-service account endpoints.
type AccountHandler struct {
	userService *services.UserService
}

func NewAccountHandler(userService *services.UserService) *AccountHandler {
	return &AccountHandler{userService: userService}
}

// AccountRouter registers account routes on the given router. The
// caller applies the auth middleware.
func AccountRouter(r chi.Router, handler *AccountHandler) {
	r.Patch("/", handler.Update)
}

type AccountUpdateRequest struct {
	CurrentPassword string `json:"current_password"`
	Username        string `json:"username"`
	NewPassword     string `json:"new_password"`
}

// Update changes the caller's username and/or password after
// re-verifying the current password.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req AccountUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.CurrentPassword == "" {
		writeError(w, http.StatusBadRequest, "current password is required")
		return
	}

	updated, err := h.userService.UpdateAccount(r.Context(), user.ID, services.AccountUpdateInput{
		CurrentPassword: req.CurrentPassword,
		Username:        strings.TrimSpace(req.Username),
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "account updated",
		"username": updated.Username,
	})
}

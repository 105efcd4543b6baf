package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/cyberquest/apiserver/internal/services"
	"github.com/cyberquest/apiserver/internal/storage"
)

const (
	maxAttachmentMemory = 8 << 20
	maxAttachmentBytes  = 8 << 20
	formFieldScreenshot = "screenshot"
)

// FeedbackHandler provides feedback submission, listing, resolution,
// and screenshot attachment endpoints. Attachments are nil-safe: with
// no attachment store configured the upload endpoints report the
// feature unavailable.
type FeedbackHandler struct {
	feedbackService *services.FeedbackService
	attachments     *storage.AttachmentStore
}

func NewFeedbackHandler(feedbackService *services.FeedbackService, attachments *storage.AttachmentStore) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		attachments:     attachments,
	}
}

// FeedbackRouter registers feedback routes on the given router.
func FeedbackRouter(
	r chi.Router,
	handler *FeedbackHandler,
	authMiddleware func(http.Handler) http.Handler,
	adminMiddleware func(http.Handler) http.Handler,
) {
	r.With(authMiddleware).Post("/", handler.Submit)
	r.With(authMiddleware).Get("/mine", handler.ListMine)
	r.With(authMiddleware).Post("/attachments", handler.UploadAttachment)
	r.With(authMiddleware, adminMiddleware).Get("/attachments/*", handler.GetAttachment)
	r.With(authMiddleware, adminMiddleware).Get("/admin", handler.ListAll)
	r.With(authMiddleware, adminMiddleware).Post("/{feedbackID}/resolve", handler.Resolve)
}

type FeedbackRequest struct {
	TopicID       int    `json:"topic_id"`
	Rating        int    `json:"rating"`
	Category      string `json:"category"`
	Message       string `json:"message"`
	ScreenshotKey string `json:"screenshot_key"`
}

// Submit stores a feedback entry for the authenticated user.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.TopicID < 1 {
		writeError(w, http.StatusBadRequest, "invalid topic id")
		return
	}

	fb, err := h.feedbackService.Submit(r.Context(), user.ID, services.FeedbackInput{
		TopicID:       req.TopicID,
		Rating:        req.Rating,
		Category:      strings.TrimSpace(req.Category),
		Message:       req.Message,
		ScreenshotKey: strings.TrimSpace(req.ScreenshotKey),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "feedback submitted",
		"id":      fb.ID,
	})
}

// ListMine returns the caller's feedback for one topic, newest first.
func (h *FeedbackHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	topicID, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("topic_id")))
	if err != nil || topicID < 1 {
		writeError(w, http.StatusBadRequest, "invalid topic id")
		return
	}

	entries, err := h.feedbackService.ListMine(r.Context(), user.ID, topicID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ListAll returns every feedback entry, newest first.
func (h *FeedbackHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	entries, err := h.feedbackService.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Resolve marks a feedback entry resolved.
func (h *FeedbackHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	feedbackID, err := parseIDParam(chi.URLParam(r, "feedbackID"), "feedback id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.feedbackService.Resolve(r.Context(), feedbackID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "feedback resolved"})
}

// UploadAttachment stores a screenshot and returns the key to reference
// from a feedback submission.
func (h *FeedbackHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	if h.attachments == nil {
		writeError(w, http.StatusServiceUnavailable, "attachments are not configured")
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File[formFieldScreenshot]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one screenshot file is required")
		return
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	data, err := readFileLimited(file, maxAttachmentBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	key, err := h.attachments.Save(r.Context(), bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"screenshot_key": key})
}

// GetAttachment streams a stored screenshot.
func (h *FeedbackHandler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	if h.attachments == nil {
		writeError(w, http.StatusServiceUnavailable, "attachments are not configured")
		return
	}

	key := strings.TrimSpace(chi.URLParam(r, "*"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "invalid attachment key")
		return
	}

	reader, err := h.attachments.Open(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "attachment not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

package services

import (
	"context"
	"unicode/utf8"

	"github.com/cyberquest/apiserver/types"
)

const (
	minFeedbackMessage = 3
	maxFeedbackMessage = 2000
	defaultCategory    = "other"
)

// FeedbackRepository defines persistence operations for feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, fb types.Feedback) (types.Feedback, error)
	ListByUserTopic(ctx context.Context, userID, topicID int) ([]types.Feedback, error)
	ListAll(ctx context.Context) ([]types.Feedback, error)
	Resolve(ctx context.Context, id int) error
}

// FeedbackInput carries a feedback submission. Rating 0 means no rating.
type FeedbackInput struct {
	TopicID       int
	Rating        int
	Category      string
	Message       string
	ScreenshotKey string
}

// FeedbackService implements the append-only feedback log.
type FeedbackService struct {
	repo      FeedbackRepository
	publisher Publisher
}

func NewFeedbackService(repo FeedbackRepository, publisher Publisher) *FeedbackService {
	return &FeedbackService{repo: repo, publisher: publisher}
}

// Submit validates and stores a feedback entry for the given author.
func (s *FeedbackService) Submit(ctx context.Context, userID int, input FeedbackInput) (types.Feedback, error) {
	if input.Rating != 0 && (input.Rating < 1 || input.Rating > 5) {
		return types.Feedback{}, &ValidationError{Message: "rating must be between 1 and 5"}
	}
	// Bounds are in characters, not bytes.
	length := utf8.RuneCountInString(input.Message)
	if length < minFeedbackMessage {
		return types.Feedback{}, &ValidationError{Message: "message is too short"}
	}
	if length > maxFeedbackMessage {
		return types.Feedback{}, &ValidationError{Message: "message is too long"}
	}
	if input.Category == "" {
		input.Category = defaultCategory
	}

	fb, err := s.repo.Create(ctx, types.Feedback{
		UserID:        userID,
		TopicID:       input.TopicID,
		Rating:        input.Rating,
		Category:      input.Category,
		Message:       input.Message,
		ScreenshotKey: input.ScreenshotKey,
	})
	if err != nil {
		return types.Feedback{}, err
	}

	if s.publisher != nil {
		_ = s.publisher.PublishJSON(ctx, "feedback.submitted", map[string]any{
			"feedback_id": fb.ID,
			"user_id":     userID,
			"topic_id":    input.TopicID,
		})
	}
	return fb, nil
}

// ListMine returns the author's feedback for one topic, newest first.
func (s *FeedbackService) ListMine(ctx context.Context, userID, topicID int) ([]types.Feedback, error) {
	return s.repo.ListByUserTopic(ctx, userID, topicID)
}

// ListAll returns every feedback entry, newest first. Admin only; the
// handler enforces the gate.
func (s *FeedbackService) ListAll(ctx context.Context) ([]types.Feedback, error) {
	return s.repo.ListAll(ctx)
}

// Resolve marks an entry resolved.
func (s *FeedbackService) Resolve(ctx context.Context, id int) error {
	return s.repo.Resolve(ctx, id)
}

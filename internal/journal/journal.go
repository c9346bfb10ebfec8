// Package journal records what a user writes while working through lessons:
// quiz answers, reflections and guidance chat turns.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/storage"
)

const (
	DefaultChatHistoryLimit = 50
	MaxChatHistoryLimit     = 200
	DefaultChatRetention    = 7 * 24 * time.Hour
)

// ErrInvalidEntry wraps every input validation failure.
var ErrInvalidEntry = errors.New("invalid entry")

// Journal validates entries and hands them to a JournalStore.
type Journal struct {
	store storage.JournalStore
	now   func() time.Time
	log   *zap.Logger
}

// New builds a Journal. A nil clock means time.Now.
func New(store storage.JournalStore, now func() time.Time, log *zap.Logger) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{store: store, now: now, log: log}
}

// SaveLessonAnswer records the option the user picked for a lesson question.
func (j *Journal) SaveLessonAnswer(ctx context.Context, userID uuid.UUID, lessonID string, answer models.LessonAnswer) (models.LessonAnswer, error) {
	lessonID = strings.TrimSpace(lessonID)
	if err := required("lesson id", lessonID); err != nil {
		return models.LessonAnswer{}, err
	}
	if err := required("question text", answer.QuestionText); err != nil {
		return models.LessonAnswer{}, err
	}
	if err := required("selected option", answer.SelectedOption); err != nil {
		return models.LessonAnswer{}, err
	}

	answer.ID = uuid.New()
	answer.UserID = userID
	answer.LessonID = lessonID
	saved, err := j.store.SaveLessonAnswer(ctx, answer)
	if err != nil {
		j.log.Error("save lesson answer failed",
			zap.Stringer("user_id", userID), zap.String("lesson_id", lessonID), zap.Error(err))
		return models.LessonAnswer{}, fmt.Errorf("save lesson answer: %w", err)
	}
	return saved, nil
}

// LessonAnswers lists the user's answers for a lesson in answer order.
func (j *Journal) LessonAnswers(ctx context.Context, userID uuid.UUID, lessonID string) ([]models.LessonAnswer, error) {
	lessonID = strings.TrimSpace(lessonID)
	if err := required("lesson id", lessonID); err != nil {
		return nil, err
	}
	return j.store.ListLessonAnswers(ctx, userID, lessonID)
}

// SaveReflection records the user's written response to a lesson prompt.
func (j *Journal) SaveReflection(ctx context.Context, userID uuid.UUID, lessonID string, reflection models.Reflection) (models.Reflection, error) {
	lessonID = strings.TrimSpace(lessonID)
	if err := required("lesson id", lessonID); err != nil {
		return models.Reflection{}, err
	}
	switch reflection.ReflectionType {
	case models.ReflectionApplication, models.ReflectionReflection:
	default:
		return models.Reflection{}, fmt.Errorf("%w: reflection type must be %q or %q",
			ErrInvalidEntry, models.ReflectionApplication, models.ReflectionReflection)
	}
	if err := required("question text", reflection.QuestionText); err != nil {
		return models.Reflection{}, err
	}
	if err := required("response", reflection.UserResponse); err != nil {
		return models.Reflection{}, err
	}

	reflection.ID = uuid.New()
	reflection.UserID = userID
	reflection.LessonID = lessonID
	reflection.AIFeedback = strings.TrimSpace(reflection.AIFeedback)
	saved, err := j.store.SaveReflection(ctx, reflection)
	if err != nil {
		j.log.Error("save reflection failed",
			zap.Stringer("user_id", userID), zap.String("lesson_id", lessonID), zap.Error(err))
		return models.Reflection{}, fmt.Errorf("save reflection: %w", err)
	}
	return saved, nil
}

// Reflections lists reflections newest first. An empty lessonID lists all.
func (j *Journal) Reflections(ctx context.Context, userID uuid.UUID, lessonID string) ([]models.Reflection, error) {
	return j.store.ListReflections(ctx, userID, strings.TrimSpace(lessonID))
}

// SaveChatMessage appends one chat turn.
func (j *Journal) SaveChatMessage(ctx context.Context, userID uuid.UUID, message models.ChatMessage) (models.ChatMessage, error) {
	switch message.Role {
	case models.ChatRoleUser, models.ChatRoleAssistant:
	default:
		return models.ChatMessage{}, fmt.Errorf("%w: role must be %q or %q",
			ErrInvalidEntry, models.ChatRoleUser, models.ChatRoleAssistant)
	}
	if err := required("message", message.Message); err != nil {
		return models.ChatMessage{}, err
	}

	message.ID = uuid.New()
	message.UserID = userID
	message.ContextType = strings.TrimSpace(message.ContextType)
	saved, err := j.store.SaveChatMessage(ctx, message)
	if err != nil {
		j.log.Error("save chat message failed", zap.Stringer("user_id", userID), zap.Error(err))
		return models.ChatMessage{}, fmt.Errorf("save chat message: %w", err)
	}
	return saved, nil
}

// ChatHistory returns up to limit recent messages in chronological order.
// A non-positive limit means DefaultChatHistoryLimit.
func (j *Journal) ChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatHistoryLimit
	}
	return j.store.ChatHistory(ctx, userID, min(limit, MaxChatHistoryLimit))
}

// ClearOldChatHistory deletes messages older than keep. A non-positive keep
// means DefaultChatRetention.
func (j *Journal) ClearOldChatHistory(ctx context.Context, userID uuid.UUID, keep time.Duration) (int64, error) {
	if keep <= 0 {
		keep = DefaultChatRetention
	}
	deleted, err := j.store.DeleteChatHistoryBefore(ctx, userID, j.now().Add(-keep))
	if err != nil {
		j.log.Error("clear chat history failed", zap.Stringer("user_id", userID), zap.Error(err))
		return 0, fmt.Errorf("clear chat history: %w", err)
	}
	if deleted > 0 {
		j.log.Info("cleared chat history", zap.Stringer("user_id", userID), zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidEntry, field)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/faithpath-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations for accounts.
type UserStore interface {
	// CreateUser inserts the user and its empty progress row atomically.
	// A duplicate email (case-insensitive) yields ErrAlreadyExists.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	CompleteOnboarding(ctx context.Context, id uuid.UUID, answers models.OnboardingAnswers) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) error
}

// ProgressMutation computes the next progress row from the current one.
type ProgressMutation func(current models.UserProgress) models.UserProgress

// ProgressStore captures persistence operations for activity tracking.
// Mutations run while the user's progress row is locked, so concurrent
// callers observe each other's writes.
type ProgressStore interface {
	GetProgress(ctx context.Context, userID uuid.UUID) (models.UserProgress, error)
	UpdateProgress(ctx context.Context, userID uuid.UUID, mutate ProgressMutation) (models.UserProgress, error)
	// SaveLessonCompletion inserts the completion and applies mutate in the
	// same transaction.
	SaveLessonCompletion(ctx context.Context, completion models.LessonCompletion, mutate ProgressMutation) (models.LessonCompletion, models.UserProgress, error)
	IsLessonCompleted(ctx context.Context, userID uuid.UUID, lessonID string) (bool, error)
	ListLessonCompletions(ctx context.Context, userID uuid.UUID) ([]models.LessonCompletion, error)
}

// SessionStore keeps the optional server-side revocation set.
type SessionStore interface {
	RevokeSession(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

// JournalStore keeps per-lesson answers, written reflections and chat turns.
// Saving for an unknown user yields ErrNotFound.
type JournalStore interface {
	SaveLessonAnswer(ctx context.Context, answer models.LessonAnswer) (models.LessonAnswer, error)
	// ListLessonAnswers returns answers in the order they were given.
	ListLessonAnswers(ctx context.Context, userID uuid.UUID, lessonID string) ([]models.LessonAnswer, error)
	SaveReflection(ctx context.Context, reflection models.Reflection) (models.Reflection, error)
	// ListReflections returns reflections newest first. An empty lessonID
	// lists every lesson.
	ListReflections(ctx context.Context, userID uuid.UUID, lessonID string) ([]models.Reflection, error)
	SaveChatMessage(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error)
	// ChatHistory returns the latest limit messages in chronological order.
	ChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error)
	// DeleteChatHistoryBefore removes the user's messages created before
	// cutoff and reports how many were removed.
	DeleteChatHistoryBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
}

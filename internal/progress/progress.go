// Package progress implements per-user activity counters with daily
// rollover: "today" counters reset on the first activity of a new UTC
// calendar day while cumulative totals only ever grow.
package progress

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

var (
	// ErrInvalidLesson is returned when a lesson id is empty.
	ErrInvalidLesson = errors.New("lesson id is required")
	// ErrInvalidDelta is returned when an activity delta would move a
	// counter or the lesson step below zero.
	ErrInvalidDelta = errors.New("activity values must not be negative")
)

// Apply returns current advanced by delta as of today.
func Apply(current models.UserProgress, delta models.ActivityDelta, today time.Time) models.UserProgress {
	today = Day(today)
	next := current

	newDay := current.LastActiveDate.IsZero() || !Day(current.LastActiveDate).Equal(today)
	if newDay {
		next.DaysActive = current.DaysActive + 1
		next.LessonsCompletedToday = 0
		next.ChaptersReadToday = 0
	}

	if delta.LessonsCompletedToday != nil {
		next.LessonsCompletedToday += *delta.LessonsCompletedToday
	}
	if delta.ChaptersReadToday != nil {
		next.ChaptersReadToday += *delta.ChaptersReadToday
	}
	if delta.TotalLessonsCompleted != nil {
		next.TotalLessonsCompleted += *delta.TotalLessonsCompleted
	}
	if delta.TotalChaptersRead != nil {
		next.TotalChaptersRead += *delta.TotalChaptersRead
	}
	if delta.CurrentLessonID != nil {
		next.CurrentLessonID = *delta.CurrentLessonID
	}
	if delta.CurrentLessonStep != nil {
		next.CurrentLessonStep = *delta.CurrentLessonStep
	}

	next.LastActiveDate = today
	return next
}

// ValidateDelta rejects deltas carrying negative counters or a negative
// lesson step.
func ValidateDelta(delta models.ActivityDelta) error {
	for _, v := range []*int{
		delta.LessonsCompletedToday,
		delta.ChaptersReadToday,
		delta.TotalLessonsCompleted,
		delta.TotalChaptersRead,
		delta.CurrentLessonStep,
	} {
		if v != nil && *v < 0 {
			return ErrInvalidDelta
		}
	}
	return nil
}

// Day truncates t to midnight of its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Tracker records activity against a ProgressStore.
type Tracker struct {
	store storage.ProgressStore
	now   func() time.Time
	log   *zap.Logger
}

// NewTracker builds a Tracker. A nil clock means time.Now.
func NewTracker(store storage.ProgressStore, now func() time.Time, log *zap.Logger) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{store: store, now: now, log: log}
}

// RecordActivity applies delta to the user's progress and returns the result.
func (t *Tracker) RecordActivity(ctx context.Context, userID uuid.UUID, delta models.ActivityDelta) (models.UserProgress, error) {
	if err := ValidateDelta(delta); err != nil {
		return models.UserProgress{}, err
	}

	today := t.now()
	updated, err := t.store.UpdateProgress(ctx, userID, func(current models.UserProgress) models.UserProgress {
		return Apply(current, delta, today)
	})
	if err != nil {
		t.log.Error("record activity failed", zap.Stringer("user_id", userID), zap.Error(err))
		return models.UserProgress{}, fmt.Errorf("record activity: %w", err)
	}
	return updated, nil
}

// SaveLessonCompletion stores a completion record and bumps the lesson
// counters in the same transaction.
func (t *Tracker) SaveLessonCompletion(ctx context.Context, userID uuid.UUID, lessonID string, score int) (models.LessonCompletion, models.UserProgress, error) {
	lessonID = strings.TrimSpace(lessonID)
	if lessonID == "" {
		return models.LessonCompletion{}, models.UserProgress{}, ErrInvalidLesson
	}

	one := 1
	delta := models.ActivityDelta{TotalLessonsCompleted: &one, LessonsCompletedToday: &one}
	today := t.now()

	completion, updated, err := t.store.SaveLessonCompletion(ctx, models.LessonCompletion{
		ID:       uuid.New(),
		UserID:   userID,
		LessonID: lessonID,
		Score:    score,
	}, func(current models.UserProgress) models.UserProgress {
		return Apply(current, delta, today)
	})
	if err != nil {
		t.log.Error("save lesson completion failed",
			zap.Stringer("user_id", userID), zap.String("lesson_id", lessonID), zap.Error(err))
		return models.LessonCompletion{}, models.UserProgress{}, fmt.Errorf("save lesson completion: %w", err)
	}
	return completion, updated, nil
}

// IsLessonCompleted reports whether the user has completed the lesson.
func (t *Tracker) IsLessonCompleted(ctx context.Context, userID uuid.UUID, lessonID string) (bool, error) {
	lessonID = strings.TrimSpace(lessonID)
	if lessonID == "" {
		return false, ErrInvalidLesson
	}
	return t.store.IsLessonCompleted(ctx, userID, lessonID)
}

// Progress returns the user's current progress; a missing row reads as zero.
func (t *Tracker) Progress(ctx context.Context, userID uuid.UUID) (models.UserProgress, error) {
	p, err := t.store.GetProgress(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.UserProgress{UserID: userID}, nil
	}
	return p, err
}

// LessonCompletions lists the user's completions, newest first.
func (t *Tracker) LessonCompletions(ctx context.Context, userID uuid.UUID) ([]models.LessonCompletion, error) {
	return t.store.ListLessonCompletions(ctx, userID)
}

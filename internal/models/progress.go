package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProgress tracks daily and cumulative activity for one user.
type UserProgress struct {
	UserID                uuid.UUID `json:"userId"`
	CurrentLessonID       string    `json:"currentLessonId,omitempty"`
	CurrentLessonStep     int       `json:"currentLessonStep"`
	LessonsCompletedToday int       `json:"lessonsCompletedToday"`
	ChaptersReadToday     int       `json:"chaptersReadToday"`
	TotalLessonsCompleted int       `json:"totalLessonsCompleted"`
	TotalChaptersRead     int       `json:"totalChaptersRead"`
	DaysActive            int       `json:"daysActive"`
	// LastActiveDate is a UTC calendar date; the zero value means the user
	// has never been active.
	LastActiveDate time.Time `json:"lastActiveDate"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ActivityDelta describes one progress event. Nil fields are left alone.
type ActivityDelta struct {
	CurrentLessonID       *string `json:"currentLessonId,omitempty"`
	CurrentLessonStep     *int    `json:"currentLessonStep,omitempty"`
	LessonsCompletedToday *int    `json:"lessonsCompletedToday,omitempty"`
	ChaptersReadToday     *int    `json:"chaptersReadToday,omitempty"`
	TotalLessonsCompleted *int    `json:"totalLessonsCompleted,omitempty"`
	TotalChaptersRead     *int    `json:"totalChaptersRead,omitempty"`
}

// LessonCompletion is an immutable record of a finished lesson.
type LessonCompletion struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	LessonID    string    `json:"lessonId"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

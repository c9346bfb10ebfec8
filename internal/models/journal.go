package models

import (
	"time"

	"github.com/google/uuid"
)

// ReflectionType distinguishes the two written prompts at the end of a lesson.
type ReflectionType string

const (
	ReflectionApplication ReflectionType = "application"
	ReflectionReflection  ReflectionType = "reflection"
)

// ChatRole identifies who wrote a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// LessonAnswer is one answered multiple-choice question inside a lesson.
type LessonAnswer struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	LessonID       string    `json:"lessonId"`
	QuestionText   string    `json:"questionText"`
	SelectedOption string    `json:"selectedOption"`
	IsCorrect      bool      `json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// Reflection is a free-text response to a lesson prompt, optionally with
// feedback generated for it.
type Reflection struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"userId"`
	LessonID       string         `json:"lessonId"`
	ReflectionType ReflectionType `json:"reflectionType"`
	QuestionText   string         `json:"questionText"`
	UserResponse   string         `json:"userResponse"`
	AIFeedback     string         `json:"aiFeedback,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// ChatMessage is one turn of the guidance chat.
type ChatMessage struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Message     string    `json:"message"`
	Role        ChatRole  `json:"role"`
	ContextType string    `json:"contextType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

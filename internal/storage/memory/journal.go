package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/storage"
)

// SaveLessonAnswer appends an answered question.
func (s *Store) SaveLessonAnswer(_ context.Context, answer models.LessonAnswer) (models.LessonAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[answer.UserID]; !ok {
		return models.LessonAnswer{}, storage.ErrNotFound
	}
	answer.AnsweredAt = s.now()
	s.answers = append(s.answers, answer)
	return answer, nil
}

// ListLessonAnswers returns the user's answers for a lesson, oldest first.
func (s *Store) ListLessonAnswers(_ context.Context, userID uuid.UUID, lessonID string) ([]models.LessonAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.LessonAnswer
	for _, a := range s.answers {
		if a.UserID == userID && a.LessonID == lessonID {
			out = append(out, a)
		}
	}
	return out, nil
}

// SaveReflection appends a reflection.
func (s *Store) SaveReflection(_ context.Context, reflection models.Reflection) (models.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[reflection.UserID]; !ok {
		return models.Reflection{}, storage.ErrNotFound
	}
	reflection.CreatedAt = s.now()
	s.reflections = append(s.reflections, reflection)
	return reflection, nil
}

// ListReflections returns reflections newest first, optionally for one lesson.
func (s *Store) ListReflections(_ context.Context, userID uuid.UUID, lessonID string) ([]models.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reflection
	for i := len(s.reflections) - 1; i >= 0; i-- {
		r := s.reflections[i]
		if r.UserID == userID && (lessonID == "" || r.LessonID == lessonID) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SaveChatMessage appends a chat turn.
func (s *Store) SaveChatMessage(_ context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[message.UserID]; !ok {
		return models.ChatMessage{}, storage.ErrNotFound
	}
	message.CreatedAt = s.now()
	s.chat = append(s.chat, message)
	return message, nil
}

// ChatHistory returns the latest limit messages, oldest of them first.
func (s *Store) ChatHistory(_ context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ChatMessage
	for i := len(s.chat) - 1; i >= 0 && len(out) < limit; i-- {
		if s.chat[i].UserID == userID {
			out = append(out, s.chat[i])
		}
	}
	slices.Reverse(out)
	return out, nil
}

// DeleteChatHistoryBefore removes the user's messages created before cutoff.
func (s *Store) DeleteChatHistoryBefore(_ context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.chat)
	s.chat = slices.DeleteFunc(s.chat, func(m models.ChatMessage) bool {
		return m.UserID == userID && m.CreatedAt.Before(cutoff)
	})
	return int64(before - len(s.chat)), nil
}

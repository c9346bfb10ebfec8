package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/storage"
	"github.com/jackc/pgx/v5"
)

const (
	answerColumns     = `id, user_id, lesson_id, question_text, selected_option, is_correct, answered_at`
	reflectionColumns = `id, user_id, lesson_id, reflection_type, question_text, user_response,
	COALESCE(ai_feedback, ''), created_at`
	chatColumns = `id, user_id, message, role, COALESCE(context_type, ''), created_at`
)

// SaveLessonAnswer records one answered question.
func (s *Store) SaveLessonAnswer(ctx context.Context, answer models.LessonAnswer) (models.LessonAnswer, error) {
	const query = `
		INSERT INTO lesson_answers (id, user_id, lesson_id, question_text, selected_option, is_correct)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + answerColumns
	row := s.pool.QueryRow(ctx, query,
		answer.ID, answer.UserID, answer.LessonID, answer.QuestionText, answer.SelectedOption, answer.IsCorrect)
	saved, err := scanAnswer(row)
	if err != nil {
		return models.LessonAnswer{}, wrapJournalErr("save lesson answer", err)
	}
	return saved, nil
}

// ListLessonAnswers returns the user's answers for a lesson, oldest first.
func (s *Store) ListLessonAnswers(ctx context.Context, userID uuid.UUID, lessonID string) ([]models.LessonAnswer, error) {
	query := `SELECT ` + answerColumns + `
		FROM lesson_answers
		WHERE user_id = $1 AND lesson_id = $2
		ORDER BY answered_at ASC`
	rows, err := s.pool.Query(ctx, query, userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list lesson answers: %w", err)
	}
	answers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LessonAnswer, error) {
		return scanAnswer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list lesson answers: %w", err)
	}
	return answers, nil
}

// SaveReflection records a written reflection.
func (s *Store) SaveReflection(ctx context.Context, reflection models.Reflection) (models.Reflection, error) {
	const query = `
		INSERT INTO reflections (id, user_id, lesson_id, reflection_type, question_text, user_response, ai_feedback)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING ` + reflectionColumns
	row := s.pool.QueryRow(ctx, query,
		reflection.ID, reflection.UserID, reflection.LessonID, string(reflection.ReflectionType),
		reflection.QuestionText, reflection.UserResponse, reflection.AIFeedback)
	saved, err := scanReflection(row)
	if err != nil {
		return models.Reflection{}, wrapJournalErr("save reflection", err)
	}
	return saved, nil
}

// ListReflections returns reflections newest first, optionally for one lesson.
func (s *Store) ListReflections(ctx context.Context, userID uuid.UUID, lessonID string) ([]models.Reflection, error) {
	query := `SELECT ` + reflectionColumns + `
		FROM reflections
		WHERE user_id = $1 AND ($2 = '' OR lesson_id = $2)
		ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list reflections: %w", err)
	}
	reflections, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Reflection, error) {
		return scanReflection(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list reflections: %w", err)
	}
	return reflections, nil
}

// SaveChatMessage appends a chat turn.
func (s *Store) SaveChatMessage(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	const query = `
		INSERT INTO chat_history (id, user_id, message, role, context_type)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING ` + chatColumns
	row := s.pool.QueryRow(ctx, query,
		message.ID, message.UserID, message.Message, string(message.Role), message.ContextType)
	saved, err := scanChatMessage(row)
	if err != nil {
		return models.ChatMessage{}, wrapJournalErr("save chat message", err)
	}
	return saved, nil
}

// ChatHistory returns the latest limit messages, oldest of them first.
func (s *Store) ChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	query := `SELECT ` + chatColumns + `
		FROM chat_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ChatMessage, error) {
		return scanChatMessage(row)
	})
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	slices.Reverse(messages)
	return messages, nil
}

// DeleteChatHistoryBefore removes the user's messages older than cutoff.
func (s *Store) DeleteChatHistoryBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM chat_history WHERE user_id = $1 AND created_at < $2`
	tag, err := s.pool.Exec(ctx, query, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete chat history: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAnswer(row pgx.Row) (models.LessonAnswer, error) {
	var a models.LessonAnswer
	err := row.Scan(&a.ID, &a.UserID, &a.LessonID, &a.QuestionText, &a.SelectedOption, &a.IsCorrect, &a.AnsweredAt)
	return a, err
}

func scanReflection(row pgx.Row) (models.Reflection, error) {
	var r models.Reflection
	var kind string
	err := row.Scan(&r.ID, &r.UserID, &r.LessonID, &kind, &r.QuestionText, &r.UserResponse, &r.AIFeedback, &r.CreatedAt)
	r.ReflectionType = models.ReflectionType(kind)
	return r, err
}

func scanChatMessage(row pgx.Row) (models.ChatMessage, error) {
	var m models.ChatMessage
	var role string
	err := row.Scan(&m.ID, &m.UserID, &m.Message, &role, &m.ContextType, &m.CreatedAt)
	m.Role = models.ChatRole(role)
	return m, err
}

// wrapJournalErr maps a missing user (FK violation) to ErrNotFound.
func wrapJournalErr(op string, err error) error {
	if isPgError(err, foreignKeyViolation) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

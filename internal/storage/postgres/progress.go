package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const progressColumns = `user_id, COALESCE(current_lesson_id, ''), COALESCE(current_lesson_step, 0),
	lessons_completed_today, chapters_read_today, total_lessons_completed, total_chapters_read,
	days_active, last_active_date, updated_at`

// GetProgress returns the stored progress row for the user.
func (s *Store) GetProgress(ctx context.Context, userID uuid.UUID) (models.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1`
	return scanProgress(s.pool.QueryRow(ctx, query, userID))
}

// UpdateProgress locks the user's progress row, applies mutate and writes
// the result back within one transaction.
func (s *Store) UpdateProgress(ctx context.Context, userID uuid.UUID, mutate storage.ProgressMutation) (models.UserProgress, error) {
	var updated models.UserProgress
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = applyProgress(ctx, tx, userID, mutate)
		return err
	})
	if err != nil {
		return models.UserProgress{}, wrapProgressErr("update progress", err)
	}
	return updated, nil
}

// SaveLessonCompletion records the completion and applies mutate atomically.
func (s *Store) SaveLessonCompletion(ctx context.Context, completion models.LessonCompletion, mutate storage.ProgressMutation) (models.LessonCompletion, models.UserProgress, error) {
	const insert = `
		INSERT INTO lesson_completions (id, user_id, lesson_id, score)
		VALUES ($1, $2, $3, $4)
		RETURNING completed_at`

	var updated models.UserProgress
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		if updated, err = applyProgress(ctx, tx, completion.UserID, mutate); err != nil {
			return err
		}
		return tx.QueryRow(ctx, insert, completion.ID, completion.UserID, completion.LessonID, completion.Score).
			Scan(&completion.CompletedAt)
	})
	if err != nil {
		return models.LessonCompletion{}, models.UserProgress{}, wrapProgressErr("save lesson completion", err)
	}
	return completion, updated, nil
}

// IsLessonCompleted reports whether any completion exists for the pair.
func (s *Store) IsLessonCompleted(ctx context.Context, userID uuid.UUID, lessonID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM lesson_completions WHERE user_id = $1 AND lesson_id = $2)`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, userID, lessonID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check lesson completion: %w", err)
	}
	return exists, nil
}

// ListLessonCompletions returns the user's completions, newest first.
func (s *Store) ListLessonCompletions(ctx context.Context, userID uuid.UUID) ([]models.LessonCompletion, error) {
	const query = `
		SELECT id, user_id, lesson_id, score, completed_at
		FROM lesson_completions
		WHERE user_id = $1
		ORDER BY completed_at DESC`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list lesson completions: %w", err)
	}
	completions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LessonCompletion, error) {
		var c models.LessonCompletion
		err := row.Scan(&c.ID, &c.UserID, &c.LessonID, &c.Score, &c.CompletedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("list lesson completions: %w", err)
	}
	return completions, nil
}

// applyProgress creates the progress row when missing, locks it and
// persists mutate's result.
func applyProgress(ctx context.Context, tx pgx.Tx, userID uuid.UUID, mutate storage.ProgressMutation) (models.UserProgress, error) {
	const ensure = `INSERT INTO user_progress (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	lock := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1 FOR UPDATE`
	update := `
		UPDATE user_progress
		SET current_lesson_id = NULLIF($2, ''),
			current_lesson_step = $3,
			lessons_completed_today = $4,
			chapters_read_today = $5,
			total_lessons_completed = $6,
			total_chapters_read = $7,
			days_active = $8,
			last_active_date = $9,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + progressColumns

	if _, err := tx.Exec(ctx, ensure, userID); err != nil {
		return models.UserProgress{}, err
	}
	current, err := scanProgress(tx.QueryRow(ctx, lock, userID))
	if err != nil {
		return models.UserProgress{}, err
	}

	next := mutate(current)
	return scanProgress(tx.QueryRow(ctx, update,
		userID,
		next.CurrentLessonID,
		next.CurrentLessonStep,
		next.LessonsCompletedToday,
		next.ChaptersReadToday,
		next.TotalLessonsCompleted,
		next.TotalChaptersRead,
		next.DaysActive,
		dateParam(next.LastActiveDate),
	))
}

func scanProgress(row pgx.Row) (models.UserProgress, error) {
	var p models.UserProgress
	var lastActive pgtype.Date
	err := row.Scan(
		&p.UserID,
		&p.CurrentLessonID,
		&p.CurrentLessonStep,
		&p.LessonsCompletedToday,
		&p.ChaptersReadToday,
		&p.TotalLessonsCompleted,
		&p.TotalChaptersRead,
		&p.DaysActive,
		&lastActive,
		&p.UpdatedAt,
	)
	if err != nil {
		return models.UserProgress{}, notFound(err)
	}
	if lastActive.Valid {
		p.LastActiveDate = lastActive.Time
	}
	return p, nil
}

func dateParam(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// wrapProgressErr maps a missing user (progress FK violation) to ErrNotFound.
func wrapProgressErr(op string, err error) error {
	if isPgError(err, foreignKeyViolation) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

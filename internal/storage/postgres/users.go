package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/storage"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, username, password_hash, onboarding_completed,
	COALESCE(faith_stage, ''), COALESCE(current_needs, ''), COALESCE(brings_here, ''),
	created_at, updated_at`

// CreateUser inserts a new user row together with its empty progress row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const insertUser = `
		INSERT INTO users (id, email, username, password_hash, onboarding_completed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	const insertProgress = `INSERT INTO user_progress (user_id) VALUES ($1)`

	var created models.User
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, insertUser, user.ID, user.Email, user.Username, user.PasswordHash, user.OnboardingCompleted)
		var err error
		if created, err = scanUser(row); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, insertProgress, created.ID)
		return err
	})
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// FindByEmail fetches a user by email address, ignoring case.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// CompleteOnboarding stores the questionnaire answers and marks onboarding done.
func (s *Store) CompleteOnboarding(ctx context.Context, id uuid.UUID, answers models.OnboardingAnswers) error {
	const query = `
		UPDATE users
		SET faith_stage = $1,
			current_needs = $2,
			brings_here = $3,
			onboarding_completed = TRUE,
			updated_at = NOW()
		WHERE id = $4`
	tag, err := s.pool.Exec(ctx, query, answers.FaithStage, answers.CurrentNeeds, answers.BringsHere, id)
	if err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateProfile overwrites the editable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) error {
	const query = `
		UPDATE users
		SET username = $1,
			faith_stage = $2,
			current_needs = $3,
			brings_here = $4,
			updated_at = NOW()
		WHERE id = $5`
	tag, err := s.pool.Exec(ctx, query, update.Username, update.FaithStage, update.CurrentNeeds, update.BringsHere, id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.OnboardingCompleted,
		&user.FaithStage,
		&user.CurrentNeeds,
		&user.BringsHere,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

// Package memory provides an in-process implementation of the storage
// interfaces. It backs tests and local experiments; data is lost on exit.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/storage"
)

var (
	_ storage.UserStore     = (*Store)(nil)
	_ storage.ProgressStore = (*Store)(nil)
	_ storage.SessionStore  = (*Store)(nil)
	_ storage.JournalStore  = (*Store)(nil)
)

// Store keeps all records in maps guarded by a single mutex.
type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	users       map[uuid.UUID]models.User
	progress    map[uuid.UUID]models.UserProgress
	completions []models.LessonCompletion
	answers     []models.LessonAnswer
	reflections []models.Reflection
	chat        []models.ChatMessage
	revoked     map[string]time.Time
}

// New returns an empty store on the wall clock.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty store that stamps records and checks
// revocation expiry with now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:      now,
		users:    make(map[uuid.UUID]models.User),
		progress: make(map[uuid.UUID]models.UserProgress),
		revoked:  make(map[string]time.Time),
	}
}

// CreateUser inserts the user and an empty progress row.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	s.progress[user.ID] = models.UserProgress{UserID: user.ID, UpdatedAt: now}
	return user, nil
}

// FindByID fetches a user by id.
func (s *Store) FindByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// FindByEmail fetches a user by email, ignoring case.
func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// CompleteOnboarding stores the answers and flips the onboarding flag.
func (s *Store) CompleteOnboarding(_ context.Context, id uuid.UUID, answers models.OnboardingAnswers) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.FaithStage = answers.FaithStage
	user.CurrentNeeds = answers.CurrentNeeds
	user.BringsHere = answers.BringsHere
	user.OnboardingCompleted = true
	user.UpdatedAt = s.now()
	s.users[id] = user
	return nil
}

// UpdateProfile overwrites the editable profile fields.
func (s *Store) UpdateProfile(_ context.Context, id uuid.UUID, update models.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.Username = update.Username
	user.FaithStage = update.FaithStage
	user.CurrentNeeds = update.CurrentNeeds
	user.BringsHere = update.BringsHere
	user.UpdatedAt = s.now()
	s.users[id] = user
	return nil
}

// GetProgress returns the user's progress row.
func (s *Store) GetProgress(_ context.Context, userID uuid.UUID) (models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.progress[userID]
	if !ok {
		return models.UserProgress{}, storage.ErrNotFound
	}
	return p, nil
}

// UpdateProgress applies mutate while holding the store lock.
func (s *Store) UpdateProgress(_ context.Context, userID uuid.UUID, mutate storage.ProgressMutation) (models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyLocked(userID, mutate)
}

// SaveLessonCompletion appends the completion and applies mutate as one step.
func (s *Store) SaveLessonCompletion(_ context.Context, completion models.LessonCompletion, mutate storage.ProgressMutation) (models.LessonCompletion, models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.applyLocked(completion.UserID, mutate)
	if err != nil {
		return models.LessonCompletion{}, models.UserProgress{}, err
	}
	completion.CompletedAt = s.now()
	s.completions = append(s.completions, completion)
	return completion, updated, nil
}

// IsLessonCompleted reports whether a completion exists for the pair.
func (s *Store) IsLessonCompleted(_ context.Context, userID uuid.UUID, lessonID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.ContainsFunc(s.completions, func(c models.LessonCompletion) bool {
		return c.UserID == userID && c.LessonID == lessonID
	}), nil
}

// ListLessonCompletions returns the user's completions, newest first.
func (s *Store) ListLessonCompletions(_ context.Context, userID uuid.UUID) ([]models.LessonCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.LessonCompletion
	for i := len(s.completions) - 1; i >= 0; i-- {
		if s.completions[i].UserID == userID {
			out = append(out, s.completions[i])
		}
	}
	return out, nil
}

// RevokeSession records the session id until expiresAt.
func (s *Store) RevokeSession(_ context.Context, sessionID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revoked[sessionID] = expiresAt
	return nil
}

// IsSessionRevoked reports whether the session id was revoked and has not expired.
func (s *Store) IsSessionRevoked(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.revoked[sessionID]
	return ok && expiresAt.After(s.now()), nil
}

func (s *Store) applyLocked(userID uuid.UUID, mutate storage.ProgressMutation) (models.UserProgress, error) {
	if _, ok := s.users[userID]; !ok {
		return models.UserProgress{}, storage.ErrNotFound
	}
	current, ok := s.progress[userID]
	if !ok {
		current = models.UserProgress{UserID: userID}
	}
	next := mutate(current)
	next.UserID = userID
	next.UpdatedAt = s.now()
	s.progress[userID] = next
	return next, nil
}

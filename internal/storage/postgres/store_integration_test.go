package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/storage"
)

// TestStoreIntegration exercises the Postgres store against a live database.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_STORE_INTEGRATION") != "true" {
		t.Skip("set RUN_STORE_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("storetest_%d@example.com", suffix)
	user, err := store.CreateUser(ctx, models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     fmt.Sprintf("storetest_%d", suffix),
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	t.Run("duplicate email ignores case", func(t *testing.T) {
		_, err := store.CreateUser(ctx, models.User{ID: uuid.New(), Email: fmt.Sprintf("STORETEST_%d@EXAMPLE.COM", suffix), Username: "dup", PasswordHash: "hash"})
		if !errors.Is(err, storage.ErrAlreadyExists) {
			t.Fatalf("want ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("find and update user", func(t *testing.T) {
		found, err := store.FindByEmail(ctx, fmt.Sprintf("StoreTest_%d@Example.com", suffix))
		if err != nil || found.ID != user.ID {
			t.Fatalf("find by email: %v %+v", err, found)
		}
		answers := models.OnboardingAnswers{FaithStage: "seeking", CurrentNeeds: "peace", BringsHere: "friends"}
		if err := store.CompleteOnboarding(ctx, user.ID, answers); err != nil {
			t.Fatalf("complete onboarding: %v", err)
		}
		found, err = store.FindByID(ctx, user.ID)
		if err != nil || !found.OnboardingCompleted || found.FaithStage != "seeking" {
			t.Fatalf("onboarding not stored: %v %+v", err, found)
		}
		if err := store.UpdateProfile(ctx, uuid.New(), models.ProfileUpdate{Username: "ghost"}); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("want ErrNotFound for unknown user, got %v", err)
		}
	})

	t.Run("progress row created with user", func(t *testing.T) {
		p, err := store.GetProgress(ctx, user.ID)
		if err != nil {
			t.Fatalf("get progress: %v", err)
		}
		if p.DaysActive != 0 || !p.LastActiveDate.IsZero() {
			t.Fatalf("unexpected initial progress: %+v", p)
		}
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.UpdateProgress(ctx, user.ID, func(p models.UserProgress) models.UserProgress {
					p.TotalChaptersRead++
					return p
				})
				if err != nil {
					t.Errorf("update progress: %v", err)
				}
			}()
		}
		wg.Wait()

		p, err := store.GetProgress(ctx, user.ID)
		if err != nil {
			t.Fatalf("get progress: %v", err)
		}
		if p.TotalChaptersRead != workers {
			t.Fatalf("total chapters = %d, want %d", p.TotalChaptersRead, workers)
		}
	})

	t.Run("lesson completion", func(t *testing.T) {
		completion := models.LessonCompletion{ID: uuid.New(), UserID: user.ID, LessonID: "john-3", Score: 80}
		saved, p, err := store.SaveLessonCompletion(ctx, completion, func(p models.UserProgress) models.UserProgress {
			p.TotalLessonsCompleted++
			p.LastActiveDate = time.Now().UTC().Truncate(24 * time.Hour)
			return p
		})
		if err != nil {
			t.Fatalf("save completion: %v", err)
		}
		if saved.CompletedAt.IsZero() || p.TotalLessonsCompleted != 1 || p.LastActiveDate.IsZero() {
			t.Fatalf("unexpected completion result: %+v %+v", saved, p)
		}
		done, err := store.IsLessonCompleted(ctx, user.ID, "john-3")
		if err != nil || !done {
			t.Fatalf("is lesson completed: %v %v", done, err)
		}
		list, err := store.ListLessonCompletions(ctx, user.ID)
		if err != nil || len(list) != 1 {
			t.Fatalf("list completions: %v %d", err, len(list))
		}
	})

	t.Run("journal entries", func(t *testing.T) {
		for _, option := range []string{"B", "A"} {
			_, err := store.SaveLessonAnswer(ctx, models.LessonAnswer{
				ID: uuid.New(), UserID: user.ID, LessonID: "john-3", QuestionText: "Q", SelectedOption: option,
			})
			if err != nil {
				t.Fatalf("save answer: %v", err)
			}
		}
		answers, err := store.ListLessonAnswers(ctx, user.ID, "john-3")
		if err != nil || len(answers) != 2 || answers[0].SelectedOption != "B" {
			t.Fatalf("list answers: %v %+v", err, answers)
		}

		_, err = store.SaveReflection(ctx, models.Reflection{
			ID: uuid.New(), UserID: user.ID, LessonID: "john-3",
			ReflectionType: models.ReflectionReflection, QuestionText: "Q", UserResponse: "R",
		})
		if err != nil {
			t.Fatalf("save reflection: %v", err)
		}
		reflections, err := store.ListReflections(ctx, user.ID, "")
		if err != nil || len(reflections) != 1 || reflections[0].AIFeedback != "" {
			t.Fatalf("list reflections: %v %+v", err, reflections)
		}

		for _, text := range []string{"first", "second", "third"} {
			_, err := store.SaveChatMessage(ctx, models.ChatMessage{ID: uuid.New(), UserID: user.ID, Message: text, Role: models.ChatRoleUser})
			if err != nil {
				t.Fatalf("save chat message: %v", err)
			}
		}
		history, err := store.ChatHistory(ctx, user.ID, 2)
		if err != nil || len(history) != 2 || history[0].Message != "second" || history[1].Message != "third" {
			t.Fatalf("chat history: %v %+v", err, history)
		}
		deleted, err := store.DeleteChatHistoryBefore(ctx, user.ID, time.Now().Add(time.Hour))
		if err != nil || deleted != 3 {
			t.Fatalf("delete chat history: %v %d", err, deleted)
		}

		_, err = store.SaveChatMessage(ctx, models.ChatMessage{ID: uuid.New(), UserID: uuid.New(), Message: "x", Role: models.ChatRoleUser})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("want ErrNotFound for unknown user, got %v", err)
		}
	})

	t.Run("session revocation", func(t *testing.T) {
		jti := uuid.NewString()
		if err := store.RevokeSession(ctx, jti, time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("revoke: %v", err)
		}
		revoked, err := store.IsSessionRevoked(ctx, jti)
		if err != nil || !revoked {
			t.Fatalf("is revoked: %v %v", revoked, err)
		}
	})
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}

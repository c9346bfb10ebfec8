package journal

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/storage"
	"github.com/hongminglow/faithpath-be/internal/storage/memory"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newJournal(t *testing.T) (*Journal, *clock, uuid.UUID) {
	t.Helper()
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewWithClock(c.Now)
	user, err := store.CreateUser(context.Background(), models.User{ID: uuid.New(), Email: "a@x.com", Username: "bob"})
	require.NoError(t, err)
	return New(store, c.Now, zap.NewNop()), c, user.ID
}

func TestLessonAnswers_KeptInAnswerOrder(t *testing.T) {
	j, c, userID := newJournal(t)
	ctx := context.Background()

	for i, option := range []string{"A", "C", "B"} {
		_, err := j.SaveLessonAnswer(ctx, userID, "john-1", models.LessonAnswer{
			QuestionText:   fmt.Sprintf("Question %d", i+1),
			SelectedOption: option,
			IsCorrect:      option == "C",
		})
		require.NoError(t, err)
		c.Advance(time.Minute)
	}
	_, err := j.SaveLessonAnswer(ctx, userID, "john-2", models.LessonAnswer{QuestionText: "Other", SelectedOption: "A"})
	require.NoError(t, err)

	answers, err := j.LessonAnswers(ctx, userID, " john-1 ")
	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.Equal(t, "A", answers[0].SelectedOption)
	assert.Equal(t, "C", answers[1].SelectedOption)
	assert.True(t, answers[1].IsCorrect)
	assert.Equal(t, "B", answers[2].SelectedOption)
	assert.True(t, answers[0].AnsweredAt.Before(answers[2].AnsweredAt))
}

func TestLessonAnswers_Validation(t *testing.T) {
	j, _, userID := newJournal(t)
	ctx := context.Background()

	cases := map[string]struct {
		lessonID string
		answer   models.LessonAnswer
	}{
		"missing lesson":   {"", models.LessonAnswer{QuestionText: "Q", SelectedOption: "A"}},
		"missing question": {"john-1", models.LessonAnswer{SelectedOption: "A"}},
		"missing option":   {"john-1", models.LessonAnswer{QuestionText: "Q", SelectedOption: "  "}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := j.SaveLessonAnswer(ctx, userID, tc.lessonID, tc.answer)
			require.ErrorIs(t, err, ErrInvalidEntry)
		})
	}

	_, err := j.LessonAnswers(ctx, userID, "")
	require.ErrorIs(t, err, ErrInvalidEntry)
}

func TestSave_UnknownUser(t *testing.T) {
	j, _, _ := newJournal(t)
	ctx := context.Background()
	stranger := uuid.New()

	_, err := j.SaveLessonAnswer(ctx, stranger, "john-1", models.LessonAnswer{QuestionText: "Q", SelectedOption: "A"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = j.SaveReflection(ctx, stranger, "john-1", models.Reflection{
		ReflectionType: models.ReflectionReflection, QuestionText: "Q", UserResponse: "R",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = j.SaveChatMessage(ctx, stranger, models.ChatMessage{Role: models.ChatRoleUser, Message: "hi"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReflections_NewestFirstAndFilteredByLesson(t *testing.T) {
	j, c, userID := newJournal(t)
	ctx := context.Background()

	save := func(lessonID, response string, kind models.ReflectionType) {
		t.Helper()
		_, err := j.SaveReflection(ctx, userID, lessonID, models.Reflection{
			ReflectionType: kind,
			QuestionText:   "How does this apply to you?",
			UserResponse:   response,
		})
		require.NoError(t, err)
		c.Advance(time.Minute)
	}
	save("john-1", "first", models.ReflectionApplication)
	save("john-2", "second", models.ReflectionReflection)
	save("john-1", "third", models.ReflectionReflection)

	all, err := j.Reflections(ctx, userID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].UserResponse, all[1].UserResponse, all[2].UserResponse})

	lesson, err := j.Reflections(ctx, userID, "john-1")
	require.NoError(t, err)
	require.Len(t, lesson, 2)
	assert.Equal(t, "third", lesson[0].UserResponse)
	assert.Equal(t, "first", lesson[1].UserResponse)
}

func TestReflections_Validation(t *testing.T) {
	j, _, userID := newJournal(t)
	ctx := context.Background()

	valid := models.Reflection{ReflectionType: models.ReflectionApplication, QuestionText: "Q", UserResponse: "R"}
	bad := []models.Reflection{
		{ReflectionType: "journal", QuestionText: "Q", UserResponse: "R"},
		{ReflectionType: models.ReflectionApplication, UserResponse: "R"},
		{ReflectionType: models.ReflectionApplication, QuestionText: "Q"},
	}
	for _, r := range bad {
		_, err := j.SaveReflection(ctx, userID, "john-1", r)
		assert.ErrorIs(t, err, ErrInvalidEntry)
	}
	_, err := j.SaveReflection(ctx, userID, " ", valid)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	valid.AIFeedback = "  Well said.  "
	saved, err := j.SaveReflection(ctx, userID, "john-1", valid)
	require.NoError(t, err)
	assert.Equal(t, "Well said.", saved.AIFeedback)
	assert.NotEqual(t, uuid.Nil, saved.ID)
}

func TestChatHistory_LatestInChronologicalOrder(t *testing.T) {
	j, c, userID := newJournal(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		role := models.ChatRoleUser
		if i%2 == 1 {
			role = models.ChatRoleAssistant
		}
		_, err := j.SaveChatMessage(ctx, userID, models.ChatMessage{Role: role, Message: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
		c.Advance(time.Second)
	}

	history, err := j.ChatHistory(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, history, DefaultChatHistoryLimit)
	assert.Equal(t, "m10", history[0].Message)
	assert.Equal(t, "m59", history[len(history)-1].Message)

	history, err = j.ChatHistory(ctx, userID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"m57", "m58", "m59"}, []string{history[0].Message, history[1].Message, history[2].Message})
}

func TestChatMessage_Validation(t *testing.T) {
	j, _, userID := newJournal(t)
	ctx := context.Background()

	_, err := j.SaveChatMessage(ctx, userID, models.ChatMessage{Role: "system", Message: "hi"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	_, err = j.SaveChatMessage(ctx, userID, models.ChatMessage{Role: models.ChatRoleUser, Message: " "})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestClearOldChatHistory_KeepsRecentWeek(t *testing.T) {
	j, c, userID := newJournal(t)
	ctx := context.Background()

	_, err := j.SaveChatMessage(ctx, userID, models.ChatMessage{Role: models.ChatRoleUser, Message: "old"})
	require.NoError(t, err)
	c.Advance(5 * 24 * time.Hour)
	_, err = j.SaveChatMessage(ctx, userID, models.ChatMessage{Role: models.ChatRoleAssistant, Message: "recent"})
	require.NoError(t, err)
	c.Advance(3 * 24 * time.Hour)

	deleted, err := j.ClearOldChatHistory(ctx, userID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	history, err := j.ChatHistory(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "recent", history[0].Message)

	deleted, err = j.ClearOldChatHistory(ctx, userID, time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

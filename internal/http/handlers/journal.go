package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/faithpath-be/internal/http/respond"
	"github.com/hongminglow/faithpath-be/internal/journal"
	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/models/dto"
	"github.com/hongminglow/faithpath-be/internal/storage"
)

// JournalHandler exposes lesson answers, reflections and chat history.
type JournalHandler struct {
	journal  *journal.Journal
	sessions SessionResolver
	log      *zap.Logger
}

// NewJournalHandler constructs the handler.
func NewJournalHandler(j *journal.Journal, sessions SessionResolver, log *zap.Logger) *JournalHandler {
	return &JournalHandler{journal: j, sessions: sessions, log: log}
}

// Register attaches journal routes; all require a session.
func (h *JournalHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(h.sessions))
		r.Post("/lessons/{lessonID}/answers", h.handleSaveAnswer)
		r.Get("/lessons/{lessonID}/answers", h.handleListAnswers)
		r.Post("/lessons/{lessonID}/reflections", h.handleSaveReflection)
		r.Get("/reflections", h.handleListReflections)
		r.Post("/chat/messages", h.handleSaveChatMessage)
		r.Get("/chat/history", h.handleChatHistory)
		r.Delete("/chat/history", h.handleClearChatHistory)
	})
}

func (h *JournalHandler) handleSaveAnswer(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req dto.LessonAnswerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	answer, err := h.journal.SaveLessonAnswer(r.Context(), userID, chi.URLParam(r, "lessonID"), models.LessonAnswer{
		QuestionText:   req.QuestionText,
		SelectedOption: req.SelectedOption,
		IsCorrect:      req.IsCorrect,
	})
	if err != nil {
		h.writeError(w, err, "failed to save answer")
		return
	}
	respond.JSON(w, http.StatusCreated, "answer saved", answer)
}

func (h *JournalHandler) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	answers, err := h.journal.LessonAnswers(r.Context(), userID, chi.URLParam(r, "lessonID"))
	if err != nil {
		h.writeError(w, err, "failed to list answers")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(answers))
}

func (h *JournalHandler) handleSaveReflection(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req dto.ReflectionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	reflection, err := h.journal.SaveReflection(r.Context(), userID, chi.URLParam(r, "lessonID"), models.Reflection{
		ReflectionType: models.ReflectionType(req.ReflectionType),
		QuestionText:   req.QuestionText,
		UserResponse:   req.UserResponse,
		AIFeedback:     req.AIFeedback,
	})
	if err != nil {
		h.writeError(w, err, "failed to save reflection")
		return
	}
	respond.JSON(w, http.StatusCreated, "reflection saved", reflection)
}

func (h *JournalHandler) handleListReflections(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	reflections, err := h.journal.Reflections(r.Context(), userID, r.URL.Query().Get("lessonId"))
	if err != nil {
		h.writeError(w, err, "failed to list reflections")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(reflections))
}

func (h *JournalHandler) handleSaveChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req dto.ChatMessageRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	message, err := h.journal.SaveChatMessage(r.Context(), userID, models.ChatMessage{
		Message:     req.Message,
		Role:        models.ChatRole(req.Role),
		ContextType: req.ContextType,
	})
	if err != nil {
		h.writeError(w, err, "failed to save chat message")
		return
	}
	respond.JSON(w, http.StatusCreated, "message saved", message)
}

func (h *JournalHandler) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	messages, err := h.journal.ChatHistory(r.Context(), userID, limit)
	if err != nil {
		h.writeError(w, err, "failed to load chat history")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(messages))
}

func (h *JournalHandler) handleClearChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	days, ok := queryInt(w, r, "keepDays")
	if !ok {
		return
	}

	deleted, err := h.journal.ClearOldChatHistory(r.Context(), userID, time.Duration(days)*24*time.Hour)
	if err != nil {
		h.writeError(w, err, "failed to clear chat history")
		return
	}
	respond.JSON(w, http.StatusOK, "chat history cleared", dto.ChatHistoryClearedResponse{Deleted: deleted})
}

func (h *JournalHandler) writeError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, journal.ErrInvalidEntry):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
	default:
		h.log.Error(message, zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, message)
	}
}

// queryInt reads an optional non-negative integer query parameter; absent
// means zero.
func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respond.Error(w, http.StatusBadRequest, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

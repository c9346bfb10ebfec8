package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/faithpath-be/internal/http/respond"
	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/models/dto"
	"github.com/hongminglow/faithpath-be/internal/progress"
	"github.com/hongminglow/faithpath-be/internal/storage"
)

// ProgressHandler exposes activity tracking and lesson completion.
type ProgressHandler struct {
	tracker  *progress.Tracker
	sessions SessionResolver
	log      *zap.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(tracker *progress.Tracker, sessions SessionResolver, log *zap.Logger) *ProgressHandler {
	return &ProgressHandler{tracker: tracker, sessions: sessions, log: log}
}

// Register attaches progress routes to the router; all require a session.
func (h *ProgressHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(h.sessions))
		r.Get("/progress", h.handleGetProgress)
		r.Post("/progress/activity", h.handleRecordActivity)
		r.Get("/lessons/completions", h.handleListCompletions)
		r.Post("/lessons/{lessonID}/complete", h.handleCompleteLesson)
		r.Get("/lessons/{lessonID}/completed", h.handleIsCompleted)
	})
}

func (h *ProgressHandler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	p, err := h.tracker.Progress(r.Context(), userID)
	if err != nil {
		h.log.Error("load progress failed", zap.Stringer("user_id", userID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", p)
}

func (h *ProgressHandler) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var delta models.ActivityDelta
	if err := respond.Decode(r, &delta); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	p, err := h.tracker.RecordActivity(r.Context(), userID, delta)
	if err != nil {
		h.writeTrackerError(w, err, "failed to record activity")
		return
	}
	respond.JSON(w, http.StatusOK, "activity recorded", p)
}

func (h *ProgressHandler) handleListCompletions(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	completions, err := h.tracker.LessonCompletions(r.Context(), userID)
	if err != nil {
		h.log.Error("list lesson completions failed", zap.Stringer("user_id", userID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list lesson completions")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(completions))
}

func (h *ProgressHandler) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req dto.LessonCompletionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	completion, _, err := h.tracker.SaveLessonCompletion(r.Context(), userID, chi.URLParam(r, "lessonID"), req.Score)
	if err != nil {
		h.writeTrackerError(w, err, "failed to save lesson completion")
		return
	}
	respond.JSON(w, http.StatusCreated, "lesson completed", completion)
}

func (h *ProgressHandler) handleIsCompleted(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	lessonID := chi.URLParam(r, "lessonID")
	done, err := h.tracker.IsLessonCompleted(r.Context(), userID, lessonID)
	if err != nil {
		h.writeTrackerError(w, err, "failed to check lesson completion")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.LessonCompletedResponse{LessonID: lessonID, Completed: done})
}

func (h *ProgressHandler) writeTrackerError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, progress.ErrInvalidLesson):
		respond.Error(w, http.StatusBadRequest, progress.ErrInvalidLesson.Error())
	case errors.Is(err, progress.ErrInvalidDelta):
		respond.Error(w, http.StatusBadRequest, progress.ErrInvalidDelta.Error())
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
	default:
		h.log.Error(message, zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, message)
	}
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/faithpath-be/internal/auth"
	"github.com/hongminglow/faithpath-be/internal/http/respond"
	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/models/dto"
	"github.com/hongminglow/faithpath-be/internal/services"
)

// MsgPasswordMismatch is returned when the signup confirmation differs.
const MsgPasswordMismatch = "Passwords do not match"

// AuthHandler owns signup/login/logout/session and profile endpoints.
type AuthHandler struct {
	svc           *services.AuthService
	secureCookies bool
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookies: secureCookies}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(h.svc))
		r.Post("/onboarding", h.handleCompleteOnboarding)
		r.Put("/profile", h.handleUpdateProfile)
	})
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		respond.Error(w, http.StatusBadRequest, MsgPasswordMismatch)
		return
	}

	res := h.svc.Signup(r.Context(), req.Email, req.Password, req.Username)
	if !res.Success {
		respond.Error(w, statusFor(res.Kind), res.Error)
		return
	}
	auth.SetSessionCookie(w, *res.Session, h.secureCookies)
	respond.JSON(w, http.StatusCreated, "account created", dto.AuthResponse{User: *res.User})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	res := h.svc.Login(r.Context(), req.Email, req.Password)
	if !res.Success {
		respond.Error(w, statusFor(res.Kind), res.Error)
		return
	}
	auth.SetSessionCookie(w, *res.Session, h.secureCookies)
	respond.JSON(w, http.StatusOK, "login successful", dto.AuthResponse{User: *res.User})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), auth.SessionToken(r))
	auth.ClearSessionCookie(w, h.secureCookies)
	respond.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := h.svc.GetCurrentUser(r.Context(), auth.SessionToken(r))
	respond.JSON(w, http.StatusOK, "ok", dto.CurrentUserResponse{User: user})
}

func (h *AuthHandler) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req models.OnboardingAnswers
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	res := h.svc.CompleteOnboarding(r.Context(), userID, req)
	if !res.Success {
		respond.Error(w, statusFor(res.Kind), res.Error)
		return
	}
	respond.JSON(w, http.StatusOK, "onboarding completed", nil)
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req models.ProfileUpdate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	res := h.svc.UpdateProfile(r.Context(), userID, req)
	if !res.Success {
		respond.Error(w, statusFor(res.Kind), res.Error)
		return
	}
	respond.JSON(w, http.StatusOK, "profile updated", nil)
}

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

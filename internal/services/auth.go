// Package services holds the account operations behind the auth endpoints.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongminglow/faithpath-be/internal/auth"
	"github.com/hongminglow/faithpath-be/internal/models"
	"github.com/hongminglow/faithpath-be/internal/storage"
)

// Messages returned to callers of AuthService.
const (
	MsgFieldsRequired      = "All fields are required"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
	MsgPasswordTooLong     = "Password must be at most 72 characters"
	MsgEmailTaken          = "An account with this email already exists"
	MsgSignupFailed        = "Failed to create account. Please try again."
	MsgCredentialsRequired = "Email and password are required"
	MsgInvalidCredentials  = "Invalid email or password"
	MsgLoginFailed         = "Failed to log in. Please try again."
	MsgOnboardingFailed    = "Failed to complete onboarding"
	MsgUsernameRequired    = "Username is required"
	MsgProfileUpdateFailed = "Failed to update profile"
)

const (
	minPasswordLength = 6
	dummyPassword     = "faithpath-timing-equaliser"
)

// ErrorKind classifies a failed Result.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindInternal
)

// Result is the outcome of a mutating AuthService operation.
type Result struct {
	Success bool
	Error   string
	Kind    ErrorKind
}

// AuthResult is the outcome of Signup and Login. On success User and
// Session are set.
type AuthResult struct {
	Result
	User    *models.AuthenticatedUser
	Session *auth.Session
}

func ok() Result { return Result{Success: true} }

func fail(kind ErrorKind, msg string) Result {
	return Result{Error: msg, Kind: kind}
}

// AuthService implements signup, login, session resolution and profile
// state. Its methods never return Go errors: failures are logged and
// reported as human-readable messages.
type AuthService struct {
	users    storage.UserStore
	sessions storage.SessionStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenManager
	log      *zap.Logger

	// dummyDigest is compared against when an email is unknown so that
	// both login failure paths pay for one bcrypt comparison.
	dummyDigest string
}

// NewAuthService wires the service. sessions may be nil to disable the
// server-side revocation set.
func NewAuthService(users storage.UserStore, sessions storage.SessionStore, hasher *auth.PasswordHasher, tokens *auth.TokenManager, log *zap.Logger) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
	if digest, err := hasher.Hash(dummyPassword); err == nil {
		s.dummyDigest = digest
	} else {
		log.Warn("could not prepare dummy password digest", zap.Error(err))
	}
	return s
}

// Signup creates an account, its progress record and a session.
func (s *AuthService) Signup(ctx context.Context, email, password, username string) AuthResult {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || password == "" || username == "" {
		return AuthResult{Result: fail(KindValidation, MsgFieldsRequired)}
	}
	if len(password) < minPasswordLength {
		return AuthResult{Result: fail(KindValidation, MsgPasswordTooShort)}
	}
	if len(password) > auth.MaxPasswordBytes {
		return AuthResult{Result: fail(KindValidation, MsgPasswordTooLong)}
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AuthResult{Result: fail(KindConflict, MsgEmailTaken)}
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.log.Error("signup: lookup by email failed", zap.Error(err))
		return AuthResult{Result: fail(KindInternal, MsgSignupFailed)}
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error("signup: hash password failed", zap.Error(err))
		return AuthResult{Result: fail(KindInternal, MsgSignupFailed)}
	}

	created, err := s.users.CreateUser(ctx, models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return AuthResult{Result: fail(KindConflict, MsgEmailTaken)}
		}
		s.log.Error("signup: create user failed", zap.Error(err))
		return AuthResult{Result: fail(KindInternal, MsgSignupFailed)}
	}

	session, err := s.tokens.Issue(created.ID)
	if err != nil {
		s.log.Error("signup: issue session failed", zap.Stringer("user_id", created.ID), zap.Error(err))
		return AuthResult{Result: fail(KindInternal, MsgSignupFailed)}
	}

	s.log.Info("user signed up", zap.Stringer("user_id", created.ID))
	return AuthResult{
		Result: ok(),
		User: &models.AuthenticatedUser{
			ID:       created.ID,
			Email:    created.Email,
			Username: created.Username,
		},
		Session: &session,
	}
}

// Login checks credentials and issues a session. Unknown emails and wrong
// passwords produce the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) AuthResult {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{Result: fail(KindValidation, MsgCredentialsRequired)}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			return AuthResult{Result: fail(KindUnauthorized, MsgInvalidCredentials)}
		}
		s.log.Error("login: lookup by email failed", zap.Error(err))
		return AuthResult{Result: fail(KindInternal, MsgLoginFailed)}
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return AuthResult{Result: fail(KindUnauthorized, MsgInvalidCredentials)}
	}

	session, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error("login: issue session failed", zap.Stringer("user_id", user.ID), zap.Error(err))
		return AuthResult{Result: fail(KindInternal, MsgLoginFailed)}
	}

	return AuthResult{
		Result: ok(),
		User: &models.AuthenticatedUser{
			ID:                  user.ID,
			Email:               user.Email,
			Username:            user.Username,
			OnboardingCompleted: user.OnboardingCompleted,
		},
		Session: &session,
	}
}

// Logout ends the session. The caller clears the cookie; when the
// revocation set is enabled the token is also recorded as revoked. It
// always succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) Result {
	if s.sessions == nil || token == "" {
		return ok()
	}
	session, err := s.tokens.Verify(token)
	if err != nil {
		return ok()
	}
	if err := s.sessions.RevokeSession(ctx, session.ID, session.ExpiresAt); err != nil {
		s.log.Error("logout: revoke session failed", zap.Stringer("user_id", session.UserID), zap.Error(err))
	}
	return ok()
}

// ResolveSession returns the user id the token asserts, if it is valid and
// not revoked.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (uuid.UUID, bool) {
	if token == "" {
		return uuid.Nil, false
	}
	session, err := s.tokens.Verify(token)
	if err != nil {
		return uuid.Nil, false
	}
	if s.sessions != nil {
		revoked, err := s.sessions.IsSessionRevoked(ctx, session.ID)
		if err != nil {
			s.log.Error("resolve session: revocation lookup failed", zap.Error(err))
			return uuid.Nil, false
		}
		if revoked {
			return uuid.Nil, false
		}
	}
	return session.UserID, true
}

// GetCurrentUser loads the user behind token. Absence of a valid session or
// of the user yields nil.
func (s *AuthService) GetCurrentUser(ctx context.Context, token string) *models.AuthenticatedUser {
	userID, valid := s.ResolveSession(ctx, token)
	if !valid {
		return nil
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("get current user failed", zap.Stringer("user_id", userID), zap.Error(err))
		}
		return nil
	}
	public := user.Public()
	return &public
}

// CompleteOnboarding stores the questionnaire answers and marks onboarding
// complete. Repeated calls overwrite the answers.
func (s *AuthService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, answers models.OnboardingAnswers) Result {
	if err := s.users.CompleteOnboarding(ctx, userID, answers); err != nil {
		s.log.Error("complete onboarding failed", zap.Stringer("user_id", userID), zap.Error(err))
		return fail(KindInternal, MsgOnboardingFailed)
	}
	return ok()
}

// UpdateProfile overwrites the user's editable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) Result {
	update.Username = strings.TrimSpace(update.Username)
	if update.Username == "" {
		return fail(KindValidation, MsgUsernameRequired)
	}
	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		s.log.Error("update profile failed", zap.Stringer("user_id", userID), zap.Error(err))
		return fail(KindInternal, MsgProfileUpdateFailed)
	}
	return ok()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

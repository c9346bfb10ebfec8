package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 30 * 24 * time.Hour

// ErrInvalidSession is returned for every token that fails verification,
// whatever the reason.
var ErrInvalidSession = errors.New("invalid session")

// Claims is the signed payload of a session token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Session is a freshly issued token and its metadata.
type Session struct {
	ID        string
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager signing with secret. A nil clock means time.Now.
func NewTokenManager(secret string, now func() time.Time) *TokenManager {
	if now == nil {
		now = time.Now
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    now,
	}
}

// Issue signs a session token for userID.
func (t *TokenManager) Issue(userID uuid.UUID) (Session, error) {
	now := t.now()
	session := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(t.ttl),
	}
	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Session{}, err
	}
	session.Token = token
	return session, nil
}

// Verify checks the token's algorithm, signature and expiry and returns the
// session it describes. All failures collapse into ErrInvalidSession.
func (t *TokenManager) Verify(tokenString string) (Session, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidSession
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return Session{}, ErrInvalidSession
	}
	return Session{
		ID:        claims.ID,
		UserID:    userID,
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

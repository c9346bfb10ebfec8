package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokenManager("super-secret", fixedClock(now))
	userID := uuid.New()

	issued, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if !issued.ExpiresAt.Equal(now.Add(30 * 24 * time.Hour)) {
		t.Fatalf("expiry mismatch: got %v", issued.ExpiresAt)
	}

	got, err := tokens.Verify(issued.Token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got.UserID != userID {
		t.Fatalf("userID mismatch: got %s want %s", got.UserID, userID)
	}
	if got.ID != issued.ID || got.ID == "" {
		t.Fatalf("session id mismatch: got %q want %q", got.ID, issued.ID)
	}
}

func TestIssue_UsesUserIDClaim(t *testing.T) {
	t.Parallel()

	tokens := NewTokenManager("secret", nil)
	userID := uuid.New()
	issued, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(issued.Token, claims); err != nil {
		t.Fatalf("ParseUnverified error: %v", err)
	}
	if claims["userId"] != userID.String() {
		t.Fatalf("userId claim = %v", claims["userId"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatal("exp claim missing")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	tokens := NewTokenManager("secret", func() time.Time { return clock })

	issued, err := tokens.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	clock = issuedAt.Add(29 * 24 * time.Hour)
	if _, err := tokens.Verify(issued.Token); err != nil {
		t.Fatalf("token should still be valid on day 29: %v", err)
	}

	clock = issuedAt.Add(SessionTTL + time.Second)
	if _, err := tokens.Verify(issued.Token); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for expired token, got %v", err)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	tokens := NewTokenManager("secret", nil)
	issued, err := tokens.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(issued.Token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := tokens.Verify(tampered); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for tampered token, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issued, err := NewTokenManager("right-secret", nil).Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := NewTokenManager("wrong-secret", nil).Verify(issued.Token); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenManager("secret", nil).Verify(token); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for HS512 token, got %v", err)
	}
}

func TestVerify_RejectsMissingExpiryAndBadSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: uuid.NewString()}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tokens := NewTokenManager(string(secret), nil)
	for name, tok := range map[string]string{
		"no expiry":   noExpiry,
		"bad subject": badSubject,
		"malformed":   "not.a.jwt",
		"empty":       "",
	} {
		if _, err := tokens.Verify(tok); err != ErrInvalidSession {
			t.Fatalf("%s: expected ErrInvalidSession, got %v", name, err)
		}
	}
}

package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type staticUUID struct{}

func (staticUUID) Generate() string { return "token-id" }

func newTestJWT(t *testing.T, clk clocker) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:     []byte(strings.Repeat("s", 64)),
		Issuer:     "gotp",
		Audiences:  []string{"gotp"},
		TTLMinutes: time.Hour,
		Clock:      clk,
		UUID:       staticUUID{},
	})
	if err != nil {
		t.Fatalf("expected jwt to build, got %v", err)
	}
	return j
}

func TestSymmetric(t *testing.T) {
	t.Run("RoundTripCarriesRole", func(t *testing.T) {
		j := newTestJWT(t, fixedClock{t: time.Now()})

		token, err := j.Generate(7, "user@example.com", "admin")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		claims, err := j.Verify(token)
		if err != nil {
			t.Fatalf("expected valid token, got %v", err)
		}
		if claims.UserID != 7 || claims.UserEmail != "user@example.com" || claims.UserRole != "admin" {
			t.Fatalf("expected claims to round-trip, got %+v", claims)
		}
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		j := newTestJWT(t, fixedClock{t: time.Now().Add(-2 * time.Hour)})

		token, err := j.Generate(7, "user@example.com", "user")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := j.Verify(token); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("ShortKeyRejected", func(t *testing.T) {
		_, err := NewHS512(Config{Secret: []byte("short")})
		if !errors.Is(err, ErrSigningKeyTooShort) {
			t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
		}
	})

	t.Run("TamperedTokenRejected", func(t *testing.T) {
		j := newTestJWT(t, fixedClock{t: time.Now()})

		token, err := j.Generate(7, "user@example.com", "user")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := j.Verify(token + "x"); err == nil {
			t.Fatalf("expected tampered token to be rejected")
		}
	})
}

package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/auth"
	"github.com/agendahub/booking-backend/internal/domain"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", 15*time.Minute)
	userID := uuid.New()

	signed, err := issuer.Issue(userID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := issuer.Verify(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Fatalf("expected %s, got %s", userID, got)
	}
}

func TestTokenIssuer_ExpiredToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Minute)

	signed, err := issuer.Issue(uuid.New(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := issuer.Verify(signed); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	signed, err := auth.NewTokenIssuer("secret-a", time.Minute).Issue(uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := auth.NewTokenIssuer("secret-b", time.Minute).Verify(signed); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Minute)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := issuer.Verify(tok); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("token %q: expected ErrInvalidCredentials, got %v", tok, err)
		}
	}
}

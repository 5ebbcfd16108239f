package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/auth"
	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/domain"
	"github.com/agendahub/booking-backend/internal/repository"
)

var signupReq = domain.SignupRequest{
	Email:    "ana@example.com",
	Password: "correct horse",
}

func newService() (*auth.Service, *repository.MockUserRepository) {
	users := repository.NewMockUserRepository()
	issuer := auth.NewTokenIssuer("test-secret", 15*time.Minute)
	svc := auth.NewService(users, issuer, 7*24*time.Hour, clock.System(), zap.NewNop())
	return svc, users
}

func TestSignup(t *testing.T) {
	svc, users := newService()

	pair, err := svc.Signup(context.Background(), signupReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("expected token_type bearer, got %s", pair.TokenType)
	}
	if !strings.Contains(pair.RefreshToken, ".") {
		t.Fatalf("expected <id>.<secret> refresh token, got %q", pair.RefreshToken)
	}

	// The access token identifies the created user.
	userID, err := svc.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	user, err := users.GetUserByEmail(context.Background(), signupReq.Email)
	if err != nil {
		t.Fatalf("expected the user persisted: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, userID)
	}
	if user.PasswordHash == signupReq.Password {
		t.Fatal("expected the password to be hashed")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupReq); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(ctx, signupReq); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	bad := signupReq
	bad.Email = "not-an-address"
	if _, err := svc.Signup(ctx, bad); !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	bad = signupReq
	bad.Password = "short"
	if _, err := svc.Signup(ctx, bad); !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupReq); err != nil {
		t.Fatalf("signup: %v", err)
	}

	pair, err := svc.Login(ctx, domain.LoginRequest{Email: signupReq.Email, Password: signupReq.Password})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupReq); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Unknown email and wrong password are indistinguishable.
	_, err := svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: signupReq.Password})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	_, err = svc.Login(ctx, domain.LoginRequest{Email: signupReq.Email, Password: "wrong password"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefresh_Rotation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupReq)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatal("expected a new refresh token after rotation")
	}

	// The redeemed token is revoked: a second redemption must fail.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken on reuse, got %v", err)
	}

	// The rotated token still works.
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token: unexpected error: %v", err)
	}
}

func TestRefresh_Expired(t *testing.T) {
	users := repository.NewMockUserRepository()
	issuer := auth.NewTokenIssuer("test-secret", 15*time.Minute)
	past := clock.Fixed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := auth.NewService(users, issuer, time.Hour, past, zap.NewNop())
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupReq)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Same store, but the clock is now past the refresh TTL.
	later := clock.Fixed(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	svcLater := auth.NewService(users, issuer, time.Hour, later, zap.NewNop())
	if _, err := svcLater.Refresh(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRefresh_Malformed(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	for _, tok := range []string{"", "no-dot", "not-a-uuid.secret", "1b671a64-40d5-491e-99b0-da01ff1f3341."} {
		if _, err := svc.Refresh(ctx, tok); !errors.Is(err, domain.ErrInvalidRefreshToken) {
			t.Fatalf("token %q: expected ErrInvalidRefreshToken, got %v", tok, err)
		}
	}
}

func TestRefresh_WrongSecret(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupReq)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	id, _, _ := strings.Cut(pair.RefreshToken, ".")
	if _, err := svc.Refresh(ctx, id+".deadbeef"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	pair, err := svc.Signup(ctx, signupReq)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}

	// Logging out twice, or with garbage, is not an error.
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := svc.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("garbage logout: %v", err)
	}
}

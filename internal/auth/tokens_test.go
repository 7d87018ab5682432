package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/viewtube/backend/internal/models"
)

func testUser() models.User {
	return models.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Minute, time.Hour)

	pair, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens to be issued, got %+v", pair)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	claims, err := svc.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected access claims: %+v", claims)
	}

	subject, err := svc.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh token: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("expected refresh subject user-1, got %s", subject)
	}
}

func TestTokenServiceRejectsCrossClassTokens(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Minute, time.Hour)

	pair, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	if _, err := svc.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken verifying refresh token as access, got %v", err)
	}
	if _, err := svc.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken verifying access token as refresh, got %v", err)
	}
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("access-secret", "refresh-secret", time.Minute, time.Hour)
	verifier := NewTokenService("other-access", "other-refresh", time.Minute, time.Hour)

	pair, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	if _, err := verifier.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenServiceRejectsExpiredTokens(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Minute, time.Hour)

	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.WithNowFunc(func() time.Time { return issuedAt })

	pair, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	svc.WithNowFunc(time.Now)

	if _, err := svc.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired access token, got %v", err)
	}
	if _, err := svc.VerifyRefresh(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired refresh token, got %v", err)
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("Sup3r$afe")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "Sup3r$afe" {
		t.Fatal("password stored in clear")
	}

	if err := CheckPassword(hash, "Sup3r$afe"); err != nil {
		t.Fatalf("check password: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

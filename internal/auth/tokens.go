package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/viewtube/backend/internal/models"
)

var (
	// ErrInvalidToken indicates the credential failed signature, expiry, or
	// claim validation.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AccessClaims is the payload carried by short-lived access tokens.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload carried by long-lived refresh tokens.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies the JWT credential pair. Access and
// refresh tokens are signed with independent secrets so leaking one class
// never compromises the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

// NewTokenService constructs a TokenService with the provided secrets and TTLs.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Issue creates a fresh access/refresh pair bound to the provided user.
func (s *TokenService) Issue(user models.User) (models.TokenPair, error) {
	if user.ID == "" {
		return models.TokenPair{}, errors.New("user id must be provided")
	}

	now := s.now().UTC()
	accessExpires := now.Add(s.accessTTL)
	refreshExpires := now.Add(s.refreshTTL)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpires),
			Issuer:    "viewtube-backend",
		},
	})
	accessToken, err := access.SignedString(s.accessSecret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpires),
			Issuer:    "viewtube-backend",
		},
	})
	refreshToken, err := refresh.SignedString(s.refreshSecret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (s *TokenService) VerifyAccess(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := s.parse(token, &claims, s.accessSecret); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token and returns the subject user id.
func (s *TokenService) VerifyRefresh(token string) (string, error) {
	var claims RefreshClaims
	if err := s.parse(token, &claims, s.refreshSecret); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

// WithNowFunc overrides the time source. Tests only.
func (s *TokenService) WithNowFunc(now func() time.Time) {
	s.now = now
}

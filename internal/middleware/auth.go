package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/viewtube/backend/internal/auth"
	"github.com/viewtube/backend/internal/models"
)

type userContextKey struct{}

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccess(token string) (auth.AccessClaims, error)
}

// UserLoader resolves the authenticated user record behind a token subject.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Authenticator guards routes that require a logged-in user. Credentials are
// read from the accessToken cookie or a bearer Authorization header.
type Authenticator struct {
	tokens TokenVerifier
	users  UserLoader
}

// NewAuthenticator constructs the auth guard.
func NewAuthenticator(tokens TokenVerifier, users UserLoader) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Require rejects unauthenticated requests with 401 and otherwise stores the
// resolved user in the request context.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "missing access token")
			return
		}

		claims, err := a.tokens.VerifyAccess(token)
		if err != nil {
			unauthorized(w, "invalid access token")
			return
		}

		user, err := a.users.FindByID(r.Context(), claims.Subject)
		if err != nil {
			unauthorized(w, "invalid access token")
			return
		}

		// Handlers only ever see the public projection. Credential
		// fields stay behind the repository boundary.
		user.Password = ""
		user.RefreshToken = ""

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFrom returns the authenticated user stored by Require.
func UserFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(models.User)
	return user, ok
}

// WithUser stores a user in the context. Intended for handler tests that
// bypass Require.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": http.StatusUnauthorized,
		"message":    message,
		"errors":     []string{},
		"data":       nil,
		"success":    false,
	})
}

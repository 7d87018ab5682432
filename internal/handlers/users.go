package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/auth"
	"github.com/viewtube/backend/internal/logging"
	"github.com/viewtube/backend/internal/middleware"
	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/repositories"
)

// UserHandler implements account, session, and channel profile endpoints.
type UserHandler struct {
	Users         UserStore
	Tokens        TokenIssuer
	Media         MediaStore
	Catalog       Catalog
	AuthLimiter   RateLimiter
	UploadTempDir string
	MaxUploadSize int64
	NowFunc       func() time.Time
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

type sessionResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Register handles POST /api/v1/users/register. The payload is multipart:
// text fields fullName, email, username, password plus an avatar file and an
// optional coverImage file.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.AuthLimiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many registration attempts, slow down")
		return
	}

	if !parseMultipart(w, r, h.MaxUploadSize) {
		return
	}

	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	fullName := strings.TrimSpace(r.FormValue("fullName"))
	password := r.FormValue("password")

	var problems []string
	problems = append(problems, validateUsername(username)...)
	problems = append(problems, validateEmail(email)...)
	problems = append(problems, validateFullName(fullName)...)
	problems = append(problems, validatePassword(password)...)
	if len(problems) > 0 {
		respondError(ctx, w, http.StatusBadRequest, "registration payload is invalid", problems...)
		return
	}

	if _, err := h.Users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		respondError(ctx, w, http.StatusConflict, "an account with that username or email already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
		return
	}

	// Hash first so a failure here never leaves orphaned blobs behind.
	hashed, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	avatarPath, err := stageUpload(r, "avatar", h.UploadTempDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "avatar file is required")
			return
		}
		logger.Error("register failed to stage avatar", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process avatar upload")
		return
	}

	avatar, err := h.Media.Store(ctx, avatarPath, "avatars")
	if err != nil {
		logger.Error("register failed to upload avatar", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	var cover models.MediaAsset
	if coverPath, err := stageUpload(r, "coverImage", h.UploadTempDir); err == nil {
		cover, err = h.Media.Store(ctx, coverPath, "covers")
		if err != nil {
			logger.Error("register failed to upload cover image", "error", err)
			h.Media.Remove(ctx, avatar.Key, "avatar")
			respondError(ctx, w, http.StatusInternalServerError, "failed to store cover image")
			return
		}
	} else if !errors.Is(err, errMissingFile) {
		logger.Error("register failed to stage cover image", "error", err)
		h.Media.Remove(ctx, avatar.Key, "avatar")
		respondError(ctx, w, http.StatusInternalServerError, "failed to process cover image upload")
		return
	}

	now := h.now()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   hashed,
		Avatar:     avatar,
		CoverImage: cover,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		h.Media.Remove(ctx, avatar.Key, "avatar")
		if cover.Key != "" {
			h.Media.Remove(ctx, cover.Key, "cover image")
		}
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "an account with that username or email already exists")
			return
		}
		logger.Error("register failed to create user", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create account")
		return
	}

	respond(ctx, w, http.StatusCreated, "account registered", user)
}

// Login handles POST /api/v1/users/login with a username or email plus
// password. A fresh token pair is issued and mirrored in HTTP-only cookies.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.AuthLimiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts, slow down")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if (req.Username == "" && req.Email == "") || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "username or email and password are required")
		return
	}

	user, err := h.Users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		logger.Warn("login user lookup failed", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := h.issueSession(w, r, user)
	if err != nil {
		return
	}

	respond(ctx, w, http.StatusOK, "logged in", sessionResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout handles PATCH /api/v1/users/logout. The stored refresh token is
// cleared so outstanding refresh credentials stop working.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	if err := h.Users.ClearRefreshToken(ctx, user.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		logging.FromContext(ctx).Error("logout failed to clear refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to log out")
		return
	}

	clearAuthCookies(w)
	respond(ctx, w, http.StatusOK, "logged out", nil)
}

// Refresh handles GET /api/v1/users/refresh-token. The refresh credential
// is read from the refreshToken cookie or the request body, must verify, and
// must match the token stored for the user. Success rotates the pair.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.AuthLimiter, r, "refresh") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many refresh attempts, slow down")
		return
	}

	token := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = strings.TrimSpace(req.RefreshToken)
		}
	}
	if token == "" {
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is required")
		return
	}

	subject, err := h.Tokens.VerifyRefresh(token)
	if err != nil {
		logger.Warn("refresh token rejected", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.Users.FindByID(ctx, subject)
	if err != nil {
		logger.Warn("refresh user lookup failed", "error", err, "userId", subject)
		respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	if user.RefreshToken == "" || user.RefreshToken != token {
		logger.Warn("refresh token does not match stored credential", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is expired or revoked")
		return
	}

	pair, err := h.issueSession(w, r, user)
	if err != nil {
		return
	}

	respond(ctx, w, http.StatusOK, "session refreshed", sessionResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// CurrentUser handles GET /api/v1/users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)
	respond(ctx, w, http.StatusOK, "current user", user)
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	user, _ := middleware.UserFrom(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The context user carries no credentials, so the stored hash is
	// fetched fresh from the repository.
	stored, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "account not found", "failed to load account")
		return
	}

	if err := auth.CheckPassword(stored.Password, req.OldPassword); err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "old password is incorrect")
		return
	}

	if problems := validatePassword(req.NewPassword); len(problems) > 0 {
		respondError(ctx, w, http.StatusBadRequest, "new password is invalid", problems...)
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("change password failed to hash", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	if err := h.Users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		respondStoreError(ctx, w, err, "account not found", "failed to change password")
		return
	}

	respond(ctx, w, http.StatusOK, "password changed", nil)
}

// UpdateAccount handles PATCH /api/v1/users/update-account. Absent fields
// keep their stored values.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FullName == nil && req.Email == nil {
		respondError(ctx, w, http.StatusBadRequest, "at least one of fullName or email is required")
		return
	}

	var problems []string
	if req.FullName != nil {
		trimmed := strings.TrimSpace(*req.FullName)
		req.FullName = &trimmed
		problems = append(problems, validateFullName(trimmed)...)
	}
	if req.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &lowered
		problems = append(problems, validateEmail(lowered)...)
	}
	if len(problems) > 0 {
		respondError(ctx, w, http.StatusBadRequest, "account payload is invalid", problems...)
		return
	}

	updated, err := h.Users.UpdateProfile(ctx, user.ID, req.FullName, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email is already in use")
			return
		}
		respondStoreError(ctx, w, err, "account not found", "failed to update account")
		return
	}

	respond(ctx, w, http.StatusOK, "account updated", updated)
}

// UpdateAvatar handles PATCH /api/v1/users/avatar with a multipart avatar
// file. The previous blob is removed best-effort after the swap.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, "avatar", "avatars", func(u models.User) string { return u.Avatar.Key }, h.Users.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image with a multipart
// coverImage file.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, "coverImage", "covers", func(u models.User) string { return u.CoverImage.Key }, h.Users.UpdateCoverImage)
}

func (h UserHandler) updateMedia(w http.ResponseWriter, r *http.Request, field, folder string, oldKey func(models.User) string, apply func(ctx context.Context, id string, asset models.MediaAsset) (models.User, error)) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	user, _ := middleware.UserFrom(ctx)

	if !parseMultipart(w, r, h.MaxUploadSize) {
		return
	}

	stagedPath, err := stageUpload(r, field, h.UploadTempDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, field+" file is required")
			return
		}
		logger.Error("failed to stage media upload", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process upload")
		return
	}

	asset, err := h.Media.Store(ctx, stagedPath, folder)
	if err != nil {
		logger.Error("failed to upload media", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	updated, err := apply(ctx, user.ID, asset)
	if err != nil {
		h.Media.Remove(ctx, asset.Key, field)
		respondStoreError(ctx, w, err, "account not found", "failed to update "+field)
		return
	}

	if key := oldKey(user); key != "" {
		h.Media.Remove(ctx, key, field)
	}

	respond(ctx, w, http.StatusOK, field+" updated", updated)
}

// ChannelProfile handles GET /api/v1/users/c/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := middleware.UserFrom(ctx)

	username := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "username")))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.Catalog.ChannelProfileByUsername(ctx, username, viewer.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to load channel profile")
		return
	}

	respond(ctx, w, http.StatusOK, "channel profile", profile)
}

// WatchHistory handles GET /api/v1/users/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	history, err := h.Catalog.WatchHistory(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "history not found", "failed to load watch history")
		return
	}

	respond(ctx, w, http.StatusOK, "watch history", history)
}

func (h UserHandler) issueSession(w http.ResponseWriter, r *http.Request, user models.User) (models.TokenPair, error) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	pair, err := h.Tokens.Issue(user)
	if err != nil {
		logger.Error("failed to issue tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return models.TokenPair{}, err
	}

	if err := h.Users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		logger.Error("failed to persist refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return models.TokenPair{}, err
	}

	setAuthCookies(w, pair)
	return pair, nil
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func setAuthCookies(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    pair.AccessToken,
		Path:     "/",
		Expires:  pair.AccessExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  pair.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

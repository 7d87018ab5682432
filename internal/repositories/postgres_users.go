package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/viewtube/backend/internal/db"
	"github.com/viewtube/backend/internal/models"
)

const userColumns = `id, username, email, full_name, password_hash,
        avatar_url, avatar_key, cover_image_url, cover_image_key,
        refresh_token, created_at, updated_at`

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record. Username and email uniqueness is
// enforced by the schema and surfaces as ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, password_hash,
                avatar_url, avatar_key, cover_image_url, cover_image_key,
                created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, user.ID, user.Username, user.Email, user.FullName, user.Password,
		user.Avatar.URL, user.Avatar.Key, user.CoverImage.URL, user.CoverImage.Key,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByUsername fetches a user by their lowercase username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, `WHERE username = $1`, username)
}

// FindByEmail fetches a user by their lowercase email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

// FindByUsernameOrEmail fetches the first user matching either key.
func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error) {
	return r.findOne(ctx, `WHERE username = $1 OR email = $2`, username, email)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, where string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, args...)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// UpdateProfile modifies the display name and/or email; nil fields keep
// their stored value. Returns the updated record.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id string, fullName, email *string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE users
        SET full_name = COALESCE($2, full_name),
            email = COALESCE($3, email),
            updated_at = $4
        WHERE id = $1
        RETURNING `+userColumns+`
    `, id, fullName, email, time.Now().UTC())

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("update user profile: %w", err)
	}

	return user, nil
}

// UpdateAvatar swaps the user's avatar asset.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id string, avatar models.MediaAsset) (models.User, error) {
	return r.updateAsset(ctx, id, `avatar_url`, `avatar_key`, avatar)
}

// UpdateCoverImage swaps the user's cover image asset.
func (r *PostgresUserRepository) UpdateCoverImage(ctx context.Context, id string, cover models.MediaAsset) (models.User, error) {
	return r.updateAsset(ctx, id, `cover_image_url`, `cover_image_key`, cover)
}

func (r *PostgresUserRepository) updateAsset(ctx context.Context, id, urlCol, keyCol string, asset models.MediaAsset) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE users
        SET `+urlCol+` = $2, `+keyCol+` = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+userColumns+`
    `, id, asset.URL, asset.Key, time.Now().UTC())

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("update user media: %w", err)
	}

	return user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `
        UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
    `, id, passwordHash, time.Now().UTC())
}

// SetRefreshToken stores the user's current refresh credential.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, id, refreshToken string) error {
	return r.exec(ctx, `
        UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1
    `, id, refreshToken, time.Now().UTC())
}

// ClearRefreshToken drops the stored refresh credential at logout.
func (r *PostgresUserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.exec(ctx, `
        UPDATE users SET refresh_token = NULL, updated_at = $2 WHERE id = $1
    `, id, time.Now().UTC())
}

// AddWatchHistory records that the user watched the video, moving it to the
// front of their history when already present.
func (r *PostgresUserRepository) AddWatchHistory(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, userID, videoID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("upsert watch history: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) exec(ctx context.Context, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user         models.User
		coverURL     sql.NullString
		coverKey     sql.NullString
		refreshToken sql.NullString
	)

	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.Password, &user.Avatar.URL, &user.Avatar.Key,
		&coverURL, &coverKey, &refreshToken,
		&user.CreatedAt, &user.UpdatedAt); err != nil {
		return models.User{}, err
	}

	user.CoverImage.URL = coverURL.String
	user.CoverImage.Key = coverKey.String
	user.RefreshToken = refreshToken.String

	return user, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/viewtube/backend/internal/db"
	"github.com/viewtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips the like state for (target, user): an existing like is removed
// and liked=false reported, otherwise a like is created and liked=true
// reported. Concurrent toggles on the same pair race on the unique index and
// the loser sees ErrConflict.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, target models.LikeTarget, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var existingID string
	err = conn.QueryRow(ctx, `
        SELECT id FROM likes
        WHERE target_kind = $1 AND target_id = $2 AND liked_by = $3
    `, target.Kind, target.ID, userID).Scan(&existingID)
	switch {
	case err == nil:
		tag, err := conn.Exec(ctx, `DELETE FROM likes WHERE id = $1`, existingID)
		if err != nil {
			return false, fmt.Errorf("delete like: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return false, ErrConflict
		}
		return false, nil
	case errors.Is(err, pgx.ErrNoRows):
		_, err = conn.Exec(ctx, `
            INSERT INTO likes (id, target_kind, target_id, liked_by, created_at)
            VALUES ($1, $2, $3, $4, $5)
        `, uuid.NewString(), target.Kind, target.ID, userID, time.Now().UTC())
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				switch pgErr.Code {
				case "23505":
					return false, ErrConflict
				case "23503":
					return false, ErrNotFound
				}
			}
			return false, fmt.Errorf("insert like: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("select like: %w", err)
	}
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)

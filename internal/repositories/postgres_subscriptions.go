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
)

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// channel subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository
// backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the subscription state for (subscriber, channel). An existing
// subscription is removed and subscribed=false reported, otherwise one is
// created and subscribed=true reported. The loser of a concurrent toggle on
// the same pair sees ErrConflict.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var existingID string
	err = conn.QueryRow(ctx, `
        SELECT id FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID).Scan(&existingID)
	switch {
	case err == nil:
		tag, err := conn.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, existingID)
		if err != nil {
			return false, fmt.Errorf("delete subscription: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return false, ErrConflict
		}
		return false, nil
	case errors.Is(err, pgx.ErrNoRows):
		_, err = conn.Exec(ctx, `
            INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
            VALUES ($1, $2, $3, $4)
        `, uuid.NewString(), subscriberID, channelID, time.Now().UTC())
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
			return false, fmt.Errorf("insert subscription: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("select subscription: %w", err)
	}
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)

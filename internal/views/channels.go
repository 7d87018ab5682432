package views

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/viewtube/backend/internal/repositories"
)

// ChannelProfileByUsername resolves a channel page by username, counting
// subscribers and subscriptions and marking whether the viewer subscribes.
// viewerID may be empty for anonymous requests.
func (v *Views) ChannelProfileByUsername(ctx context.Context, username, viewerID string) (ChannelProfile, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.email, u.full_name, u.avatar_url, u.cover_image_url,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to,
               EXISTS (SELECT 1 FROM subscriptions s
                WHERE s.channel_id = u.id AND s.subscriber_id = $2) AS is_subscribed,
               u.created_at
        FROM users u
        WHERE u.username = $1
    `, username, viewerID)

	var (
		profile ChannelProfile
		cover   sql.NullString
	)
	if err := row.Scan(&profile.ID, &profile.Username, &profile.Email,
		&profile.FullName, &profile.Avatar, &cover,
		&profile.SubscribersCount, &profile.SubscribedToCount,
		&profile.IsSubscribed, &profile.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ChannelProfile{}, repositories.ErrNotFound
		}
		return ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}
	profile.CoverImage = cover.String

	return profile, nil
}

// ChannelSubscribers lists the users subscribed to a channel, newest first.
func (v *Views) ChannelSubscribers(ctx context.Context, channelID string) ([]UserSummary, error) {
	return v.queryUserSummaries(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
}

// SubscribedChannels lists the channels a user subscribes to, newest first.
func (v *Views) SubscribedChannels(ctx context.Context, subscriberID string) ([]UserSummary, error) {
	return v.queryUserSummaries(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
}

func (v *Views) queryUserSummaries(ctx context.Context, query string, args ...any) ([]UserSummary, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := make([]UserSummary, 0)
	for rows.Next() {
		var user UserSummary
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &user.Avatar); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

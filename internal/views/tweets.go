package views

import (
	"context"
	"fmt"
)

// TweetsByUser returns a user's tweets with like counters, newest first.
// viewerID may be empty.
func (v *Views) TweetsByUser(ctx context.Context, ownerID, viewerID string) ([]TweetWithOwner, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT t.id, t.owner_id, t.content, t.created_at, t.updated_at,
               u.id, u.username, u.full_name, u.avatar_url,
               (SELECT COUNT(*) FROM likes l
                WHERE l.target_kind = 'tweet' AND l.target_id = t.id) AS likes_count,
               EXISTS (SELECT 1 FROM likes l
                WHERE l.target_kind = 'tweet' AND l.target_id = t.id AND l.liked_by = $2) AS is_liked
        FROM tweets t
        JOIN users u ON u.id = t.owner_id
        WHERE t.owner_id = $1
        ORDER BY t.created_at DESC
    `, ownerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("select tweets: %w", err)
	}
	defer rows.Close()

	tweets := make([]TweetWithOwner, 0)
	for rows.Next() {
		var tweet TweetWithOwner
		if err := rows.Scan(&tweet.ID, &tweet.OwnerID, &tweet.Content,
			&tweet.CreatedAt, &tweet.UpdatedAt,
			&tweet.Owner.ID, &tweet.Owner.Username, &tweet.Owner.FullName,
			&tweet.Owner.Avatar, &tweet.LikesCount, &tweet.IsLiked); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}

	return tweets, nil
}

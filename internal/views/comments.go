package views

import (
	"context"
	"fmt"
)

// CommentsForVideo returns a page of a video's comments with their authors
// and like counters, newest first. viewerID may be empty.
func (v *Views) CommentsForVideo(ctx context.Context, videoID, viewerID string, page, limit int) ([]CommentWithOwner, PageMeta, error) {
	page, limit = normalizePage(page, limit)

	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.video_id, c.owner_id, c.content, c.created_at, c.updated_at,
               u.id, u.username, u.full_name, u.avatar_url,
               (SELECT COUNT(*) FROM likes l
                WHERE l.target_kind = 'comment' AND l.target_id = c.id) AS likes_count,
               EXISTS (SELECT 1 FROM likes l
                WHERE l.target_kind = 'comment' AND l.target_id = c.id AND l.liked_by = $2) AS is_liked,
               COUNT(*) OVER() AS total
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC
        LIMIT $3 OFFSET $4
    `, videoID, viewerID, limit, (page-1)*limit)
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("select comments: %w", err)
	}
	defer rows.Close()

	comments := make([]CommentWithOwner, 0, limit)
	var total int64
	for rows.Next() {
		var comment CommentWithOwner
		if err := rows.Scan(&comment.ID, &comment.VideoID, &comment.OwnerID,
			&comment.Content, &comment.CreatedAt, &comment.UpdatedAt,
			&comment.Owner.ID, &comment.Owner.Username, &comment.Owner.FullName,
			&comment.Owner.Avatar, &comment.LikesCount, &comment.IsLiked,
			&total); err != nil {
			return nil, PageMeta{}, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, PageMeta{}, fmt.Errorf("iterate comments: %w", err)
	}
	rows.Close()

	// The window count vanishes with the rows, so a page past the end
	// needs a plain count to keep the total truthful.
	if len(comments) == 0 {
		if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID).Scan(&total); err != nil {
			return nil, PageMeta{}, fmt.Errorf("count comments: %w", err)
		}
	}

	return comments, newPageMeta(page, limit, total), nil
}

package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/viewtube/backend/internal/repositories"
)

// PlaylistByID returns a playlist with its member videos in playlist order.
func (v *Views) PlaylistByID(ctx context.Context, id string) (PlaylistDetail, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return PlaylistDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, name, description, created_at, updated_at
        FROM playlists
        WHERE id = $1
    `, id)

	var detail PlaylistDetail
	if err := row.Scan(&detail.ID, &detail.OwnerID, &detail.Name,
		&detail.Description, &detail.CreatedAt, &detail.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PlaylistDetail{}, repositories.ErrNotFound
		}
		return PlaylistDetail{}, fmt.Errorf("select playlist: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoOwnerColumns+`
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.position
    `, id)
	if err != nil {
		return PlaylistDetail{}, fmt.Errorf("select playlist videos: %w", err)
	}
	defer rows.Close()

	detail.Videos = make([]VideoWithOwner, 0)
	for rows.Next() {
		video, err := scanVideoWithOwner(rows)
		if err != nil {
			return PlaylistDetail{}, fmt.Errorf("scan playlist video: %w", err)
		}
		detail.Videos = append(detail.Videos, video)
		detail.VideoIDs = append(detail.VideoIDs, video.ID)
	}
	if err := rows.Err(); err != nil {
		return PlaylistDetail{}, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return detail, nil
}

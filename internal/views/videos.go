package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/repositories"
)

const videoOwnerColumns = `v.id, v.owner_id, v.video_url, v.video_key,
        v.thumbnail_url, v.thumbnail_key, v.title, v.description, v.views,
        v.duration, v.published, v.created_at, v.updated_at,
        u.id, u.username, u.full_name, u.avatar_url`

// ListVideosOptions filters and paginates the public video catalogue.
type ListVideosOptions struct {
	// Query matches against title and description when non-empty.
	Query string
	// OwnerID restricts results to one channel when non-empty.
	OwnerID string
	// SortBy is one of created_at, views, duration, or title.
	SortBy string
	// SortOrder is asc or desc.
	SortOrder string
	Page      int
	Limit     int
}

var videoSortColumns = map[string]string{
	"created_at": "v.created_at",
	"views":      "v.views",
	"duration":   "v.duration",
	"title":      "v.title",
}

// ListVideos returns published videos with their owners, filtered, sorted,
// and paginated. Unknown sort columns fall back to created_at descending.
func (v *Views) ListVideos(ctx context.Context, opts ListVideosOptions) ([]VideoWithOwner, PageMeta, error) {
	page, limit := normalizePage(opts.Page, opts.Limit)

	var filter strings.Builder
	filter.WriteString(`
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.published = TRUE`)

	filterArgs := make([]any, 0, 2)
	if opts.Query != "" {
		filterArgs = append(filterArgs, "%"+opts.Query+"%")
		n := len(filterArgs)
		fmt.Fprintf(&filter, " AND (v.title ILIKE $%d OR v.description ILIKE $%d)", n, n)
	}
	if opts.OwnerID != "" {
		filterArgs = append(filterArgs, opts.OwnerID)
		fmt.Fprintf(&filter, " AND v.owner_id = $%d", len(filterArgs))
	}

	sortCol, ok := videoSortColumns[opts.SortBy]
	if !ok {
		sortCol = "v.created_at"
	}
	order := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT `+videoOwnerColumns+`, COUNT(*) OVER() AS total%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		filter.String(), sortCol, order, len(filterArgs)+1, len(filterArgs)+2)
	args := append(append(make([]any, 0, len(filterArgs)+2), filterArgs...), limit, (page-1)*limit)

	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("select videos: %w", err)
	}
	defer rows.Close()

	videos := make([]VideoWithOwner, 0, limit)
	var total int64
	for rows.Next() {
		video, rowTotal, err := scanVideoWithOwnerTotal(rows)
		if err != nil {
			return nil, PageMeta{}, fmt.Errorf("scan video: %w", err)
		}
		total = rowTotal
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, PageMeta{}, fmt.Errorf("iterate videos: %w", err)
	}
	rows.Close()

	// The window count vanishes with the rows, so a page past the end
	// needs a plain count to keep the total truthful.
	if len(videos) == 0 {
		if err := conn.QueryRow(ctx, `SELECT COUNT(*)`+filter.String(), filterArgs...).Scan(&total); err != nil {
			return nil, PageMeta{}, fmt.Errorf("count videos: %w", err)
		}
	}

	return videos, newPageMeta(page, limit, total), nil
}

// VideoByID returns one video with its owner and the viewer's like state.
// viewerID may be empty for anonymous requests.
func (v *Views) VideoByID(ctx context.Context, id, viewerID string) (VideoDetail, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return VideoDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoOwnerColumns+`,
               (SELECT COUNT(*) FROM likes l
                WHERE l.target_kind = 'video' AND l.target_id = v.id) AS likes_count,
               EXISTS (SELECT 1 FROM likes l
                WHERE l.target_kind = 'video' AND l.target_id = v.id AND l.liked_by = $2) AS is_liked
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, id, viewerID)

	var detail VideoDetail
	if err := row.Scan(&detail.ID, &detail.OwnerID, &detail.VideoFile.URL,
		&detail.VideoFile.Key, &detail.Thumbnail.URL, &detail.Thumbnail.Key,
		&detail.Title, &detail.Description, &detail.Views, &detail.Duration,
		&detail.Published, &detail.CreatedAt, &detail.UpdatedAt,
		&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.FullName,
		&detail.Owner.Avatar, &detail.LikesCount, &detail.IsLiked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VideoDetail{}, repositories.ErrNotFound
		}
		return VideoDetail{}, fmt.Errorf("select video detail: %w", err)
	}

	return detail, nil
}

// WatchHistory returns the user's watched videos, most recent first.
func (v *Views) WatchHistory(ctx context.Context, userID string) ([]VideoWithOwner, error) {
	return v.queryVideosWithOwner(ctx, `
        SELECT `+videoOwnerColumns+`
        FROM watch_history h
        JOIN videos v ON v.id = h.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE h.user_id = $1
        ORDER BY h.watched_at DESC
    `, userID)
}

// LikedVideos returns the published videos the user has liked, newest like
// first.
func (v *Views) LikedVideos(ctx context.Context, userID string) ([]VideoWithOwner, error) {
	return v.queryVideosWithOwner(ctx, `
        SELECT `+videoOwnerColumns+`
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.target_kind = 'video' AND l.liked_by = $1 AND v.published = TRUE
        ORDER BY l.created_at DESC
    `, userID)
}

// ChannelVideos returns every video a channel owns, published or not,
// newest first. Used by the owner's dashboard.
func (v *Views) ChannelVideos(ctx context.Context, channelID string) ([]VideoWithOwner, error) {
	return v.queryVideosWithOwner(ctx, `
        SELECT `+videoOwnerColumns+`
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.owner_id = $1
        ORDER BY v.created_at DESC
    `, channelID)
}

func (v *Views) queryVideosWithOwner(ctx context.Context, query string, args ...any) ([]VideoWithOwner, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select videos: %w", err)
	}
	defer rows.Close()

	videos := make([]VideoWithOwner, 0)
	for rows.Next() {
		video, err := scanVideoWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

func scanVideoWithOwner(row pgx.Row) (VideoWithOwner, error) {
	var video VideoWithOwner
	if err := row.Scan(&video.ID, &video.OwnerID, &video.VideoFile.URL,
		&video.VideoFile.Key, &video.Thumbnail.URL, &video.Thumbnail.Key,
		&video.Title, &video.Description, &video.Views, &video.Duration,
		&video.Published, &video.CreatedAt, &video.UpdatedAt,
		&video.Owner.ID, &video.Owner.Username, &video.Owner.FullName,
		&video.Owner.Avatar); err != nil {
		return VideoWithOwner{}, err
	}
	return video, nil
}

func scanVideoWithOwnerTotal(row pgx.Row) (VideoWithOwner, int64, error) {
	var (
		video models.Video
		owner UserSummary
		total int64
	)
	if err := row.Scan(&video.ID, &video.OwnerID, &video.VideoFile.URL,
		&video.VideoFile.Key, &video.Thumbnail.URL, &video.Thumbnail.Key,
		&video.Title, &video.Description, &video.Views, &video.Duration,
		&video.Published, &video.CreatedAt, &video.UpdatedAt,
		&owner.ID, &owner.Username, &owner.FullName, &owner.Avatar,
		&total); err != nil {
		return VideoWithOwner{}, 0, err
	}
	return VideoWithOwner{Video: video, Owner: owner}, total, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

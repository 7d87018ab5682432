package views

import (
	"context"
	"fmt"
)

// StatsForChannel aggregates the dashboard counters for one channel: video
// and view totals, subscriber count, and likes received on its videos.
func (v *Views) StatsForChannel(ctx context.Context, channelID string) (ChannelStats, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM videos WHERE owner_id = $1) AS total_videos,
            (SELECT COALESCE(SUM(views), 0) FROM videos WHERE owner_id = $1) AS total_views,
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1) AS total_subscribers,
            (SELECT COUNT(*) FROM likes l
             JOIN videos vd ON vd.id = l.target_id
             WHERE l.target_kind = 'video' AND vd.owner_id = $1) AS total_likes
    `, channelID)

	var stats ChannelStats
	if err := row.Scan(&stats.TotalVideos, &stats.TotalViews,
		&stats.TotalSubscribers, &stats.TotalLikes); err != nil {
		return ChannelStats{}, fmt.Errorf("select channel stats: %w", err)
	}

	return stats, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viewtube/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice")

	dup := user
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict creating duplicate username, got %v", err)
	}

	fetched, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if fetched.ID != user.ID || fetched.Email != user.Email {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}

	newName := "Alice Updated"
	updated, err := repo.UpdateProfile(ctx, user.ID, &newName, nil)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FullName != newName {
		t.Fatalf("expected full name to change, got %q", updated.FullName)
	}
	if updated.Email != user.Email {
		t.Fatalf("expected email to be untouched, got %q", updated.Email)
	}

	if _, err := repo.UpdateProfile(ctx, uuid.NewString(), &newName, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}
}

func TestPostgresUserRepository_RefreshTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice")

	if err := repo.SetRefreshToken(ctx, user.ID, "refresh-1"); err != nil {
		t.Fatalf("set refresh token: %v", err)
	}

	fetched, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.RefreshToken != "refresh-1" {
		t.Fatalf("expected stored refresh token, got %q", fetched.RefreshToken)
	}

	if err := repo.ClearRefreshToken(ctx, user.ID); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}

	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id after clear: %v", err)
	}
	if fetched.RefreshToken != "" {
		t.Fatalf("expected refresh token to be cleared, got %q", fetched.RefreshToken)
	}

	if err := repo.SetRefreshToken(ctx, uuid.NewString(), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestPostgresUserRepository_WatchHistoryUpsert(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, users, "owner")
	viewer := createTestUser(t, users, "viewer")
	video := createTestVideo(t, videos, owner.ID, "First Video")

	if err := users.AddWatchHistory(ctx, viewer.ID, video.ID); err != nil {
		t.Fatalf("add watch history: %v", err)
	}
	if err := users.AddWatchHistory(ctx, viewer.ID, video.ID); err != nil {
		t.Fatalf("re-add watch history: %v", err)
	}

	if err := users.AddWatchHistory(ctx, viewer.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}
}

func TestPostgresVideoRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, users, "owner")
	video := createTestVideo(t, videos, owner.ID, "Original Title")

	orphan := video
	orphan.ID = uuid.NewString()
	orphan.OwnerID = uuid.NewString()
	if err := videos.Create(ctx, orphan); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound creating video for missing owner, got %v", err)
	}

	title := "Updated Title"
	thumb := models.MediaAsset{URL: "https://cdn.test/thumbnails/new.png", Key: "thumbnails/new.png"}
	updated, err := videos.UpdateDetails(ctx, video.ID, &title, nil, &thumb)
	if err != nil {
		t.Fatalf("update details: %v", err)
	}
	if updated.Title != title || updated.Thumbnail.Key != thumb.Key {
		t.Fatalf("unexpected updated video: %+v", updated)
	}
	if updated.Description != video.Description {
		t.Fatalf("expected description to be untouched, got %q", updated.Description)
	}

	for i := 0; i < 3; i++ {
		if err := videos.IncrementViews(ctx, video.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}

	fetched, err := videos.FindByID(ctx, video.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.Views != 3 {
		t.Fatalf("expected 3 views, got %d", fetched.Views)
	}

	if err := videos.SetPublished(ctx, video.ID, false); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	fetched, _ = videos.FindByID(ctx, video.ID)
	if fetched.Published {
		t.Fatal("expected video to be unpublished")
	}

	if err := videos.Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	if err := videos.Delete(ctx, video.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestPostgresLikeRepository_Toggle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	likes := NewPostgresLikeRepository(testPool)

	owner := createTestUser(t, users, "owner")
	fan := createTestUser(t, users, "fan")
	video := createTestVideo(t, videos, owner.ID, "Likeable")

	target := models.LikeTarget{Kind: models.LikeKindVideo, ID: video.ID}

	liked, err := likes.Toggle(ctx, target, fan.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked {
		t.Fatal("expected first toggle to like")
	}

	liked, err = likes.Toggle(ctx, target, fan.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked {
		t.Fatal("expected second toggle to unlike")
	}

	// Likes on different kinds with the same target id are independent.
	commentTarget := models.LikeTarget{Kind: models.LikeKindComment, ID: video.ID}
	if _, err := likes.Toggle(ctx, commentTarget, fan.ID); err != nil {
		t.Fatalf("toggle comment kind: %v", err)
	}
	liked, err = likes.Toggle(ctx, target, fan.ID)
	if err != nil {
		t.Fatalf("third toggle: %v", err)
	}
	if !liked {
		t.Fatal("expected video like to be independent of comment like")
	}
}

func TestPostgresSubscriptionRepository_Toggle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	subs := NewPostgresSubscriptionRepository(testPool)

	channel := createTestUser(t, users, "channel")
	fan := createTestUser(t, users, "fan")

	subscribed, err := subs.Toggle(ctx, fan.ID, channel.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !subscribed {
		t.Fatal("expected first toggle to subscribe")
	}

	subscribed, err = subs.Toggle(ctx, fan.ID, channel.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if subscribed {
		t.Fatal("expected second toggle to unsubscribe")
	}

	if _, err := subs.Toggle(ctx, fan.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound subscribing to missing channel, got %v", err)
	}
}

func TestPostgresPlaylistRepository_MembershipAndOrder(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	playlists := NewPostgresPlaylistRepository(testPool)

	owner := createTestUser(t, users, "owner")
	first := createTestVideo(t, videos, owner.ID, "First")
	second := createTestVideo(t, videos, owner.ID, "Second")

	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Name:        "Favorites",
		Description: "The good stuff",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := playlists.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	added, err := playlists.AddVideo(ctx, playlist.ID, first.ID)
	if err != nil {
		t.Fatalf("add first video: %v", err)
	}
	if !added {
		t.Fatal("expected first add to report added")
	}

	if added, err = playlists.AddVideo(ctx, playlist.ID, second.ID); err != nil || !added {
		t.Fatalf("add second video: added=%v err=%v", added, err)
	}

	// Re-adding a member is a no-op.
	if added, err = playlists.AddVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("re-add first video: %v", err)
	} else if added {
		t.Fatal("expected duplicate add to report not added")
	}

	fetched, err := playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("find playlist: %v", err)
	}
	if len(fetched.VideoIDs) != 2 || fetched.VideoIDs[0] != first.ID || fetched.VideoIDs[1] != second.ID {
		t.Fatalf("unexpected playlist order: %v", fetched.VideoIDs)
	}

	if err := playlists.RemoveVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	if err := playlists.RemoveVideo(ctx, playlist.ID, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing twice, got %v", err)
	}

	owned, err := playlists.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != playlist.ID {
		t.Fatalf("unexpected owned playlists: %+v", owned)
	}

	if err := playlists.Delete(ctx, playlist.ID); err != nil {
		t.Fatalf("delete playlist: %v", err)
	}
	if _, err := playlists.FindByID(ctx, playlist.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresCommentRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	comments := NewPostgresCommentRepository(testPool)

	owner := createTestUser(t, users, "owner")
	video := createTestVideo(t, videos, owner.ID, "Commented")

	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   video.ID,
		OwnerID:   owner.ID,
		Content:   "first!",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := comments.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	orphan := comment
	orphan.ID = uuid.NewString()
	orphan.VideoID = uuid.NewString()
	if err := comments.Create(ctx, orphan); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}

	updated, err := comments.UpdateContent(ctx, comment.ID, "edited")
	if err != nil {
		t.Fatalf("update comment: %v", err)
	}
	if updated.Content != "edited" {
		t.Fatalf("expected edited content, got %q", updated.Content)
	}

	// Deleting the video cascades to its comments.
	if err := videos.Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	if _, err := comments.FindByID(ctx, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected comment to cascade away, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `TRUNCATE TABLE watch_history, playlist_videos, playlists,
                subscriptions, likes, tweets, comments, videos, users CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		FullName:  "Test User",
		Password:  "password-hash",
		Avatar:    models.MediaAsset{URL: "https://cdn.test/avatars/" + username, Key: "avatars/" + username},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, ownerID, title string) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		VideoFile:   models.MediaAsset{URL: "https://cdn.test/videos/" + title, Key: "videos/" + title},
		Thumbnail:   models.MediaAsset{URL: "https://cdn.test/thumbnails/" + title, Key: "thumbnails/" + title},
		Title:       title,
		Description: "A test video",
		Published:   true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}

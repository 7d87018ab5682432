package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/repositories"
	"github.com/viewtube/backend/internal/views"
)

type inMemoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) UpdateProfile(_ context.Context, id string, fullName, email *string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	if fullName != nil {
		user.FullName = *fullName
	}
	if email != nil {
		user.Email = *email
	}
	s.users[id] = user
	return user, nil
}

func (s *inMemoryUserStore) UpdateAvatar(_ context.Context, id string, avatar models.MediaAsset) (models.User, error) {
	return s.updateAsset(id, func(u *models.User) { u.Avatar = avatar })
}

func (s *inMemoryUserStore) UpdateCoverImage(_ context.Context, id string, cover models.MediaAsset) (models.User, error) {
	return s.updateAsset(id, func(u *models.User) { u.CoverImage = cover })
}

func (s *inMemoryUserStore) updateAsset(id string, apply func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	apply(&user)
	s.users[id] = user
	return user, nil
}

func (s *inMemoryUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := s.updateAsset(id, func(u *models.User) { u.Password = passwordHash })
	return err
}

func (s *inMemoryUserStore) SetRefreshToken(_ context.Context, id, refreshToken string) error {
	_, err := s.updateAsset(id, func(u *models.User) { u.RefreshToken = refreshToken })
	return err
}

func (s *inMemoryUserStore) ClearRefreshToken(_ context.Context, id string) error {
	_, err := s.updateAsset(id, func(u *models.User) { u.RefreshToken = "" })
	return err
}

func (s *inMemoryUserStore) AddWatchHistory(_ context.Context, userID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	return nil
}

type inMemoryVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
}

func newInMemoryVideoStore() *inMemoryVideoStore {
	return &inMemoryVideoStore{videos: make(map[string]models.Video)}
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.videos[video.ID]; exists {
		return repositories.ErrConflict
	}
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *inMemoryVideoStore) UpdateDetails(_ context.Context, id string, title, description *string, thumbnail *models.MediaAsset) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	if title != nil {
		video.Title = *title
	}
	if description != nil {
		video.Description = *description
	}
	if thumbnail != nil {
		video.Thumbnail = *thumbnail
	}
	s.videos[id] = video
	return video, nil
}

func (s *inMemoryVideoStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *inMemoryVideoStore) SetPublished(_ context.Context, id string, published bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Published = published
	s.videos[id] = video
	return nil
}

func (s *inMemoryVideoStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

type inMemoryLikeStore struct {
	mu    sync.Mutex
	likes map[string]struct{}
}

func newInMemoryLikeStore() *inMemoryLikeStore {
	return &inMemoryLikeStore{likes: make(map[string]struct{})}
}

func (s *inMemoryLikeStore) Toggle(_ context.Context, target models.LikeTarget, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/%s/%s", target.Kind, target.ID, userID)
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = struct{}{}
	return true, nil
}

type fakeTokenIssuer struct {
	pair       models.TokenPair
	issueErr   error
	refreshSub string
	refreshErr error
}

func (f fakeTokenIssuer) Issue(models.User) (models.TokenPair, error) {
	return f.pair, f.issueErr
}

func (f fakeTokenIssuer) VerifyRefresh(string) (string, error) {
	return f.refreshSub, f.refreshErr
}

type fakeMediaStore struct {
	mu      sync.Mutex
	stored  []string
	removed []string
}

func (f *fakeMediaStore) Store(_ context.Context, localPath, folder string) (models.MediaAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := folder + "/staged"
	f.stored = append(f.stored, key)
	return models.MediaAsset{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (f *fakeMediaStore) Remove(_ context.Context, key, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
}

// fakeCatalog returns canned read-side results; unset fields yield zero
// values.
type fakeCatalog struct {
	videoDetail views.VideoDetail
	history     []views.VideoWithOwner
	liked       []views.VideoWithOwner
	profile     views.ChannelProfile
	stats       views.ChannelStats
	err         error
}

func (f fakeCatalog) ListVideos(context.Context, views.ListVideosOptions) ([]views.VideoWithOwner, views.PageMeta, error) {
	return nil, views.PageMeta{}, f.err
}

func (f fakeCatalog) VideoByID(context.Context, string, string) (views.VideoDetail, error) {
	return f.videoDetail, f.err
}

func (f fakeCatalog) WatchHistory(context.Context, string) ([]views.VideoWithOwner, error) {
	return f.history, f.err
}

func (f fakeCatalog) LikedVideos(context.Context, string) ([]views.VideoWithOwner, error) {
	return f.liked, f.err
}

func (f fakeCatalog) ChannelVideos(context.Context, string) ([]views.VideoWithOwner, error) {
	return nil, f.err
}

func (f fakeCatalog) ChannelProfileByUsername(context.Context, string, string) (views.ChannelProfile, error) {
	return f.profile, f.err
}

func (f fakeCatalog) ChannelSubscribers(context.Context, string) ([]views.UserSummary, error) {
	return nil, f.err
}

func (f fakeCatalog) SubscribedChannels(context.Context, string) ([]views.UserSummary, error) {
	return nil, f.err
}

func (f fakeCatalog) CommentsForVideo(context.Context, string, string, int, int) ([]views.CommentWithOwner, views.PageMeta, error) {
	return nil, views.PageMeta{}, f.err
}

func (f fakeCatalog) TweetsByUser(context.Context, string, string) ([]views.TweetWithOwner, error) {
	return nil, f.err
}

func (f fakeCatalog) PlaylistByID(context.Context, string) (views.PlaylistDetail, error) {
	return views.PlaylistDetail{}, f.err
}

func (f fakeCatalog) StatsForChannel(context.Context, string) (views.ChannelStats, error) {
	return f.stats, f.err
}

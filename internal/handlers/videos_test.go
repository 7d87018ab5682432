package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/middleware"
	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/views"
)

func requestWithUser(method, target string, user models.User, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))

	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestVideoHandlerGetCountsViewAndHistory(t *testing.T) {
	users := newInMemoryUserStore()
	viewer := models.User{ID: uuid.NewString(), Username: "viewer"}
	users.users[viewer.ID] = viewer

	videoID := uuid.NewString()
	videoStore := newInMemoryVideoStore()
	videoStore.videos[videoID] = models.Video{ID: videoID, OwnerID: uuid.NewString(), Views: 4, Published: true}

	handler := VideoHandler{
		Videos:  videoStore,
		Users:   users,
		Media:   &fakeMediaStore{},
		Catalog: fakeCatalog{videoDetail: views.VideoDetail{Video: models.Video{ID: videoID, Views: 4}}},
	}

	req := requestWithUser(http.MethodGet, "/api/v1/videos/"+videoID, viewer, map[string]string{"videoId": videoID})
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored, _ := videoStore.FindByID(context.Background(), videoID)
	if stored.Views != 5 {
		t.Fatalf("expected view count 5, got %d", stored.Views)
	}
}

func TestVideoHandlerGetRejectsMalformedID(t *testing.T) {
	handler := VideoHandler{Videos: newInMemoryVideoStore(), Users: newInMemoryUserStore(), Media: &fakeMediaStore{}, Catalog: fakeCatalog{}}

	viewer := models.User{ID: uuid.NewString(), Username: "viewer"}
	req := requestWithUser(http.MethodGet, "/api/v1/videos/not-an-id", viewer, map[string]string{"videoId": "not-an-id"})
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestVideoHandlerDeleteRejectsNonOwner(t *testing.T) {
	videoID := uuid.NewString()
	videoStore := newInMemoryVideoStore()
	videoStore.videos[videoID] = models.Video{
		ID:        videoID,
		OwnerID:   uuid.NewString(),
		VideoFile: models.MediaAsset{Key: "videos/a"},
		Thumbnail: models.MediaAsset{Key: "thumbnails/a"},
	}

	media := &fakeMediaStore{}
	handler := VideoHandler{Videos: videoStore, Media: media, Catalog: fakeCatalog{}}

	intruder := models.User{ID: uuid.NewString(), Username: "mallory"}
	req := requestWithUser(http.MethodDelete, "/api/v1/videos/"+videoID, intruder, map[string]string{"videoId": videoID})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if _, err := videoStore.FindByID(context.Background(), videoID); err != nil {
		t.Fatalf("expected video to survive: %v", err)
	}
	if len(media.removed) != 0 {
		t.Fatalf("expected no blobs removed, got %v", media.removed)
	}
}

func TestVideoHandlerDeleteRemovesBlobs(t *testing.T) {
	videoID := uuid.NewString()
	owner := models.User{ID: uuid.NewString(), Username: "owner"}

	videoStore := newInMemoryVideoStore()
	videoStore.videos[videoID] = models.Video{
		ID:        videoID,
		OwnerID:   owner.ID,
		VideoFile: models.MediaAsset{Key: "videos/a"},
		Thumbnail: models.MediaAsset{Key: "thumbnails/a"},
	}

	media := &fakeMediaStore{}
	handler := VideoHandler{Videos: videoStore, Media: media, Catalog: fakeCatalog{}}

	req := requestWithUser(http.MethodDelete, "/api/v1/videos/"+videoID, owner, map[string]string{"videoId": videoID})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if len(media.removed) != 2 {
		t.Fatalf("expected both blobs removed, got %v", media.removed)
	}
}

func TestVideoHandlerTogglePublish(t *testing.T) {
	videoID := uuid.NewString()
	owner := models.User{ID: uuid.NewString(), Username: "owner"}

	videoStore := newInMemoryVideoStore()
	videoStore.videos[videoID] = models.Video{ID: videoID, OwnerID: owner.ID, Published: true}

	handler := VideoHandler{Videos: videoStore, Media: &fakeMediaStore{}, Catalog: fakeCatalog{}}

	req := requestWithUser(http.MethodPatch, "/api/v1/videos/toggle/publish/"+videoID, owner, map[string]string{"videoId": videoID})
	rec := httptest.NewRecorder()

	handler.TogglePublish(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	stored, _ := videoStore.FindByID(context.Background(), videoID)
	if stored.Published {
		t.Fatal("expected publish flag to flip to false")
	}
}

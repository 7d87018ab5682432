package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/models"
)

func TestLikeHandlerTogglePair(t *testing.T) {
	videoID := uuid.NewString()
	videoStore := newInMemoryVideoStore()
	videoStore.videos[videoID] = models.Video{ID: videoID, OwnerID: uuid.NewString(), Published: true}

	handler := LikeHandler{
		Likes:   newInMemoryLikeStore(),
		Videos:  videoStore,
		Catalog: fakeCatalog{},
	}

	user := models.User{ID: uuid.NewString(), Username: "alice"}

	toggle := func() bool {
		req := requestWithUser(http.MethodPost, "/api/v1/likes/toggle/v/"+videoID, user, map[string]string{"videoId": videoID})
		rec := httptest.NewRecorder()

		handler.ToggleVideo(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		var envelope struct {
			Data struct {
				IsLiked bool `json:"isLiked"`
			} `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return envelope.Data.IsLiked
	}

	if !toggle() {
		t.Fatal("expected first toggle to like")
	}
	if toggle() {
		t.Fatal("expected second toggle to unlike")
	}
	if !toggle() {
		t.Fatal("expected third toggle to like again")
	}
}

func TestLikeHandlerToggleMissingTarget(t *testing.T) {
	handler := LikeHandler{
		Likes:   newInMemoryLikeStore(),
		Videos:  newInMemoryVideoStore(),
		Catalog: fakeCatalog{},
	}

	ghost := uuid.NewString()
	user := models.User{ID: uuid.NewString(), Username: "alice"}
	req := requestWithUser(http.MethodPost, "/api/v1/likes/toggle/v/"+ghost, user, map[string]string{"videoId": ghost})
	rec := httptest.NewRecorder()

	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

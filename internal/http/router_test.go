package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"hearsight/internal/auth"
	"hearsight/internal/catalog"
	"hearsight/internal/contextutil"
	"hearsight/internal/handlers"
	"hearsight/internal/service"
	"hearsight/internal/service/mocks"
	"hearsight/internal/storage"
	"hearsight/internal/vectorstore"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type routerFixture struct {
	chat    *mocks.MockChatService
	search  *mocks.MockSearchService
	library *mocks.MockLibraryService
	auth    *auth.Authenticator
	router  http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := vectorstore.NewMemoryStore()
	if err := store.EnsureCollection(context.Background(), "video_chunks", 2); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}

	f := &routerFixture{
		chat:    mocks.NewMockChatService(ctrl),
		search:  mocks.NewMockSearchService(ctrl),
		library: mocks.NewMockLibraryService(ctrl),
		auth:    auth.NewAuthenticator("test-secret"),
	}
	f.router = NewRouter(&Deps{
		ChatService:    f.chat,
		SearchService:  f.search,
		LibraryService: f.library,
		Health:         handlers.NewHealthHandler(store, store, []string{"video_chunks"}, nil),
		Auth:           f.auth,
		CORSOrigins:    []string{"http://localhost:3000"},
	})
	return f
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(&Deps{})
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		mockSetup  func(*routerFixture)
		wantStatus int
	}{
		{
			name:       "POST /api/chat with invalid body",
			method:     http.MethodPost,
			path:       "/api/chat",
			body:       "{",
			mockSetup:  func(*routerFixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /api/chat method not allowed",
			method:     http.MethodGet,
			path:       "/api/chat",
			mockSetup:  func(*routerFixture) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "GET /api/chat/history/{session_id}",
			method: http.MethodGet,
			path:   "/api/chat/history/s1",
			mockSetup: func(f *routerFixture) {
				f.chat.EXPECT().History(gomock.Any(), "s1", 0).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "DELETE /api/chat/history/{session_id}",
			method: http.MethodDelete,
			path:   "/api/chat/history/s1",
			mockSetup: func(f *routerFixture) {
				f.chat.EXPECT().DeleteHistory(gomock.Any(), "s1").Return(int64(2), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "POST /api/search",
			method: http.MethodPost,
			path:   "/api/search",
			body:   `{"query":"q"}`,
			mockSetup: func(f *routerFixture) {
				f.search.EXPECT().Search(gomock.Any(), service.SearchRequest{Query: "q"}).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/folders",
			method: http.MethodGet,
			path:   "/api/folders",
			mockSetup: func(f *routerFixture) {
				f.library.EXPECT().ListFolders(gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "POST /api/folders/move-video is not a folder id",
			method: http.MethodPost,
			path:   "/api/folders/move-video",
			body:   `{"video_id":"v1"}`,
			mockSetup: func(f *routerFixture) {
				f.library.EXPECT().MoveVideo(gomock.Any(), service.MoveVideoRequest{VideoID: "v1"}).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "PUT /api/folders/{folder_id}/parent",
			method: http.MethodPut,
			path:   "/api/folders/f1/parent",
			body:   `{"parent_id":null}`,
			mockSetup: func(f *routerFixture) {
				f.library.EXPECT().MoveFolder(gomock.Any(), "f1", gomock.Nil()).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/videos",
			method: http.MethodGet,
			path:   "/api/videos",
			mockSetup: func(f *routerFixture) {
				f.library.EXPECT().ListVideos(gomock.Any(), catalog.ListQuery{}).Return(catalog.VideoPage{Videos: []catalog.Video{}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "DELETE /api/videos/{video_id}",
			method: http.MethodDelete,
			path:   "/api/videos/v1",
			mockSetup: func(f *routerFixture) {
				f.library.EXPECT().DeleteVideo(gomock.Any(), "v1").Return(catalog.VideoDeleteResult{VideoID: "v1"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /api/health",
			method:     http.MethodGet,
			path:       "/api/health",
			mockSetup:  func(*routerFixture) {},
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /metrics",
			method:     http.MethodGet,
			path:       "/metrics",
			mockSetup:  func(*routerFixture) {},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/nope",
			mockSetup:  func(*routerFixture) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			tt.mockSetup(f)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_Auth(t *testing.T) {
	f := newRouterFixture(t)

	token, err := f.auth.IssueToken("u1", "alice", false, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	t.Run("valid token links the user", func(t *testing.T) {
		f.chat.EXPECT().History(gomock.Any(), "s1", 0).DoAndReturn(
			func(ctx context.Context, _ string, _ int) ([]storage.ChatMessage, error) {
				if got := contextutil.UserIDFromContext(ctx); got != "u1" {
					t.Errorf("user id = %q, want u1", got)
				}
				return nil, nil
			})

		req := httptest.NewRequest(http.MethodGet, "/api/chat/history/s1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %v, want %v", w.Code, http.StatusOK)
		}
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/chat/history/s1", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %v, want %v", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("health needs no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %v, want %v", w.Code, http.StatusOK)
		}
	})
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	f := newRouterFixture(t)
	f.library.EXPECT().ListFolders(gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	metrics := httptest.NewRecorder()
	f.router.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(metrics.Body.String(), `route="/api/folders"`) {
		t.Error("request metrics should be labelled by route pattern")
	}
}

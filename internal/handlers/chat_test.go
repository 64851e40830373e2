package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"hearsight/internal/domain"
	"hearsight/internal/service"
	"hearsight/internal/service/mocks"
	"hearsight/internal/storage"
)

func TestNewChatHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChatService := mocks.NewMockChatService(ctrl)
	handler := NewChatHandler(mockChatService)

	if handler == nil {
		t.Fatal("NewChatHandler() returned nil")
	}
	if handler.chatService != mockChatService {
		t.Error("NewChatHandler() chatService not set correctly")
	}
}

func TestChatHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name          string
		method        string
		body          interface{}
		mockSetup     func(*mocks.MockChatService)
		wantStatus    int
		checkResponse func(*httptest.ResponseRecorder) bool
	}{
		{
			name:   "successful POST request",
			method: http.MethodPost,
			body:   map[string]any{"query": "什么是骨髓炎", "session_id": "s1", "n_results": 3},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Chat(gomock.Any(), service.ChatRequest{Query: "什么是骨髓炎", SessionID: "s1", Limit: 3}).
					Return(service.ChatResponse{
						Answer:     "骨髓炎是【来源 1】",
						References: []service.Reference{{ChunkText: "t", Score: 0.9, Cited: true}},
						Query:      "什么是骨髓炎",
						SessionID:  "s1",
					}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(w *httptest.ResponseRecorder) bool {
				var resp map[string]any
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					return false
				}
				refs, ok := resp["references"].([]any)
				return ok && len(refs) == 1 && resp["session_id"] == "s1" && resp["answer"] == "骨髓炎是【来源 1】"
			},
		},
		{
			name:   "method not allowed",
			method: http.MethodGet,
			mockSetup: func(m *mocks.MockChatService) {
				// No calls expected
			},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "invalid JSON body",
			method: http.MethodPost,
			body:   "invalid json",
			mockSetup: func(m *mocks.MockChatService) {
				// No calls expected
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "validation error",
			method: http.MethodPost,
			body:   map[string]any{"query": ""},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Chat(gomock.Any(), service.ChatRequest{}).
					Return(service.ChatResponse{}, &domain.ValidationError{Field: "query", Message: "cannot be blank"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "rag disabled",
			method: http.MethodPost,
			body:   map[string]any{"query": "q"},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Chat(gomock.Any(), service.ChatRequest{Query: "q"}).
					Return(service.ChatResponse{}, &domain.UnavailableError{Message: "disabled"})
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:   "upstream failure",
			method: http.MethodPost,
			body:   map[string]any{"query": "q"},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Chat(gomock.Any(), service.ChatRequest{Query: "q"}).
					Return(service.ChatResponse{}, &domain.UpstreamError{Service: "chat completion", Err: errors.New("500")})
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "service error",
			method: http.MethodPost,
			body:   map[string]any{"query": "q"},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Chat(gomock.Any(), service.ChatRequest{Query: "q"}).
					Return(service.ChatResponse{}, errors.New("service error"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockChatService := mocks.NewMockChatService(ctrl)
			tt.mockSetup(mockChatService)

			handler := NewChatHandler(mockChatService)

			var bodyBytes []byte
			if tt.body != nil {
				if str, ok := tt.body.(string); ok {
					bodyBytes = []byte(str)
				} else {
					bodyBytes, _ = json.Marshal(tt.body)
				}
			}

			req := httptest.NewRequest(tt.method, "/api/chat", bytes.NewReader(bodyBytes))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}

			if tt.checkResponse != nil && !tt.checkResponse(w) {
				t.Errorf("ServeHTTP() response check failed: %s", w.Body.String())
			}
		})
	}
}

func historyRouter(h *ChatHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/chat/history/{session_id}", h.History)
	r.Delete("/api/chat/history/{session_id}", h.DeleteHistory)
	return r
}

func TestChatHandler_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		url        string
		mockSetup  func(*mocks.MockChatService)
		wantStatus int
		wantLen    int
	}{
		{
			name: "default limit",
			url:  "/api/chat/history/s1",
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().History(gomock.Any(), "s1", 0).Return([]storage.ChatMessage{
					{ID: "m1", SessionID: "s1", Role: storage.RoleUser, Content: "q", CreatedAt: created},
					{ID: "m2", SessionID: "s1", Role: storage.RoleAssistant, Content: "a", Metadata: json.RawMessage(`{"references":[]}`), CreatedAt: created},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantLen:    2,
		},
		{
			name: "explicit limit",
			url:  "/api/chat/history/s1?limit=10",
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().History(gomock.Any(), "s1", 10).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantLen:    0,
		},
		{
			name:       "non-numeric limit",
			url:        "/api/chat/history/s1?limit=ten",
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "store failure",
			url:  "/api/chat/history/s1",
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().History(gomock.Any(), "s1", 0).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockChatService := mocks.NewMockChatService(ctrl)
			tt.mockSetup(mockChatService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			historyRouter(NewChatHandler(mockChatService)).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp HistoryResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.SessionID != "s1" {
				t.Errorf("session_id = %q, want s1", resp.SessionID)
			}
			if resp.History == nil || len(resp.History) != tt.wantLen {
				t.Errorf("history = %v, want %d messages", resp.History, tt.wantLen)
			}
			if tt.wantLen == 2 && resp.History[0].CreatedAt != "2024-03-01T12:00:00Z" {
				t.Errorf("created_at = %q", resp.History[0].CreatedAt)
			}
		})
	}
}

func TestChatHandler_DeleteHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChatService := mocks.NewMockChatService(ctrl)
	mockChatService.EXPECT().DeleteHistory(gomock.Any(), "s1").Return(int64(4), nil)
	mockChatService.EXPECT().DeleteHistory(gomock.Any(), "gone").Return(int64(0), nil)

	router := historyRouter(NewChatHandler(mockChatService))

	tests := []struct {
		session     string
		wantSuccess bool
		wantDeleted int64
	}{
		{session: "s1", wantSuccess: true, wantDeleted: 4},
		{session: "gone", wantSuccess: false, wantDeleted: 0},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodDelete, "/api/chat/history/"+tt.session, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var resp DeleteHistoryResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Success != tt.wantSuccess || resp.Deleted != tt.wantDeleted {
			t.Errorf("DeleteHistory(%s) = %+v", tt.session, resp)
		}
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hearsight/internal/contextutil"
	"hearsight/internal/service"
)

// ChatHandler handles HTTP requests for knowledge-base chat and its history.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ChatRequest represents the HTTP request payload for chat.
//
// swagger:model ChatRequest
type ChatRequest = service.ChatRequest

// ChatResponse represents the HTTP response payload for chat.
//
// swagger:model ChatResponse
type ChatResponse = service.ChatResponse

// HistoryMessage is one stored turn.
//
// swagger:model HistoryMessage
type HistoryMessage struct {
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// HistoryResponse lists a session's turns, oldest first.
//
// swagger:model HistoryResponse
type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	History   []HistoryMessage `json:"history"`
}

// DeleteHistoryResponse reports a session deletion.
//
// swagger:model DeleteHistoryResponse
type DeleteHistoryResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Deleted   int64  `json:"deleted"`
	Message   string `json:"message"`
}

// ServeHTTP handles HTTP requests for chat.
//
// swagger:route POST /api/chat chat
//
// # Ask a question answered from the video transcripts
//
// responses:
//
//	'200': ChatResponse
//	'400': ErrorResponse
//	'502': ErrorResponse
//	'503': ErrorResponse
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.chatService.Chat(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /api/chat/history/{session_id}.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	messages, err := h.chatService.History(ctx, sessionID, limit)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load chat history")
		return
	}

	resp := HistoryResponse{SessionID: sessionID, History: make([]HistoryMessage, 0, len(messages))}
	for _, m := range messages {
		resp.History = append(resp.History, HistoryMessage{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			Metadata:  m.Metadata,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteHistory handles DELETE /api/chat/history/{session_id}.
func (h *ChatHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	deleted, err := h.chatService.DeleteHistory(ctx, sessionID)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to delete chat history")
		return
	}

	resp := DeleteHistoryResponse{
		Success:   deleted > 0,
		SessionID: sessionID,
		Deleted:   deleted,
		Message:   "deleted",
	}
	if deleted == 0 {
		resp.Message = "session not found or already deleted"
	}
	writeJSON(w, http.StatusOK, resp)
}

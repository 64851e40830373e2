package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks hearsight/internal/service ChatService

import (
	"context"
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"hearsight/internal/contextutil"
	"hearsight/internal/domain"
	"hearsight/internal/rag"
	"hearsight/internal/storage"
)

// Request bounds for chat.
const (
	DefaultChatLimit      = 5
	MaxChatLimit          = 20
	MaxQueryLength        = 2000
	DefaultHistoryLimit   = 50
	MaxHistoryLimit       = 200
	DefaultScoreThreshold = 0.7
)

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	// Limit is the number of fragments to retrieve. Zero selects the default.
	Limit int `json:"n_results"`
	// ScoreThreshold overrides the configured minimum similarity when set.
	ScoreThreshold *float32    `json:"score_threshold"`
	Filters        rag.Filters `json:"filters"`
	// LanguageFilter is the flat form of Filters.Language; the nested field wins when both are set.
	LanguageFilter string `json:"language_filter"`
	// SystemPrompt replaces the configured persona for this request.
	SystemPrompt string `json:"system_prompt"`
}

// Validate checks request bounds.
func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required, validation.RuneLength(1, MaxQueryLength)),
		validation.Field(&r.Limit, validation.Min(0), validation.Max(MaxChatLimit)),
		validation.Field(&r.ScoreThreshold, validation.Min(float32(0)), validation.Max(float32(1))),
	)
}

// ReferenceMetadata describes where a referenced fragment comes from.
type ReferenceMetadata struct {
	VideoTitle string  `json:"video_title"`
	VideoPath  string  `json:"video_path"`
	VideoID    string  `json:"video_id"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Summary    string  `json:"summary"`
	Language   string  `json:"language"`
	SourceType string  `json:"source_type"`
}

// Reference is a retrieved fragment returned with an answer.
type Reference struct {
	ChunkText string            `json:"chunk_text"`
	Score     float32           `json:"score"`
	Cited     bool              `json:"cited"`
	Metadata  ReferenceMetadata `json:"metadata"`
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Answer     string      `json:"answer"`
	References []Reference `json:"references"`
	Query      string      `json:"query"`
	SessionID  string      `json:"session_id"`
}

// ChatService answers questions from the transcript knowledge base and keeps the conversation log.
type ChatService interface {
	// Chat runs one retrieval-augmented turn and records it under the session.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// History returns up to limit messages of a session, oldest first.
	History(ctx context.Context, sessionID string, limit int) ([]storage.ChatMessage, error)
	// DeleteHistory removes a session's messages and reports how many were removed.
	DeleteHistory(ctx context.Context, sessionID string) (int64, error)
}

// ChatOptions carries the RAG settings.
type ChatOptions struct {
	Enabled          bool
	TopK             int
	ScoreThreshold   float32
	IncludeSummaries bool
	// NoHitsAnswer is returned without calling the LLM when nothing relevant is found.
	NoHitsAnswer string
}

// chatService implements ChatService.
type chatService struct {
	embedder    rag.Embedder
	retriever   *rag.Retriever
	composer    *rag.Composer
	synthesizer *rag.Synthesizer
	history     storage.ChatStore
	opts        ChatOptions
}

// NewChatService creates a new ChatService.
func NewChatService(embedder rag.Embedder, retriever *rag.Retriever, composer *rag.Composer, synthesizer *rag.Synthesizer, history storage.ChatStore, opts ChatOptions) ChatService {
	if opts.TopK <= 0 {
		opts.TopK = DefaultChatLimit
	}
	return &chatService{
		embedder:    embedder,
		retriever:   retriever,
		composer:    composer,
		synthesizer: synthesizer,
		history:     history,
		opts:        opts,
	}
}

// Chat processes a chat request.
func (s *chatService) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req.Query = strings.TrimSpace(req.Query)
	if err := req.Validate(); err != nil {
		chatRequestsTotal.WithLabelValues(outcomeInvalid).Inc()
		logger.WarnContext(ctx, "invalid chat request", "error", err)
		return ChatResponse{}, validationError(err)
	}

	if !s.opts.Enabled {
		chatRequestsTotal.WithLabelValues(outcomeDisabled).Inc()
		return ChatResponse{}, &domain.UnavailableError{Message: "knowledge base chat is disabled"}
	}

	if !s.retriever.CheckConnection(ctx) {
		chatRequestsTotal.WithLabelValues(outcomeUnavailable).Inc()
		return ChatResponse{}, &domain.UnavailableError{Message: "vector store is unavailable"}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	params := rag.SearchParams{
		Limit:          s.opts.TopK,
		ScoreThreshold: s.opts.ScoreThreshold,
		Filters:        withLanguage(req.Filters, req.LanguageFilter),
	}
	if req.Limit > 0 {
		params.Limit = req.Limit
	}
	if req.ScoreThreshold != nil {
		params.ScoreThreshold = *req.ScoreThreshold
	}

	queryVector, err := s.embedder.EmbedText(ctx, req.Query)
	if err != nil {
		chatRequestsTotal.WithLabelValues(outcomeError).Inc()
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return ChatResponse{}, &domain.UpstreamError{Service: "embedding", Err: err}
	}

	hits := s.retriever.Search(ctx, queryVector, params)

	var answer string
	if len(hits) == 0 {
		chatRequestsTotal.WithLabelValues(outcomeNoHits).Inc()
		logger.InfoContext(ctx, "no relevant fragments found", "session_id", sessionID, "threshold", params.ScoreThreshold)
		answer = s.opts.NoHitsAnswer
	} else {
		contextText := s.composer.Compose(hits, s.opts.IncludeSummaries)
		answer, err = s.synthesizer.Answer(ctx, req.Query, contextText, req.SystemPrompt)
		if err != nil {
			chatRequestsTotal.WithLabelValues(outcomeError).Inc()
			logger.ErrorContext(ctx, "failed to synthesize answer", "error", err)
			return ChatResponse{}, err
		}
		chatRequestsTotal.WithLabelValues(outcomeAnswered).Inc()
	}

	references := buildReferences(hits, answer)

	// The caller may already be gone; the answer exists, so the turn is still recorded.
	s.recordTurn(context.WithoutCancel(ctx), sessionID, req.Query, answer, references)

	logger.InfoContext(ctx, "chat request processed successfully",
		"session_id", sessionID,
		"query_length", len(req.Query),
		"references", len(references),
		"answer_length", len(answer),
	)

	return ChatResponse{
		Answer:     answer,
		References: references,
		Query:      req.Query,
		SessionID:  sessionID,
	}, nil
}

// recordTurn appends the user message and then the assistant message. Failures are logged only.
func (s *chatService) recordTurn(ctx context.Context, sessionID, query, answer string, references []Reference) {
	logger := contextutil.LoggerFromContext(ctx)
	userID := contextutil.UserIDFromContext(ctx)

	userMsg := &storage.ChatMessage{
		SessionID: sessionID,
		UserID:    userID,
		Role:      storage.RoleUser,
		Content:   query,
	}
	if err := s.history.Append(ctx, userMsg); err != nil {
		historyWriteFailures.Inc()
		logger.WarnContext(ctx, "failed to save user message", "session_id", sessionID, "error", err)
	}

	metadata, err := json.Marshal(map[string]any{"references": references})
	if err != nil {
		logger.WarnContext(ctx, "failed to encode references", "error", err)
		metadata = nil
	}

	assistantMsg := &storage.ChatMessage{
		SessionID: sessionID,
		UserID:    userID,
		Role:      storage.RoleAssistant,
		Content:   answer,
		Metadata:  metadata,
	}
	if err := s.history.Append(ctx, assistantMsg); err != nil {
		historyWriteFailures.Inc()
		logger.WarnContext(ctx, "failed to save assistant message", "session_id", sessionID, "error", err)
	}
}

func buildReferences(hits []rag.Hit, answer string) []Reference {
	cited := rag.ExtractCitations(answer, len(hits))
	refs := make([]Reference, len(hits))
	for i, h := range hits {
		refs[i] = Reference{
			ChunkText: h.Text,
			Score:     h.Score,
			Cited:     cited[i],
			Metadata: ReferenceMetadata{
				VideoTitle: h.VideoTitle,
				VideoPath:  h.VideoPath,
				VideoID:    h.VideoID,
				StartTime:  h.StartTime,
				EndTime:    h.EndTime,
				Summary:    h.Summary,
				Language:   h.Language,
				SourceType: h.SourceType,
			},
		}
	}
	return refs
}

// History returns a session's messages.
func (s *chatService) History(ctx context.Context, sessionID string, limit int) ([]storage.ChatMessage, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, &domain.ValidationError{Field: "session_id", Message: "cannot be blank"}
	}
	if limit < 0 {
		return nil, &domain.ValidationError{Field: "limit", Message: "must be no less than 0"}
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	messages, err := s.history.List(ctx, sessionID, limit)
	if err != nil {
		return nil, domain.WrapError(err, "failed to load chat history")
	}
	return messages, nil
}

// DeleteHistory removes a session's messages.
func (s *chatService) DeleteHistory(ctx context.Context, sessionID string) (int64, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, &domain.ValidationError{Field: "session_id", Message: "cannot be blank"}
	}

	deleted, err := s.history.DeleteSession(ctx, sessionID)
	if err != nil {
		return 0, domain.WrapError(err, "failed to delete chat history")
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "chat history deleted", "session_id", sessionID, "messages", deleted)
	return deleted, nil
}

package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_search_service.go -package=mocks hearsight/internal/service SearchService

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"hearsight/internal/contextutil"
	"hearsight/internal/rag"
)

// Search bounds.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// SearchRequest is a retrieval-only query.
type SearchRequest struct {
	Query string `json:"query"`
	// Limit is the number of hits. Zero selects DefaultSearchLimit.
	Limit int `json:"n_results"`
	// ScoreThreshold is the minimum similarity. Unset selects DefaultScoreThreshold.
	ScoreThreshold *float32    `json:"score_threshold"`
	Filters        rag.Filters `json:"filters"`
	// LanguageFilter is the flat form of Filters.Language; the nested field wins when both are set.
	LanguageFilter string `json:"language_filter"`
}

// Validate checks request bounds.
func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required, validation.RuneLength(1, MaxQueryLength)),
		validation.Field(&r.Limit, validation.Min(0), validation.Max(MaxSearchLimit)),
		validation.Field(&r.ScoreThreshold, validation.Min(float32(0)), validation.Max(float32(1))),
	)
}

// SearchService runs similarity search without answer generation.
type SearchService interface {
	Search(ctx context.Context, req SearchRequest) ([]rag.Hit, error)
}

type searchService struct {
	retriever *rag.Retriever
}

// NewSearchService creates a new SearchService.
func NewSearchService(retriever *rag.Retriever) SearchService {
	return &searchService{retriever: retriever}
}

func (s *searchService) Search(ctx context.Context, req SearchRequest) ([]rag.Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req.Query = strings.TrimSpace(req.Query)
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	params := rag.SearchParams{
		Limit:          DefaultSearchLimit,
		ScoreThreshold: DefaultScoreThreshold,
		Filters:        withLanguage(req.Filters, req.LanguageFilter),
	}
	if req.Limit > 0 {
		params.Limit = req.Limit
	}
	if req.ScoreThreshold != nil {
		params.ScoreThreshold = *req.ScoreThreshold
	}

	hits, err := s.retriever.SearchText(ctx, req.Query, params)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "search completed", "query_length", len(req.Query), "results", len(hits))
	return hits, nil
}

func withLanguage(f rag.Filters, language string) rag.Filters {
	if f.Language == "" {
		f.Language = strings.TrimSpace(language)
	}
	return f
}

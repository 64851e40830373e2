package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks hearsight/internal/rag Embedder

import (
	"context"
	"time"

	"hearsight/internal/catalog"
	"hearsight/internal/contextutil"
	"hearsight/internal/domain"
	"hearsight/internal/vectorstore"
)

// HealthCheckTimeout bounds CheckConnection.
const HealthCheckTimeout = 5 * time.Second

// Embedder turns a query into a vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Retriever runs filtered, thresholded similarity search over the chunks collection.
type Retriever struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
}

// NewRetriever creates a Retriever.
func NewRetriever(embedder Embedder, store vectorstore.VectorStore, collection string) *Retriever {
	return &Retriever{embedder: embedder, store: store, collection: collection}
}

// Search returns hits scoring at least params.ScoreThreshold, best first.
// Backend errors are logged and produce an empty result.
func (r *Retriever) Search(ctx context.Context, queryVector []float32, params SearchParams) []Hit {
	logger := contextutil.LoggerFromContext(ctx)

	threshold := params.ScoreThreshold
	opts := vectorstore.SearchOptions{
		Limit:          params.Limit,
		ScoreThreshold: &threshold,
		Filter:         params.Filters.toFilter(),
	}

	results, err := r.store.Search(ctx, r.collection, queryVector, opts)
	if err != nil {
		logger.ErrorContext(ctx, "vector search failed", "collection", r.collection, "error", err)
		return []Hit{}
	}

	hits := make([]Hit, 0, len(results))
	for _, res := range results {
		c := catalog.DecodeChunk(res.PointID, res.Meta)
		hits = append(hits, Hit{
			ChunkID:    c.ChunkID,
			Score:      res.Score,
			Text:       c.Text,
			Summary:    c.Summary,
			VideoTitle: c.VideoTitle,
			VideoPath:  c.VideoPath,
			VideoID:    c.VideoID,
			Language:   c.Language,
			StartTime:  c.StartTime,
			EndTime:    c.EndTime,
			SourceType: c.SourceType,
		})
	}

	logger.DebugContext(ctx, "vector search completed", "hits", len(hits), "limit", params.Limit, "threshold", params.ScoreThreshold)
	return hits
}

// SearchText embeds query and searches with it.
func (r *Retriever) SearchText(ctx context.Context, query string, params SearchParams) ([]Hit, error) {
	vec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "embedding", Err: err}
	}
	return r.Search(ctx, vec, params), nil
}

// CheckConnection reports whether the vector store is reachable.
func (r *Retriever) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	if err := r.store.HealthCheck(ctx); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "vector store health check failed", "error", err)
		return false
	}
	return true
}

func (f Filters) toFilter() vectorstore.Filter {
	filter := vectorstore.Filter{}
	if f.Language != "" {
		filter["language"] = f.Language
	}
	if f.SourceType != "" {
		filter["source_type"] = f.SourceType
	}
	if f.VideoID != "" {
		filter["video_id"] = f.VideoID
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

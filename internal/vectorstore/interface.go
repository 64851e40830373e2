package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks hearsight/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// Record is a stored point returned without its vector.
type Record struct {
	PointID string
	Meta    map[string]any
}

// Filter is a conjunction of payload equality conditions.
// A nil value matches points whose field is null or absent.
// Supported value types: string, bool, int, int64 and nil.
type Filter map[string]any

// SearchOptions controls a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results. Must be greater than 0.
	Limit int
	// ScoreThreshold, when set, drops results scoring strictly below it.
	ScoreThreshold *float32
	// Filter restricts the candidate points.
	Filter Filter
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search with optional filters and threshold.
	Search(ctx context.Context, collection string, query []float32, opts SearchOptions) ([]SearchResult, error)

	// Scroll returns every point matching filter, up to limit (0 means no limit).
	Scroll(ctx context.Context, collection string, filter Filter, limit int) ([]Record, error)

	// Get returns the points with the given IDs. Missing IDs are skipped.
	Get(ctx context.Context, collection string, ids []string) ([]Record, error)

	// SetPayload merges payload into the existing payload of the given points.
	SetPayload(ctx context.Context, collection string, ids []string, payload map[string]any) error

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// DeleteByFilter removes every point matching filter.
	DeleteByFilter(ctx context.Context, collection string, filter Filter) error

	// Count returns the exact number of points matching filter.
	Count(ctx context.Context, collection string, filter Filter) (int, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
}

// CollectionManager creates and inspects collections. Both store
// implementations satisfy it; it is kept apart from VectorStore because only
// startup and health checks need it.
type CollectionManager interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error
}

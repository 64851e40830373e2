package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"hearsight/internal/contextutil"
)

// scrollPageSize is the page size used when walking a collection.
const scrollPageSize = 256

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
// An https URL enables TLS; apiKey may be empty for local deployments.
func NewQdrantStore(urlStr, apiKey string) (*QdrantStore, error) {
	host, port, useTLS, err := parseEndpoint(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client: client,
	}, nil
}

// parseEndpoint derives the gRPC host and port from the Qdrant HTTP URL.
func parseEndpoint(urlStr string) (string, int, bool, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	return host, port, parsedURL.Scheme == "https", nil
}

// Close releases the underlying gRPC connections.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// Upsert inserts or updates points in the collection.
// It waits for the write to be applied so a following read observes it.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qdrantPoint := &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vec...),
		}

		if len(point.Meta) > 0 {
			payload, err := qdrant.TryValueMap(point.Meta)
			if err != nil {
				return fmt.Errorf("failed to convert payload for point %s: %w", point.ID, err)
			}
			qdrantPoint.Payload = payload
		}

		qdrantPoints = append(qdrantPoints, qdrantPoint)
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search performs a similarity search with optional filters.
// The score threshold is evaluated by Qdrant, so points below it never leave the server.
func (s *QdrantStore) Search(ctx context.Context, collection string, query []float32, opts SearchOptions) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if opts.Limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	qdrantFilter, err := buildFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	limit := uint64(opts.Limit)
	queryReq := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		ScoreThreshold: opts.ScoreThreshold,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if qdrantFilter != nil {
		queryReq.Filter = qdrantFilter
	}

	scoredPoints, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "limit", opts.Limit, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, result := range scoredPoints {
		meta := make(map[string]any)
		if result.Payload != nil {
			meta = convertPayloadToMap(result.Payload)
		}

		results = append(results, SearchResult{
			PointID: pointIDString(result.Id),
			Score:   result.Score,
			Meta:    meta,
		})
	}

	logger.DebugContext(ctx, "search completed", "collection", collection, "limit", opts.Limit, "results", len(results))
	return results, nil
}

// Scroll returns every point matching filter, paging through the collection.
func (s *QdrantStore) Scroll(ctx context.Context, collection string, filter Filter, limit int) ([]Record, error) {
	qdrantFilter, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}

	var (
		records []Record
		offset  *qdrant.PointId
	)
	for {
		pageSize := uint32(scrollPageSize)
		if limit > 0 && limit-len(records) < scrollPageSize {
			pageSize = uint32(limit - len(records))
		}

		points, next, err := s.client.ScrollAndOffset(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Filter:         qdrantFilter,
			Offset:         offset,
			Limit:          &pageSize,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(false),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll points: %w", err)
		}

		for _, p := range points {
			records = append(records, Record{
				PointID: pointIDString(p.Id),
				Meta:    convertPayloadToMap(p.Payload),
			})
		}

		if next == nil || len(points) == 0 || (limit > 0 && len(records) >= limit) {
			break
		}
		offset = next
	}

	return records, nil
}

// Get returns the points with the given IDs.
func (s *QdrantStore) Get(ctx context.Context, collection string, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            toPointIDs(ids),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get points: %w", err)
	}

	records := make([]Record, 0, len(points))
	for _, p := range points {
		records = append(records, Record{
			PointID: pointIDString(p.Id),
			Meta:    convertPayloadToMap(p.Payload),
		})
	}
	return records, nil
}

// SetPayload merges payload into the given points.
func (s *QdrantStore) SetPayload(ctx context.Context, collection string, ids []string, payload map[string]any) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 || len(payload) == 0 {
		return nil
	}

	values, err := qdrant.TryValueMap(payload)
	if err != nil {
		return fmt.Errorf("failed to convert payload: %w", err)
	}

	_, err = s.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Payload:        values,
		PointsSelector: qdrant.NewPointsSelector(toPointIDs(ids)...),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to set payload", "collection", collection, "count", len(ids), "error", err)
		return fmt.Errorf("failed to set payload: %w", err)
	}
	return nil
}

// Delete removes points by their IDs.
func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(toPointIDs(ids)...),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", collection, "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	logger.InfoContext(ctx, "deleted points", "collection", collection, "count", len(ids))
	return nil
}

// DeleteByFilter removes every point matching filter. An empty filter is rejected
// so a bug cannot wipe a whole collection.
func (s *QdrantStore) DeleteByFilter(ctx context.Context, collection string, filter Filter) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(filter) == 0 {
		return fmt.Errorf("refusing to delete with an empty filter")
	}
	qdrantFilter, err := buildFilter(filter)
	if err != nil {
		return err
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(qdrantFilter),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points by filter", "collection", collection, "error", err)
		return fmt.Errorf("failed to delete points by filter: %w", err)
	}

	logger.InfoContext(ctx, "deleted points by filter", "collection", collection)
	return nil
}

// Count returns the exact number of points matching filter.
func (s *QdrantStore) Count(ctx context.Context, collection string, filter Filter) (int, error) {
	qdrantFilter, err := buildFilter(filter)
	if err != nil {
		return 0, err
	}

	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Filter:         qdrantFilter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

// HealthCheck lists collections, which fails when Qdrant is unreachable.
func (s *QdrantStore) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListCollections(ctx); err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	return nil
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// EnsureCollection ensures a collection exists with the specified vector size.
// If the collection exists, validates that the vector size matches.
// If it doesn't exist, creates it with the specified vector size.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		logger.InfoContext(ctx, "collection created", "collection", collection, "vector_size", vectorSize)
		return nil
	}

	info, err := s.GetCollectionInfo(ctx, collection)
	if err != nil {
		return err
	}
	if info.VectorSize == 0 {
		return fmt.Errorf("could not determine collection vector size")
	}
	if info.VectorSize != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, info.VectorSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

// GetCollectionInfo returns information about a collection including point count.
func (s *QdrantStore) GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	var vectorSize int
	if config := info.Config; config != nil && config.Params != nil {
		if vectorsConfig := config.Params.GetVectorsConfig(); vectorsConfig != nil {
			if params := vectorsConfig.GetParams(); params != nil {
				vectorSize = int(params.Size)
			}
		}
	}

	var pointsCount int
	if info.PointsCount != nil {
		pointsCount = int(*info.PointsCount)
	}

	status := "unknown"
	if info.Status != 0 {
		status = info.Status.String()
	}

	return &CollectionInfo{
		VectorSize:  vectorSize,
		PointsCount: pointsCount,
		Status:      status,
	}, nil
}

// CollectionInfo contains information about a Qdrant collection.
type CollectionInfo struct {
	VectorSize  int
	PointsCount int
	Status      string
}

// buildFilter converts a Filter into Qdrant must-conditions.
// Keys are visited in sorted order so the request is deterministic.
func buildFilter(filter Filter) (*qdrant.Filter, error) {
	if len(filter) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	must := make([]*qdrant.Condition, 0, len(keys))
	for _, key := range keys {
		switch v := filter[key].(type) {
		case nil:
			// Uncategorized records may carry an explicit null or no key at all.
			must = append(must, qdrant.NewFilterAsCondition(&qdrant.Filter{
				Should: []*qdrant.Condition{qdrant.NewIsNull(key), qdrant.NewIsEmpty(key)},
			}))
		case string:
			must = append(must, qdrant.NewMatchKeyword(key, v))
		case bool:
			must = append(must, qdrant.NewMatchBool(key, v))
		case int:
			must = append(must, qdrant.NewMatchInt(key, int64(v)))
		case int64:
			must = append(must, qdrant.NewMatchInt(key, v))
		default:
			return nil, fmt.Errorf("unsupported filter value for %s: %T", key, v)
		}
	}

	return &qdrant.Filter{Must: must}, nil
}

func toPointIDs(ids []string) []*qdrant.PointId {
	out := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		out = append(out, qdrant.NewID(id))
	}
	return out
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}

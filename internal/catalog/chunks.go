package catalog

import (
	"context"
	"fmt"
	"sort"

	"hearsight/internal/vectorstore"
)

// ChunkStore reads and bulk-deletes transcript fragments.
type ChunkStore struct {
	store      vectorstore.VectorStore
	collection string
}

// NewChunkStore creates a ChunkStore over the chunks collection.
func NewChunkStore(store vectorstore.VectorStore, collection string) *ChunkStore {
	return &ChunkStore{store: store, collection: collection}
}

// Collection returns the name of the chunks collection.
func (s *ChunkStore) Collection() string {
	return s.collection
}

// ByVideo returns every chunk of a video ordered by start time.
func (s *ChunkStore) ByVideo(ctx context.Context, videoID string) ([]Chunk, error) {
	records, err := s.store.Scroll(ctx, s.collection, vectorstore.Filter{"video_id": videoID}, 0)
	if err != nil {
		return nil, storeUnavailable("failed to scroll chunks", err)
	}

	chunks := make([]Chunk, 0, len(records))
	for _, rec := range records {
		chunks = append(chunks, DecodeChunk(rec.PointID, rec.Meta))
	}
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].StartTime < chunks[j].StartTime })
	return chunks, nil
}

// Count returns the number of chunks stored for a video.
func (s *ChunkStore) Count(ctx context.Context, videoID string) (int, error) {
	n, err := s.store.Count(ctx, s.collection, vectorstore.Filter{"video_id": videoID})
	if err != nil {
		return 0, storeUnavailable("failed to count chunks", err)
	}
	return n, nil
}

// DeleteByVideo removes every chunk of a video and returns how many existed.
func (s *ChunkStore) DeleteByVideo(ctx context.Context, videoID string) (int, error) {
	if videoID == "" {
		return 0, fmt.Errorf("video id is required")
	}
	n, err := s.Count(ctx, videoID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.store.DeleteByFilter(ctx, s.collection, vectorstore.Filter{"video_id": videoID}); err != nil {
		return 0, storeUnavailable("failed to delete chunks", err)
	}
	return n, nil
}

// Stats is the segment count and duration derived from a video's chunks.
type Stats struct {
	Segments int
	Duration float64
}

// StatsFor computes segment count and maximum end time for a video.
func (s *ChunkStore) StatsFor(ctx context.Context, videoID string) (Stats, error) {
	chunks, err := s.ByVideo(ctx, videoID)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Segments: len(chunks)}
	for _, c := range chunks {
		if c.EndTime > st.Duration {
			st.Duration = c.EndTime
		}
	}
	return st, nil
}

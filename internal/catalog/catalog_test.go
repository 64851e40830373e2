package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hearsight/internal/vectorstore"
)

const (
	testChunks   = "video_chunks"
	testMetadata = "video_metadata"
	testDim      = 2
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fixture struct {
	store    *vectorstore.MemoryStore
	chunks   *ChunkStore
	registry *FolderRegistry
	catalog  *VideoCatalog
	cache    *ListCache
	signer   *recordingSigner
}

type recordingSigner struct {
	calls   []string
	expires time.Duration
}

func (s *recordingSigner) SignURL(_ context.Context, rawURL string, expires time.Duration) string {
	s.calls = append(s.calls, rawURL)
	s.expires = expires
	return "signed:" + rawURL
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := vectorstore.NewMemoryStore()
	require.NoError(t, store.EnsureCollection(ctx, testChunks, testDim))
	require.NoError(t, store.EnsureCollection(ctx, testMetadata, testDim))

	cache := NewListCache(16, time.Minute)
	chunks := NewChunkStore(store, testChunks)
	registry := NewFolderRegistry(store, testMetadata, testDim, cache)
	signer := &recordingSigner{}

	return &fixture{
		store:    store,
		chunks:   chunks,
		registry: registry,
		catalog:  NewVideoCatalog(store, testMetadata, chunks, registry, cache, signer),
		cache:    cache,
		signer:   signer,
	}
}

// addVideo stores a metadata record and its chunks. The metadata point id is the video id.
func (f *fixture) addVideo(t *testing.T, v Video, chunks ...Chunk) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.store.Upsert(ctx, testMetadata, []vectorstore.Point{
		{ID: "meta-" + v.VideoID, Vec: []float32{0, 1}, Meta: VideoPayload(v)},
	}))

	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		c.VideoID = v.VideoID
		if c.VideoPath == "" {
			c.VideoPath = v.Path
		}
		if c.VideoTitle == "" {
			c.VideoTitle = v.Title
		}
		points[i] = vectorstore.Point{ID: c.ChunkID, Vec: []float32{1, 0}, Meta: ChunkPayload(c)}
	}
	if len(points) > 0 {
		require.NoError(t, f.store.Upsert(ctx, testChunks, points))
	}
}

func (f *fixture) video(t *testing.T, videoID string) Video {
	t.Helper()
	v, err := f.catalog.Get(context.Background(), videoID)
	require.NoError(t, err)
	return v
}

func (f *fixture) folder(t *testing.T, folderID string) FolderNode {
	t.Helper()
	n, err := f.registry.Lookup(context.Background(), folderID)
	require.NoError(t, err)
	return n
}

func strPtr(s string) *string { return &s }

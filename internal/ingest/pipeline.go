package ingest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"hearsight/internal/catalog"
	"hearsight/internal/contextutil"
	"hearsight/internal/vectorstore"
)

// DefaultBatchSize bounds the number of texts sent per embeddings request.
const DefaultBatchSize = 32

// pointNamespace scopes the deterministic point ids derived by the loader.
var pointNamespace = uuid.MustParse("6f1d3c1e-8a43-4d8f-9b7a-2f0f5f2a9c11")

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline loads transcript documents into the chunks and metadata collections.
type Pipeline struct {
	embedder           Embedder
	store              vectorstore.VectorStore
	chunksCollection   string
	metadataCollection string
	cache              *catalog.ListCache
	batchSize          int
}

// NewPipeline creates a new ingestion pipeline. cache may be nil.
func NewPipeline(embedder Embedder, store vectorstore.VectorStore, chunksCollection, metadataCollection string, cache *catalog.ListCache) *Pipeline {
	return &Pipeline{
		embedder:           embedder,
		store:              store,
		chunksCollection:   chunksCollection,
		metadataCollection: metadataCollection,
		cache:              cache,
		batchSize:          DefaultBatchSize,
	}
}

// WithBatchSize overrides the embeddings batch size.
func (p *Pipeline) WithBatchSize(n int) *Pipeline {
	if n > 0 {
		p.batchSize = n
	}
	return p
}

// Result describes one ingested video.
type Result struct {
	VideoID       string     `json:"video_id"`
	VideoPath     string     `json:"video_path"`
	Chunks        int        `json:"chunks"`
	Replaced      bool       `json:"replaced"`
	TotalDuration float64    `json:"total_duration"`
	TokenStats    TokenStats `json:"token_stats"`
}

// ChunkPointID is the deterministic point id of a video's index-th chunk.
func ChunkPointID(videoID string, index int) string {
	return uuid.NewSHA1(pointNamespace, []byte(videoID+":chunk:"+strconv.Itoa(index))).String()
}

// MetadataPointID is the deterministic point id of a video's metadata record.
func MetadataPointID(videoID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(videoID+":metadata")).String()
}

// Ingest embeds and stores a document. Re-ingesting the same video path
// replaces its chunks and refreshes its metadata while keeping its folder.
func (p *Pipeline) Ingest(ctx context.Context, doc Document) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := doc.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid transcript: %w", err)
	}

	videoID := VideoID(doc.VideoPath)
	logger = logger.With("video_id", videoID, "video_path", doc.VideoPath)

	existing, err := p.store.Scroll(ctx, p.metadataCollection, vectorstore.Filter{"video_id": videoID}, 1)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check existing video: %w", err)
	}

	texts := make([]string, 0, len(doc.Segments)+1)
	for _, seg := range doc.Segments {
		texts = append(texts, seg.embeddingText())
	}
	texts = append(texts, doc.overviewText())

	vectors, err := p.embedAll(ctx, texts)
	if err != nil {
		return Result{}, err
	}

	video := catalog.Video{
		VideoID:       videoID,
		Path:          doc.VideoPath,
		Title:         doc.VideoTitle,
		Summary:       doc.VideoSummary,
		Language:      doc.Language,
		SourceType:    doc.SourceType,
		Folder:        catalog.UncategorizedName,
		TotalSegments: len(doc.Segments),
	}

	metaID := MetadataPointID(videoID)
	replaced := len(existing) > 0
	if replaced {
		prev := catalog.DecodeVideo(existing[0].PointID, existing[0].Meta)
		video.FolderID = prev.FolderID
		video.Folder = prev.Folder
		metaID = existing[0].PointID

		// Stale chunks from a longer previous transcript would otherwise survive.
		if err := p.store.DeleteByFilter(ctx, p.chunksCollection, vectorstore.Filter{"video_id": videoID}); err != nil {
			return Result{}, fmt.Errorf("failed to delete previous chunks: %w", err)
		}
	}

	points := make([]vectorstore.Point, len(doc.Segments))
	lengths := make([]int, len(doc.Segments))
	for i, seg := range doc.Segments {
		chunk := catalog.Chunk{
			VideoID:    videoID,
			StartTime:  seg.StartTime,
			EndTime:    seg.EndTime,
			Text:       seg.Text,
			Summary:    seg.Summary,
			VideoTitle: doc.VideoTitle,
			VideoPath:  doc.VideoPath,
			Language:   doc.Language,
			SourceType: doc.SourceType,
		}
		points[i] = vectorstore.Point{
			ID:   ChunkPointID(videoID, i),
			Vec:  vectors[i],
			Meta: catalog.ChunkPayload(chunk),
		}
		lengths[i] = estimateTokens(seg.Text)
		if seg.EndTime > video.TotalDuration {
			video.TotalDuration = seg.EndTime
		}
	}

	if err := p.store.Upsert(ctx, p.chunksCollection, points); err != nil {
		return Result{}, fmt.Errorf("failed to upsert chunks: %w", err)
	}

	meta := vectorstore.Point{ID: metaID, Vec: vectors[len(vectors)-1], Meta: catalog.VideoPayload(video)}
	if err := p.store.Upsert(ctx, p.metadataCollection, []vectorstore.Point{meta}); err != nil {
		return Result{}, fmt.Errorf("failed to upsert video metadata: %w", err)
	}

	p.cache.Invalidate()

	result := Result{
		VideoID:       videoID,
		VideoPath:     doc.VideoPath,
		Chunks:        len(points),
		Replaced:      replaced,
		TotalDuration: video.TotalDuration,
		TokenStats:    computeTokenStats(lengths),
	}
	logger.InfoContext(ctx, "ingested video", "chunks", result.Chunks, "replaced", replaced)
	return result, nil
}

// IngestFiles loads each path and ingests it. Failures for individual files
// are logged and counted but do not stop the run.
func (p *Pipeline) IngestFiles(ctx context.Context, paths []string) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting ingestion", "total_files", len(paths))

	results := make([]Result, 0, len(paths))
	errorCount := 0

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		doc, err := LoadDocument(path)
		if err == nil {
			var result Result
			result, err = p.Ingest(ctx, doc)
			if err == nil {
				results = append(results, result)
				continue
			}
		}
		errorCount++
		logger.ErrorContext(ctx, "failed to ingest file", "path", path, "error", err)
	}

	logger.InfoContext(ctx, "ingestion completed", "total_files", len(paths), "success", len(results), "errors", errorCount)

	if errorCount > 0 {
		return results, fmt.Errorf("ingestion completed with %d errors", errorCount)
	}
	return results, nil
}

func (p *Pipeline) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		batch, err := p.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(batch))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hearsight/internal/contextutil"
	"hearsight/internal/domain"
	"hearsight/internal/vectorstore"
)

// Pagination limits for List.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SignedURLTTL is how long a playback URL stays valid.
const SignedURLTTL = time.Hour

// URLSigner turns a stored media path into a playable URL.
type URLSigner interface {
	SignURL(ctx context.Context, rawURL string, expires time.Duration) string
}

// VideoDeleteResult itemizes the steps of a video delete.
type VideoDeleteResult struct {
	VideoID          string   `json:"video_id"`
	DeletedMetadata  bool     `json:"deleted_metadata"`
	DeletedChunks    int      `json:"deleted_chunks"`
	CountsRecomputed bool     `json:"counts_recomputed"`
	Errors           []string `json:"errors"`
}

// ListQuery selects a page of videos. A nil FolderID lists every video.
type ListQuery struct {
	FolderID *string
	Page     int
	PageSize int
}

// VideoPage is one page of the catalog.
type VideoPage struct {
	Videos     []Video `json:"videos"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
	Cached     bool    `json:"cached"`
}

// Segment is one transcript line of the playback view. Times are milliseconds.
type Segment struct {
	Index     int     `json:"index"`
	SpeakerID *string `json:"spk_id"`
	Sentence  string  `json:"sentence"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// ParagraphSummary is a summarized span of the video. Times are milliseconds.
type ParagraphSummary struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
	Summary   string  `json:"summary"`
}

// OverallSummary describes the whole video.
type OverallSummary struct {
	Topic          string  `json:"topic"`
	Summary        string  `json:"summary"`
	ParagraphCount int     `json:"paragraph_count"`
	TotalDuration  float64 `json:"total_duration"`
}

// VideoParagraphs is the playback view rebuilt from a video's chunks.
type VideoParagraphs struct {
	VideoID      string             `json:"video_id"`
	MediaPath    string             `json:"media_path,omitempty"`
	StaticURL    string             `json:"static_url,omitempty"`
	Segments     []Segment          `json:"segments"`
	Summaries    []ParagraphSummary `json:"summaries"`
	VideoSummary string             `json:"video_summary"`
	Summary      OverallSummary     `json:"summary"`
}

// VideoCatalog manages per-video records in the metadata collection.
type VideoCatalog struct {
	store      vectorstore.VectorStore
	collection string
	chunks     *ChunkStore
	registry   *FolderRegistry
	cache      *ListCache
	signer     URLSigner
}

// NewVideoCatalog wires the catalog. cache and signer may be nil.
func NewVideoCatalog(store vectorstore.VectorStore, collection string, chunks *ChunkStore, registry *FolderRegistry, cache *ListCache, signer URLSigner) *VideoCatalog {
	return &VideoCatalog{
		store:      store,
		collection: collection,
		chunks:     chunks,
		registry:   registry,
		cache:      cache,
		signer:     signer,
	}
}

// Get returns a single video record.
func (c *VideoCatalog) Get(ctx context.Context, videoID string) (Video, error) {
	rec, err := c.find(ctx, vectorstore.Filter{"video_id": videoID})
	if err != nil {
		return Video{}, err
	}
	if rec == nil {
		return Video{}, &domain.NotFoundError{Resource: "video", ID: videoID}
	}
	return DecodeVideo(rec.PointID, rec.Meta), nil
}

func (c *VideoCatalog) find(ctx context.Context, filter vectorstore.Filter) (*vectorstore.Record, error) {
	records, err := c.store.Scroll(ctx, c.collection, videoFilter(filter), 1)
	if err != nil {
		return nil, storeUnavailable("failed to query video metadata", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// AssignToFolder moves a video into folderID, or to uncategorized when nil.
// Folder counts are recomputed afterwards; a recount failure is only logged.
func (c *VideoCatalog) AssignToFolder(ctx context.Context, videoID string, folderID *string) error {
	rec, err := c.find(ctx, vectorstore.Filter{"video_id": videoID})
	if err != nil {
		return err
	}
	if rec == nil {
		return &domain.NotFoundError{Resource: "video", ID: videoID}
	}
	return c.assign(ctx, rec, folderID)
}

// AssignPathToFolder resolves the video by its stored path and assigns it.
func (c *VideoCatalog) AssignPathToFolder(ctx context.Context, videoPath string, folderID *string) error {
	rec, err := c.find(ctx, vectorstore.Filter{"video_path": videoPath})
	if err != nil {
		return err
	}
	if rec == nil {
		return &domain.NotFoundError{Resource: "video", ID: videoPath}
	}
	return c.assign(ctx, rec, folderID)
}

func (c *VideoCatalog) assign(ctx context.Context, rec *vectorstore.Record, folderID *string) error {
	logger := contextutil.LoggerFromContext(ctx)

	patch := map[string]any{"folder_id": nil, "folder": UncategorizedName}
	if folderID != nil {
		folder, err := c.registry.Lookup(ctx, *folderID)
		if err != nil {
			return err
		}
		patch = map[string]any{"folder_id": folder.FolderID, "folder": folder.Name}
	}

	if err := c.store.SetPayload(ctx, c.collection, []string{rec.PointID}, patch); err != nil {
		return storeUnavailable("failed to update video folder", err)
	}
	c.cache.Invalidate()

	video := DecodeVideo(rec.PointID, rec.Meta)
	logger.InfoContext(ctx, "video assigned to folder", "video_id", video.VideoID, "folder", patch["folder"])

	if err := c.registry.RecomputeCounts(ctx); err != nil {
		logger.WarnContext(ctx, "failed to recompute folder counts", "error", err)
	}
	return nil
}

// DeleteVideo removes the metadata record, then the chunks, then recounts
// folders. The lookup must succeed before anything is removed; after that
// every step runs and failures are collected in the result.
func (c *VideoCatalog) DeleteVideo(ctx context.Context, videoID string) (VideoDeleteResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	result := VideoDeleteResult{VideoID: videoID, Errors: []string{}}

	rec, err := c.find(ctx, vectorstore.Filter{"video_id": videoID})
	if err != nil {
		return result, err
	}
	chunkCount, err := c.chunks.Count(ctx, videoID)
	if err != nil {
		return result, err
	}
	if rec == nil && chunkCount == 0 {
		return result, &domain.NotFoundError{Resource: "video", ID: videoID}
	}

	if rec != nil {
		if err := c.store.Delete(ctx, c.collection, []string{rec.PointID}); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete metadata: %v", err))
		} else {
			result.DeletedMetadata = true
		}
	}

	deleted, err := c.chunks.DeleteByVideo(ctx, videoID)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.DeletedChunks = deleted
	}
	c.cache.Invalidate()

	if err := c.registry.RecomputeCounts(ctx); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to recompute folder counts: %v", err))
	} else {
		result.CountsRecomputed = true
	}

	logger.InfoContext(ctx, "video deleted",
		"video_id", videoID,
		"deleted_metadata", result.DeletedMetadata,
		"deleted_chunks", result.DeletedChunks,
		"errors", len(result.Errors),
	)
	return result, nil
}

// ListWithStats returns every video (optionally in one folder) with segment
// count and duration recomputed from its chunks.
func (c *VideoCatalog) ListWithStats(ctx context.Context, folderID *string) ([]Video, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var filter vectorstore.Filter
	if folderID != nil {
		filter = vectorstore.Filter{"folder_id": *folderID}
	}
	records, err := c.store.Scroll(ctx, c.collection, videoFilter(filter), 0)
	if err != nil {
		return nil, storeUnavailable("failed to list videos", err)
	}

	videos := make([]Video, 0, len(records))
	for _, rec := range records {
		v := DecodeVideo(rec.PointID, rec.Meta)
		stats, err := c.chunks.StatsFor(ctx, v.VideoID)
		if err != nil {
			logger.WarnContext(ctx, "failed to compute video stats, using stored values", "video_id", v.VideoID, "error", err)
		} else {
			v.TotalSegments = stats.Segments
			v.TotalDuration = stats.Duration
		}
		videos = append(videos, v)
	}
	return videos, nil
}

// List returns one page of ListWithStats, served from the cache when fresh.
func (c *VideoCatalog) List(ctx context.Context, q ListQuery) (VideoPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	videos, cached := c.cache.Get(q.FolderID)
	if !cached {
		var err error
		videos, err = c.ListWithStats(ctx, q.FolderID)
		if err != nil {
			return VideoPage{}, err
		}
		c.cache.Set(q.FolderID, videos)
	}

	total := len(videos)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	pageVideos := make([]Video, end-start)
	copy(pageVideos, videos[start:end])

	return VideoPage{
		Videos:     pageVideos,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
		Cached:     cached,
	}, nil
}

// Paragraphs rebuilds the playback view of a video from its chunks.
func (c *VideoCatalog) Paragraphs(ctx context.Context, videoID string) (VideoParagraphs, error) {
	logger := contextutil.LoggerFromContext(ctx)

	chunks, err := c.chunks.ByVideo(ctx, videoID)
	if err != nil {
		return VideoParagraphs{}, err
	}
	if len(chunks) == 0 {
		return VideoParagraphs{}, &domain.NotFoundError{Resource: "video", ID: videoID}
	}

	var meta Video
	rec, err := c.find(ctx, vectorstore.Filter{"video_id": videoID})
	if err != nil {
		logger.WarnContext(ctx, "failed to read video metadata, using chunk fields", "video_id", videoID, "error", err)
	} else if rec != nil {
		meta = DecodeVideo(rec.PointID, rec.Meta)
	}

	path := meta.Path
	if path == "" {
		path = chunks[0].VideoPath
	}
	title := meta.Title
	if title == "" {
		title = chunks[0].VideoTitle
	}

	out := VideoParagraphs{
		VideoID:   videoID,
		MediaPath: path,
		Segments:  make([]Segment, len(chunks)),
		Summaries: []ParagraphSummary{},
	}
	for i, ch := range chunks {
		out.Segments[i] = Segment{
			Index:     i,
			Sentence:  ch.Text,
			StartTime: ch.StartTime * 1000,
			EndTime:   ch.EndTime * 1000,
		}
		if ch.Summary != "" {
			out.Summaries = append(out.Summaries, ParagraphSummary{
				StartTime: ch.StartTime * 1000,
				EndTime:   ch.EndTime * 1000,
				Text:      ch.Text,
				Summary:   ch.Summary,
			})
		}
	}

	out.VideoSummary = videoSummary(meta.Summary, out.Summaries, len(out.Segments))
	out.Summary = OverallSummary{
		Topic:          title,
		Summary:        fmt.Sprintf("共 %d 个片段", len(out.Segments)),
		ParagraphCount: len(out.Summaries),
		TotalDuration:  out.Segments[len(out.Segments)-1].EndTime,
	}

	if path != "" && c.signer != nil {
		out.StaticURL = c.signer.SignURL(ctx, path, SignedURLTTL)
	}

	return out, nil
}

func videoSummary(stored string, summaries []ParagraphSummary, segments int) string {
	if stored != "" {
		return stored
	}
	if len(summaries) > 0 {
		parts := make([]string, len(summaries))
		for i, s := range summaries {
			parts[i] = fmt.Sprintf("**时间段 %d** (%.1fs - %.1fs)\n%s", i+1, s.StartTime/1000, s.EndTime/1000, s.Summary)
		}
		return strings.Join(parts, "\n\n")
	}
	return fmt.Sprintf("该视频共 %d 个片段，暂无详细摘要", segments)
}

package catalog

import (
	"encoding/json"
	"fmt"
	"time"
)

// UncategorizedName is the folder name shown for videos without a folder.
const UncategorizedName = "未分类"

// RecordKind tags a payload read back from the vector store.
type RecordKind int

const (
	KindUnknown RecordKind = iota
	KindChunk
	KindVideo
	KindFolderRegistry
)

const registryType = "folder_registry"

// Chunk is a timestamped transcript fragment.
type Chunk struct {
	ChunkID    string  `json:"chunk_id"`
	VideoID    string  `json:"video_id"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Text       string  `json:"chunk_text"`
	Summary    string  `json:"paragraph_summary,omitempty"`
	VideoTitle string  `json:"video_title"`
	VideoPath  string  `json:"video_path,omitempty"`
	Language   string  `json:"language"`
	SourceType string  `json:"source_type"`
}

// Video is the catalog record for one video.
type Video struct {
	VideoID       string  `json:"video_id"`
	Path          string  `json:"video_path,omitempty"`
	Title         string  `json:"video_title,omitempty"`
	Summary       string  `json:"video_summary,omitempty"`
	Language      string  `json:"language"`
	SourceType    string  `json:"source_type"`
	FolderID      *string `json:"folder_id"`
	Folder        string  `json:"folder"`
	TotalSegments int     `json:"total_segments"`
	TotalDuration float64 `json:"total_duration"`
}

// FolderNode is one entry of the folder registry.
type FolderNode struct {
	FolderID   string    `json:"folder_id"`
	Name       string    `json:"name"`
	ParentID   *string   `json:"parent_id"`
	VideoCount int       `json:"video_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// KindOf classifies a raw payload.
func KindOf(meta map[string]any) RecordKind {
	if str(meta, "type", "") == registryType {
		return KindFolderRegistry
	}
	if _, ok := meta["chunk_text"]; ok {
		return KindChunk
	}
	if _, ok := meta["video_id"]; ok {
		return KindVideo
	}
	return KindUnknown
}

// ChunkPayload encodes c into the chunks collection layout.
func ChunkPayload(c Chunk) map[string]any {
	meta := map[string]any{
		"chunk_text":  c.Text,
		"video_title": c.VideoTitle,
		"video_path":  c.VideoPath,
		"video_id":    c.VideoID,
		"language":    c.Language,
		"start_time":  c.StartTime,
		"end_time":    c.EndTime,
		"source_type": c.SourceType,
	}
	if c.Summary != "" {
		meta["paragraph_summary"] = c.Summary
	}
	return meta
}

// DecodeChunk reads a chunk payload, filling defaults for missing keys.
func DecodeChunk(pointID string, meta map[string]any) Chunk {
	return Chunk{
		ChunkID:    pointID,
		VideoID:    str(meta, "video_id", ""),
		StartTime:  num(meta, "start_time"),
		EndTime:    num(meta, "end_time"),
		Text:       str(meta, "chunk_text", ""),
		Summary:    str(meta, "paragraph_summary", ""),
		VideoTitle: str(meta, "video_title", ""),
		VideoPath:  str(meta, "video_path", ""),
		Language:   str(meta, "language", ""),
		SourceType: str(meta, "source_type", ""),
	}
}

// VideoPayload encodes v into the metadata collection layout.
func VideoPayload(v Video) map[string]any {
	meta := map[string]any{
		"video_id":       v.VideoID,
		"video_path":     v.Path,
		"video_title":    v.Title,
		"video_summary":  v.Summary,
		"total_segments": v.TotalSegments,
		"total_duration": v.TotalDuration,
		"language":       v.Language,
		"source_type":    v.SourceType,
		"folder":         v.Folder,
		"folder_id":      nil,
	}
	if v.FolderID != nil {
		meta["folder_id"] = *v.FolderID
	}
	if v.Folder == "" {
		meta["folder"] = UncategorizedName
	}
	return meta
}

// DecodeVideo reads a metadata payload. The point id stands in for a missing video_id.
func DecodeVideo(pointID string, meta map[string]any) Video {
	v := Video{
		VideoID:       str(meta, "video_id", pointID),
		Path:          str(meta, "video_path", ""),
		Title:         str(meta, "video_title", ""),
		Summary:       str(meta, "video_summary", ""),
		Language:      str(meta, "language", ""),
		SourceType:    str(meta, "source_type", ""),
		Folder:        str(meta, "folder", UncategorizedName),
		TotalSegments: int(num(meta, "total_segments")),
		TotalDuration: num(meta, "total_duration"),
	}
	if id := str(meta, "folder_id", ""); id != "" {
		v.FolderID = &id
	}
	return v
}

type registryDoc struct {
	Nodes   []FolderNode
	Version int64
}

func registryPayload(doc registryDoc) (map[string]any, error) {
	nodes := doc.Nodes
	if nodes == nil {
		nodes = []FolderNode{}
	}
	data, err := json.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode folder registry: %w", err)
	}
	return map[string]any{
		"type":          registryType,
		"registry_data": string(data),
		"version":       doc.Version,
	}, nil
}

func decodeRegistry(meta map[string]any) (registryDoc, error) {
	doc := registryDoc{Version: int64(num(meta, "version"))}
	raw := str(meta, "registry_data", "")
	if raw == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(raw), &doc.Nodes); err != nil {
		return registryDoc{}, fmt.Errorf("failed to decode folder registry: %w", err)
	}
	return doc, nil
}

func str(meta map[string]any, key, def string) string {
	if v, ok := meta[key].(string); ok && v != "" {
		return v
	}
	return def
}

func num(meta map[string]any, key string) float64 {
	switch v := meta[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

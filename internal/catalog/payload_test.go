package catalog

import (
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
		want RecordKind
	}{
		{"registry", map[string]any{"type": "folder_registry", "registry_data": "[]"}, KindFolderRegistry},
		{"chunk", map[string]any{"chunk_text": "hi", "video_id": "v"}, KindChunk},
		{"video", map[string]any{"video_id": "v", "folder": "x"}, KindVideo},
		{"unknown", map[string]any{"foo": "bar"}, KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.meta); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeVideo_Defaults(t *testing.T) {
	v := DecodeVideo("point-1", map[string]any{
		"total_segments": int64(7),
		"total_duration": 12.5,
		"folder_id":      nil,
	})

	if v.VideoID != "point-1" {
		t.Errorf("VideoID = %q, want point id fallback", v.VideoID)
	}
	if v.Folder != UncategorizedName {
		t.Errorf("Folder = %q, want %q", v.Folder, UncategorizedName)
	}
	if v.FolderID != nil {
		t.Errorf("FolderID = %v, want nil", *v.FolderID)
	}
	if v.TotalSegments != 7 || v.TotalDuration != 12.5 {
		t.Errorf("stats = %d/%v", v.TotalSegments, v.TotalDuration)
	}
}

func TestVideoPayload(t *testing.T) {
	folder := "folder_1_abcdef12"
	meta := VideoPayload(Video{VideoID: "v", FolderID: &folder, Folder: "Talks"})
	if meta["folder_id"] != folder || meta["folder"] != "Talks" {
		t.Errorf("payload = %v", meta)
	}

	meta = VideoPayload(Video{VideoID: "v"})
	if v, ok := meta["folder_id"]; !ok || v != nil {
		t.Errorf("folder_id = %v, present=%v; want explicit nil", v, ok)
	}
	if meta["folder"] != UncategorizedName {
		t.Errorf("folder = %v", meta["folder"])
	}
}

func TestChunkPayloadRoundTrip(t *testing.T) {
	in := Chunk{
		VideoID: "v", StartTime: 1.5, EndTime: 3, Text: "t", Summary: "s",
		VideoTitle: "title", VideoPath: "/p", Language: "zh", SourceType: "video",
	}
	out := DecodeChunk("c1", ChunkPayload(in))
	in.ChunkID = "c1"
	if out != in {
		t.Errorf("DecodeChunk(ChunkPayload()) = %+v, want %+v", out, in)
	}

	if _, ok := ChunkPayload(Chunk{Text: "t"})["paragraph_summary"]; ok {
		t.Error("empty summary should be omitted")
	}
}

func TestRegistryPayload(t *testing.T) {
	parent := "folder_1_aaaaaaaa"
	doc := registryDoc{
		Version: 4,
		Nodes: []FolderNode{
			{FolderID: parent, Name: "A", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
			{FolderID: "folder_2_bbbbbbbb", Name: "B", ParentID: &parent, VideoCount: 3},
		},
	}

	meta, err := registryPayload(doc)
	if err != nil {
		t.Fatalf("registryPayload() error = %v", err)
	}
	if meta["type"] != "folder_registry" {
		t.Errorf("type = %v", meta["type"])
	}
	if _, ok := meta["registry_data"].(string); !ok {
		t.Errorf("registry_data should be a JSON string, got %T", meta["registry_data"])
	}

	// Numbers come back from the store as int64 or float64.
	meta["version"] = float64(4)
	got, err := decodeRegistry(meta)
	if err != nil {
		t.Fatalf("decodeRegistry() error = %v", err)
	}
	if got.Version != 4 || len(got.Nodes) != 2 {
		t.Fatalf("decoded = %+v", got)
	}
	if got.Nodes[1].ParentID == nil || *got.Nodes[1].ParentID != parent || got.Nodes[1].VideoCount != 3 {
		t.Errorf("node = %+v", got.Nodes[1])
	}
	if !got.Nodes[0].CreatedAt.Equal(doc.Nodes[0].CreatedAt) {
		t.Errorf("CreatedAt = %v", got.Nodes[0].CreatedAt)
	}

	if _, err := decodeRegistry(map[string]any{"registry_data": "{not json"}); err == nil {
		t.Error("decodeRegistry() expected error for corrupt data")
	}
}

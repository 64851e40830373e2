package rag

// Filters restrict a search. Empty fields are not applied.
type Filters struct {
	Language   string `json:"language,omitempty"`
	SourceType string `json:"source_type,omitempty"`
	VideoID    string `json:"video_id,omitempty"`
}

// SearchParams controls a retrieval.
type SearchParams struct {
	// Limit is the maximum number of hits.
	Limit int
	// ScoreThreshold is the minimum similarity a hit must reach.
	ScoreThreshold float32
	// Filters are combined with AND.
	Filters Filters
}

// Hit is one retrieved transcript fragment.
type Hit struct {
	ChunkID    string  `json:"chunk_id"`
	Score      float32 `json:"score"`
	Text       string  `json:"chunk_text"`
	Summary    string  `json:"summary,omitempty"`
	VideoTitle string  `json:"video_title"`
	VideoPath  string  `json:"video_path,omitempty"`
	VideoID    string  `json:"video_id,omitempty"`
	Language   string  `json:"language"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	SourceType string  `json:"source_type"`
}

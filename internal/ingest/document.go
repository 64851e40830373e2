package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Document is a transcribed video as produced by the transcription pipeline.
type Document struct {
	VideoPath    string    `json:"video_path"`
	VideoTitle   string    `json:"video_title"`
	VideoSummary string    `json:"video_summary"`
	Language     string    `json:"language"`
	SourceType   string    `json:"source_type"`
	Segments     []Segment `json:"segments"`
}

// Segment is one timestamped paragraph of a transcript. Times are milliseconds.
type Segment struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
	Summary   string  `json:"summary"`
}

// Validate checks the document is loadable.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.VideoPath, validation.Required),
		validation.Field(&d.Segments, validation.Required),
	)
}

// Validate checks a segment has text and a sane time range.
func (s Segment) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Text, validation.By(notBlank)),
		validation.Field(&s.StartTime, validation.Min(0.0)),
		validation.Field(&s.EndTime, validation.Min(s.StartTime)),
	)
}

func notBlank(value any) error {
	if s, _ := value.(string); strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
}

// VideoID is the stable identifier derived from a video path.
func VideoID(videoPath string) string {
	sum := md5.Sum([]byte(videoPath))
	return hex.EncodeToString(sum[:])
}

// LoadDocument reads and validates a transcript document from disk.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse transcript %s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("invalid transcript %s: %w", path, err)
	}
	return doc, nil
}

// embeddingText is the text embedded for a segment: the summary, when present,
// leads so that summary-level questions match.
func (s Segment) embeddingText() string {
	if s.Summary == "" {
		return s.Text
	}
	return "段落摘要: " + s.Summary + "\n完整内容: " + s.Text
}

// overviewText is the text embedded for the video's metadata record.
func (d Document) overviewText() string {
	title := d.VideoTitle
	if title == "" {
		title = d.VideoPath
	}
	if d.VideoSummary == "" {
		return "主题: " + title
	}
	return "主题: " + title + "\n总结: " + d.VideoSummary
}

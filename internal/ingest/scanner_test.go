package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestScanDir(t *testing.T) {
	root := t.TempDir()

	files := map[string]string{
		"a.json":                "{}",
		"nested/b.json":         "{}",
		"nested/readme.md":      "# notes",
		".cache/skipped.json":   "{}",
		"nested/deeper/c.json":  "{}",
		"nested/deeper/c.json~": "{}",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}

	got, err := ScanDir(context.Background(), root)
	if err != nil {
		t.Fatalf("ScanDir() error = %v", err)
	}

	for i := range got {
		rel, _ := filepath.Rel(root, got[i])
		got[i] = filepath.ToSlash(rel)
	}
	sort.Strings(got)

	want := []string{"a.json", "nested/b.json", "nested/deeper/c.json"}
	if len(got) != len(want) {
		t.Fatalf("ScanDir() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScanDir()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanDir_Errors(t *testing.T) {
	if _, err := ScanDir(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ScanDir() on a missing root should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ScanDir(ctx, t.TempDir()); err == nil {
		t.Error("ScanDir() with a cancelled context should fail")
	}
}

func TestComputeTokenStats(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   TokenStats
	}{
		{"empty", nil, TokenStats{}},
		{"single", []int{7}, TokenStats{Min: 7, Max: 7, Mean: 7, P95: 7}},
		{"unsorted", []int{30, 10, 20}, TokenStats{Min: 10, Max: 30, Mean: 20, P95: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeTokenStats(tt.counts); got != tt.want {
				t.Errorf("computeTokenStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens(""); got != 1 {
		t.Errorf("estimateTokens(\"\") = %d, want 1", got)
	}
	if got := estimateTokens("一二三"); got != 2 {
		t.Errorf("estimateTokens(3 runes) = %d, want 2", got)
	}
}

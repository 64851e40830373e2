package ingest

import (
	"math"
	"sort"
	"unicode/utf8"
)

// RunesPerToken approximates tokenization for mixed CJK and Latin text.
const RunesPerToken = 1.5

// TokenStats summarizes estimated token counts across a video's chunks.
type TokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

func estimateTokens(text string) int {
	n := int(math.Round(float64(utf8.RuneCountInString(text)) / RunesPerToken))
	if n < 1 {
		return 1
	}
	return n
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) TokenStats {
	if len(tokenCounts) == 0 {
		return TokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range sorted {
		sum += count
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	p95Index = max(0, min(p95Index, len(sorted)-1))

	return TokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}

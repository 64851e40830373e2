package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const blockSeparator = "\n\n---\n\n"

// ComposerOptions holds the fixed texts around the source blocks.
type ComposerOptions struct {
	Header    string
	Footer    string
	NoContext string
	// MaxChars bounds the composed context in characters. 0 means unbounded.
	MaxChars int
}

// Composer renders hits into the context block handed to the LLM.
type Composer struct {
	opts ComposerOptions
}

// NewComposer creates a Composer.
func NewComposer(opts ComposerOptions) *Composer {
	return &Composer{opts: opts}
}

// Compose renders hits as numbered 【来源 i】 blocks. With no hits it returns
// the NoContext sentinel. When MaxChars is set, trailing blocks that do not
// fit are dropped, but the first block is always kept.
func (c *Composer) Compose(hits []Hit, includeSummaries bool) string {
	if len(hits) == 0 {
		return c.opts.NoContext
	}

	blocks := make([]string, 0, len(hits))
	used := 0
	if c.opts.Header != "" {
		used += utf8.RuneCountInString(c.opts.Header) + 2
	}
	if c.opts.Footer != "" {
		used += utf8.RuneCountInString(c.opts.Footer) + 2
	}
	for i, h := range hits {
		block := renderBlock(i+1, h, includeSummaries)
		size := utf8.RuneCountInString(block)
		if i > 0 {
			size += utf8.RuneCountInString(blockSeparator)
		}
		if c.opts.MaxChars > 0 && i > 0 && used+size > c.opts.MaxChars {
			break
		}
		used += size
		blocks = append(blocks, block)
	}

	var sb strings.Builder
	if c.opts.Header != "" {
		sb.WriteString(c.opts.Header)
		sb.WriteString("\n\n")
	}
	sb.WriteString(strings.Join(blocks, blockSeparator))
	if c.opts.Footer != "" {
		sb.WriteString("\n\n")
		sb.WriteString(c.opts.Footer)
	}
	return sb.String()
}

func renderBlock(n int, h Hit, includeSummaries bool) string {
	lines := []string{
		fmt.Sprintf("【来源 %d】", n),
		fmt.Sprintf("视频: %s (%s)", h.VideoTitle, h.Language),
		fmt.Sprintf("时间: %.1fs - %.1fs", h.StartTime, h.EndTime),
	}
	if includeSummaries && h.Summary != "" {
		lines = append(lines, "摘要: "+h.Summary)
	}
	lines = append(lines, "内容: "+h.Text)
	return strings.Join(lines, "\n")
}

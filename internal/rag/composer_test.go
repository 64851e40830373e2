package rag

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func testHits() []Hit {
	return []Hit{
		{VideoTitle: "机器学习入门", Language: "zh", StartTime: 12.34, EndTime: 45.67, Text: "第一段内容", Summary: "第一段摘要"},
		{VideoTitle: "Deep Learning", Language: "en", StartTime: 0, EndTime: 5, Text: "second chunk"},
	}
}

func TestComposer_Compose(t *testing.T) {
	c := NewComposer(ComposerOptions{Header: "HEADER", Footer: "FOOTER", NoContext: "未找到相关的视频内容。"})

	got := c.Compose(testHits(), true)
	want := "HEADER\n\n" +
		"【来源 1】\n视频: 机器学习入门 (zh)\n时间: 12.3s - 45.7s\n摘要: 第一段摘要\n内容: 第一段内容" +
		"\n\n---\n\n" +
		"【来源 2】\n视频: Deep Learning (en)\n时间: 0.0s - 5.0s\n内容: second chunk" +
		"\n\nFOOTER"
	if got != want {
		t.Errorf("Compose() =\n%s\nwant\n%s", got, want)
	}
}

func TestComposer_ComposeWithoutSummaries(t *testing.T) {
	c := NewComposer(ComposerOptions{})
	got := c.Compose(testHits(), false)
	if strings.Contains(got, "摘要") {
		t.Errorf("Compose() included a summary when disabled:\n%s", got)
	}
	if !strings.HasPrefix(got, "【来源 1】") {
		t.Errorf("Compose() without header should start with the first block, got %q", got)
	}
}

func TestComposer_ComposeNoHits(t *testing.T) {
	c := NewComposer(ComposerOptions{Header: "H", Footer: "F", NoContext: "未找到相关的视频内容。"})
	if got := c.Compose(nil, true); got != "未找到相关的视频内容。" {
		t.Errorf("Compose(nil) = %q", got)
	}
}

func TestComposer_MaxChars(t *testing.T) {
	hits := make([]Hit, 10)
	for i := range hits {
		hits[i] = Hit{VideoTitle: "t", Language: "zh", Text: strings.Repeat("字", 50)}
	}

	t.Run("unbounded", func(t *testing.T) {
		c := NewComposer(ComposerOptions{})
		if got := strings.Count(c.Compose(hits, true), "【来源"); got != 10 {
			t.Errorf("blocks = %d, want 10", got)
		}
	})

	t.Run("bounded drops trailing blocks", func(t *testing.T) {
		c := NewComposer(ComposerOptions{Header: "H", Footer: "F", MaxChars: 300})
		got := c.Compose(hits, true)
		if utf8.RuneCountInString(got) > 300 {
			t.Errorf("composed length %d exceeds bound", utf8.RuneCountInString(got))
		}
		n := strings.Count(got, "【来源")
		if n < 1 || n >= 10 {
			t.Errorf("blocks = %d, want between 1 and 9", n)
		}
		if !strings.Contains(got, "【来源 1】") {
			t.Error("first block must be kept")
		}
	})

	t.Run("first block always kept", func(t *testing.T) {
		c := NewComposer(ComposerOptions{MaxChars: 10})
		if got := strings.Count(c.Compose(hits, true), "【来源"); got != 1 {
			t.Errorf("blocks = %d, want 1", got)
		}
	})
}

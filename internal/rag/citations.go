package rag

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var citationPattern = regexp.MustCompile(`【来源\s*(\d+)】`)

var markdown = goldmark.New()

// ExtractCitations reports, for each of n sources, whether the answer cites
// it as 【来源 i】. Markers inside code spans or code blocks do not count.
func ExtractCitations(answer string, n int) []bool {
	cited := make([]bool, n)
	if n == 0 || answer == "" {
		return cited
	}

	source := []byte(answer)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if node.Type() == ast.TypeBlock {
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch nd := node.(type) {
		case *ast.CodeSpan, *ast.CodeBlock, *ast.FencedCodeBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			sb.Write(nd.Segment.Value(source))
			if nd.SoftLineBreak() || nd.HardLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.String:
			sb.Write(nd.Value)
		}
		return ast.WalkContinue, nil
	})

	for _, m := range citationPattern.FindAllStringSubmatch(sb.String(), -1) {
		i, err := strconv.Atoi(m[1])
		if err != nil || i < 1 || i > n {
			continue
		}
		cited[i-1] = true
	}
	return cited
}

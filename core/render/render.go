package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	inlineEquation = regexp.MustCompile(`(?s)\\\((.*?)\\\)`)
	blockEquation  = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)
)

// ToHTML converts card field markdown to HTML. LaTeX segments written as
// \(...\) or \[...\] are lifted out before conversion and reinserted after,
// so the markdown engine never rewrites their contents.
func ToHTML(text string) (string, error) {
	stripped, inline, block := extractEquations(text)

	var buf bytes.Buffer
	if err := newEngine().Convert([]byte(stripped), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return reinsertEquations(buf.String(), inline, block), nil
}

func newEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
	)
}

// extractEquations replaces every LaTeX segment with an indexed placeholder
// and returns the placeholder-to-equation mappings.
func extractEquations(text string) (string, map[string]string, map[string]string) {
	inline := make(map[string]string)
	block := make(map[string]string)

	text = inlineEquation.ReplaceAllStringFunc(text, func(m string) string {
		placeholder := fmt.Sprintf("%%%%INLINE-EQ-%d%%%%", len(inline)+1)
		inline[placeholder] = m[2 : len(m)-2]
		return placeholder
	})
	text = blockEquation.ReplaceAllStringFunc(text, func(m string) string {
		placeholder := fmt.Sprintf("%%%%BLOCK-EQ-%d%%%%", len(block)+1)
		block[placeholder] = m[2 : len(m)-2]
		return placeholder
	})

	return text, inline, block
}

func reinsertEquations(html string, inline, block map[string]string) string {
	for placeholder, eq := range inline {
		html = strings.ReplaceAll(html, placeholder, `\(`+escapeEquation(eq)+`\)`)
	}
	for placeholder, eq := range block {
		html = strings.ReplaceAll(html, placeholder, `\[`+escapeEquation(eq)+`\]`)
	}
	return html
}

// escapeEquation splits runs of double braces, which Anki would otherwise
// interpret as template syntax.
func escapeEquation(eq string) string {
	for strings.Contains(eq, "{{") {
		eq = strings.ReplaceAll(eq, "{{", "{ {")
	}
	for strings.Contains(eq, "}}") {
		eq = strings.ReplaceAll(eq, "}}", "} }")
	}
	return eq
}

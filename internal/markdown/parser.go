// Package markdown renders tree diagrams as Markdown documentation snippets with Goldmark.
package markdown

import (
	"bytes"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Snippet is a tree diagram ready to paste into documentation
type Snippet struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Title    string `json:"title"`
}

// Parser handles markdown rendering with goldmark
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a new markdown parser with extensions
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	return &Parser{md: md}
}

// fence returns a code fence longer than any backtick run in body.
func fence(body string) string {
	longest, run := 0, 0
	for _, r := range body {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

// Snippet wraps a tree diagram in a fenced "text" block, under a heading when title is
// set, and renders it to HTML.
func (p *Parser) Snippet(title, diagram string) (*Snippet, error) {
	var src strings.Builder
	if title != "" {
		src.WriteString("## ")
		src.WriteString(title)
		src.WriteString("\n\n")
	}
	f := fence(diagram)
	src.WriteString(f)
	src.WriteString("text\n")
	src.WriteString(diagram)
	if diagram != "" && !strings.HasSuffix(diagram, "\n") {
		src.WriteString("\n")
	}
	src.WriteString(f)
	src.WriteString("\n")

	source := []byte(src.String())
	var buf bytes.Buffer
	if err := p.md.Convert(source, &buf); err != nil {
		return nil, err
	}

	return &Snippet{
		Markdown: src.String(),
		HTML:     buf.String(),
		Title:    p.title(source),
	}, nil
}

// title returns the text of the first heading, if any
func (p *Parser) title(source []byte) string {
	reader := text.NewReader(source)
	doc := p.md.Parser().Parse(reader)

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title = extractText(heading, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// extractText extracts text content from a node
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if text, ok := child.(*ast.Text); ok {
			buf.Write(text.Segment.Value(source))
		}
	}
	return buf.String()
}

package validation

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	nethtml "golang.org/x/net/html"
)

// PlainTextExtractor reduces rich text to the characters a reader would see.
type PlainTextExtractor struct {
	markdown goldmark.Markdown
}

// NewPlainTextExtractor creates an extractor backed by a goldmark parser.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{markdown: goldmark.New()}
}

// Extract returns the visible text of s with surrounding whitespace trimmed.
// Markdown structure is walked through the goldmark AST; embedded HTML is
// tokenized and only its text tokens are kept.
func (p *PlainTextExtractor) Extract(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	source := []byte(s)
	doc := p.markdown.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					buf.Write(t.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			var raw bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				raw.Write(seg.Value(source))
			}
			buf.WriteString(stripHTML(raw.String()))
		case *ast.HTMLBlock:
			var raw bytes.Buffer
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				raw.Write(seg.Value(source))
			}
			if node.HasClosure() {
				raw.Write(node.ClosureLine.Value(source))
			}
			buf.WriteString(stripHTML(raw.String()))
			buf.WriteByte(' ')
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(html.UnescapeString(buf.String()))
}

// stripHTML keeps the text tokens of an HTML fragment.
func stripHTML(fragment string) string {
	var out strings.Builder
	z := nethtml.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return out.String()
		case nethtml.TextToken:
			out.Write(z.Text())
		}
	}
}

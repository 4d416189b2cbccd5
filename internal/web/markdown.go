package web

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Both engines parse the same subset of CommonMark: ATX headings, lists,
// fenced code, paragraphs, code spans, links and emphasis. Setext headings,
// indented code, blockquotes, rules and raw HTML are not parsed, so that text
// reaches the renderer as a paragraph and any markup in it is escaped. The chat engine renders headings one level deeper so that a reply
// never outranks the surrounding page.
var (
	summaryEngine = newMarkdownEngine(0)
	chatEngine    = newMarkdownEngine(1)
)

func newMarkdownEngine(headingOffset int) goldmark.Markdown {
	opts := []parser.Option{
		parser.WithBlockParsers(
			util.Prioritized(parser.NewListParser(), 300),
			util.Prioritized(parser.NewListItemParser(), 400),
			util.Prioritized(parser.NewATXHeadingParser(), 600),
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewLinkParser(), 200),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	}
	if headingOffset > 0 {
		opts = append(opts, parser.WithASTTransformers(
			util.Prioritized(headingShift(headingOffset), 100),
		))
	}

	return goldmark.New(
		goldmark.WithParser(parser.NewParser(opts...)),
		goldmark.WithRendererOptions(
			htmlrenderer.WithHardWraps(),
		),
	)
}

// headingShift pushes every heading down by its value, capped at h6.
type headingShift int

func (s headingShift) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			h.Level = min(h.Level+int(s), 6)
		}
		return ast.WalkContinue, nil
	})
}

// RenderSummary converts a generated summary to HTML. "## Title" becomes an
// h2 and consecutive "- item" lines share one list.
func RenderSummary(markdown string) template.HTML {
	return renderMarkdown(summaryEngine, markdown)
}

// RenderChatMarkdown converts an assistant reply to HTML, with headings
// rendered one level deeper than in summaries.
func RenderChatMarkdown(markdown string) template.HTML {
	return renderMarkdown(chatEngine, markdown)
}

func renderMarkdown(engine goldmark.Markdown, markdown string) template.HTML {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := engine.Convert([]byte(markdown), &buf); err != nil {
		// Conversion only fails on writer errors; fall back to escaped text.
		return template.HTML("<p>" + template.HTMLEscapeString(markdown) + "</p>")
	}
	return template.HTML(strings.TrimSpace(buf.String()))
}

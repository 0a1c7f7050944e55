package rag

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// Document is one fetched and cleaned page, ready for chunking.
type Document struct {
	Content  string            // extracted plain text
	Source   string            // URL the content came from
	Metadata map[string]string // content type and related detail
}

// Parser converts a raw fetched body into a Document.
type Parser interface {
	Parse(source string, body []byte) (Document, error)
}

// ParserManager routes bodies to a parser by detected content kind
// ("html" or "pdf"). Additional parsers can be registered per kind.
type ParserManager struct {
	parsers map[string]Parser
	logger  Logger
}

// NewParserManager returns a manager with the default HTML and PDF parsers
// installed.
func NewParserManager(logger Logger) *ParserManager {
	if logger == nil {
		logger = GlobalLogger
	}
	pm := &ParserManager{
		parsers: make(map[string]Parser),
		logger:  logger,
	}
	pm.parsers["html"] = NewHTMLParser()
	pm.parsers["pdf"] = NewPDFParser()
	return pm
}

// AddParser registers a parser for a content kind, replacing any default.
func (pm *ParserManager) AddParser(kind string, parser Parser) {
	pm.parsers[kind] = parser
}

// Parse dispatches to the parser registered for kind.
func (pm *ParserManager) Parse(kind, source string, body []byte) (Document, error) {
	parser, ok := pm.parsers[kind]
	if !ok {
		pm.logger.Warn("no parser available for content kind", "kind", kind, "source", source)
		return Document{}, fmt.Errorf("no parser available for content kind: %s", kind)
	}
	doc, err := parser.Parse(source, body)
	if err != nil {
		pm.logger.Error("failed to parse document", "source", source, "error", err)
		return Document{}, err
	}
	pm.logger.Debug("parsed document", "source", source, "kind", kind, "chars", len(doc.Content))
	return doc, nil
}

// HTMLParser extracts readable text from an HTML body. Script, style and
// other non-content subtrees are dropped; block elements become newlines.
type HTMLParser struct{}

// NewHTMLParser creates an HTMLParser instance.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

var skippedHTMLElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"head":     true,
	"nav":      true,
	"footer":   true,
}

var blockHTMLElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "blockquote": true, "pre": true,
	"table": true, "ul": true, "ol": true,
}

// Parse implements Parser for HTML bodies.
func (p *HTMLParser) Parse(source string, body []byte) (Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedHTMLElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				builder.WriteString(text)
				builder.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockHTMLElements[n.Data] {
			builder.WriteString("\n")
		}
	}
	walk(root)

	return Document{
		Content: collapseBlankLines(builder.String()),
		Source:  source,
		Metadata: map[string]string{
			"content_type": "html",
		},
	}, nil
}

// collapseBlankLines trims trailing space per line and squeezes runs of
// empty lines down to one.
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// PDFParser extracts plain text from PDF bodies page by page.
type PDFParser struct{}

// NewPDFParser creates a PDFParser instance.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Parse implements Parser for PDF bodies.
func (p *PDFParser) Parse(source string, body []byte) (Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return Document{}, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return Document{}, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		builder.WriteString(content)
		builder.WriteString("\n\n")
	}

	return Document{
		Content: builder.String(),
		Source:  source,
		Metadata: map[string]string{
			"content_type": "pdf",
		},
	}, nil
}

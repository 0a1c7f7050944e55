package rag

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SearchHit is a single organic result returned by a search backend.
type SearchHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchResponse carries the organic results for one query.
type SearchResponse struct {
	Hits []SearchHit
}

// Links returns the result URLs in rank order.
func (r *SearchResponse) Links() []string {
	links := make([]string, 0, len(r.Hits))
	for _, hit := range r.Hits {
		links = append(links, hit.Link)
	}
	return links
}

// Searcher is the contract for web search backends. Implementations issue
// one request per query and normalize the provider response into hits.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (*SearchResponse, error)
}

// SearcherConfig selects and configures a search backend.
type SearcherConfig struct {
	Type    string        // "serpapi", "serper" or "openserp"
	APIKey  string        // credential for hosted backends
	Engine  string        // underlying engine, "google" or "bing"
	BaseURL string        // override endpoint, used by openserp and tests
	Timeout time.Duration // per-request timeout
	Logger  Logger        // defaults to the global logger
}

// NewSearcher builds a search backend by name, mirroring the vector store
// factory. Unknown names are an error.
func NewSearcher(cfg SearcherConfig) (Searcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = GlobalLogger
	}
	switch cfg.Type {
	case "serpapi":
		return newSerpAPISearcher(cfg)
	case "serper":
		return newSerperSearcher(cfg)
	case "openserp":
		return newOpenSERPSearcher(cfg)
	default:
		return nil, fmt.Errorf("unsupported search backend: %s", cfg.Type)
	}
}

// noAnswerContext is used when a search produced no usable results, so the
// analysis prompt still has a well-defined context block.
const noAnswerContext = "Answer not found"

// SnippetContext renders hits as numbered reference blocks for the
// SERP-analysis prompt. Each block reads "[reference:n] title: snippet".
// An empty hit list yields the no-answer sentinel.
func SnippetContext(hits []SearchHit) string {
	if len(hits) == 0 {
		return noAnswerContext
	}
	blocks := make([]string, 0, len(hits))
	for i, hit := range hits {
		blocks = append(blocks, fmt.Sprintf("[reference:%d] %s: %s", i+1, hit.Title, hit.Snippet))
	}
	return strings.Join(blocks, "\n\n")
}

func newSearchHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

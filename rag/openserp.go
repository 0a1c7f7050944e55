package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const defaultOpenSERPURL = "http://localhost:7000"

// OpenSERPSearcher queries a self-hosted OpenSERP instance. Unlike the
// hosted backends it needs no API key, only a reachable base URL.
type OpenSERPSearcher struct {
	engine  string
	baseURL string
	client  *http.Client
	logger  Logger
}

func newOpenSERPSearcher(cfg SearcherConfig) (*OpenSERPSearcher, error) {
	engine := cfg.Engine
	if engine == "" {
		engine = "google"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenSERPURL
	}
	return &OpenSERPSearcher{
		engine:  engine,
		baseURL: baseURL,
		client:  newSearchHTTPClient(cfg.Timeout),
		logger:  cfg.Logger,
	}, nil
}

type openSERPResult struct {
	Rank        int    `json:"rank"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Search issues one OpenSERP request against the configured engine route.
func (s *OpenSERPSearcher) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("lang", "EN")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("text", query)

	endpoint := fmt.Sprintf("%s/%s/search?%s", s.baseURL, s.engine, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openserp request failed with status code %d: %s", resp.StatusCode, resp.Status)
	}

	var parsed []openSERPResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	out := &SearchResponse{}
	for _, r := range parsed {
		out.Hits = append(out.Hits, SearchHit{Title: r.Title, Link: r.URL, Snippet: r.Description})
	}
	s.logger.Debug("openserp search complete", "query", query, "hits", len(out.Hits))
	return out, nil
}

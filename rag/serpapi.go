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

const defaultSerpAPIURL = "https://serpapi.com/search.json"

// SerpAPISearcher queries the hosted SerpAPI service. It supports the
// google and bing engines; anything else is rejected at construction.
type SerpAPISearcher struct {
	apiKey  string
	engine  string
	baseURL string
	client  *http.Client
	logger  Logger
}

func newSerpAPISearcher(cfg SearcherConfig) (*SerpAPISearcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for serpapi searcher")
	}
	engine := cfg.Engine
	if engine == "" {
		engine = "google"
	}
	if engine != "google" && engine != "bing" {
		return nil, fmt.Errorf("engine must be either google or bing, got %q", engine)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSerpAPIURL
	}
	return &SerpAPISearcher{
		apiKey:  cfg.APIKey,
		engine:  engine,
		baseURL: baseURL,
		client:  newSearchHTTPClient(cfg.Timeout),
		logger:  cfg.Logger,
	}, nil
}

type serpAPIResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// Search issues one SerpAPI request and normalizes the organic results.
func (s *SerpAPISearcher) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	params.Set("engine", s.engine)
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
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
		return nil, fmt.Errorf("serpapi request failed with status code %d: %s", resp.StatusCode, resp.Status)
	}

	var parsed serpAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", parsed.Error)
	}

	out := &SearchResponse{}
	for _, r := range parsed.OrganicResults {
		out.Hits = append(out.Hits, SearchHit{Title: r.Title, Link: r.Link, Snippet: r.Snippet})
	}
	s.logger.Debug("serpapi search complete", "query", query, "hits", len(out.Hits))
	return out, nil
}

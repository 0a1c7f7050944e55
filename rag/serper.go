package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultSerperURL = "https://google.serper.dev/search"

// SerperSearcher queries the Serper.dev Google search API.
type SerperSearcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  Logger
}

func newSerperSearcher(cfg SearcherConfig) (*SerperSearcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for serper searcher")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSerperURL
	}
	return &SerperSearcher{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  newSearchHTTPClient(cfg.Timeout),
		logger:  cfg.Logger,
	}, nil
}

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search issues one Serper request and normalizes the organic results.
func (s *SerperSearcher) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	reqBody, err := json.Marshal(serperRequest{Query: query, Num: limit})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

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
		return nil, fmt.Errorf("serper request failed with status code %d: %s", resp.StatusCode, resp.Status)
	}

	var parsed serperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	out := &SearchResponse{}
	for _, r := range parsed.Organic {
		out.Hits = append(out.Hits, SearchHit{Title: r.Title, Link: r.Link, Snippet: r.Snippet})
	}
	s.logger.Debug("serper search complete", "query", query, "hits", len(out.Hits))
	return out, nil
}

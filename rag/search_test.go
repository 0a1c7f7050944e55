package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearcher(t *testing.T) {
	_, err := NewSearcher(SearcherConfig{Type: "serpapi", APIKey: "k"})
	require.NoError(t, err)

	_, err = NewSearcher(SearcherConfig{Type: "serpapi"})
	assert.Error(t, err, "serpapi requires an API key")

	_, err = NewSearcher(SearcherConfig{Type: "serpapi", APIKey: "k", Engine: "duckduckgo"})
	assert.Error(t, err, "only google and bing engines are supported")

	_, err = NewSearcher(SearcherConfig{Type: "altavista"})
	assert.Error(t, err)
}

func TestSerpAPISearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "laptop overheating", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("num"))
		assert.Equal(t, "google", r.URL.Query().Get("engine"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"organic_results": []map[string]string{
				{"title": "Fixing overheating", "link": "https://support.hp.com/fix", "snippet": "Clean the fans."},
				{"title": "Thermal paste guide", "link": "https://tomshardware.com/paste", "snippet": "Reapply paste."},
			},
		})
	}))
	defer srv.Close()

	s, err := NewSearcher(SearcherConfig{Type: "serpapi", APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := s.Search(context.Background(), "laptop overheating", 2)
	require.NoError(t, err)
	require.Len(t, resp.Hits, 2)
	assert.Equal(t, "Fixing overheating", resp.Hits[0].Title)
	assert.Equal(t, []string{"https://support.hp.com/fix", "https://tomshardware.com/paste"}, resp.Links())
}

func TestSerpAPISearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid API key"})
	}))
	defer srv.Close()

	s, err := NewSearcher(SearcherConfig{Type: "serpapi", APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = s.Search(context.Background(), "anything", 1)
	assert.ErrorContains(t, err, "Invalid API key")
}

func TestSerperSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "blue screen 0x7B", body["q"])
		json.NewEncoder(w).Encode(map[string]interface{}{
			"organic": []map[string]string{
				{"title": "Stop code 0x7B", "link": "https://support.microsoft.com/0x7b", "snippet": "Boot device inaccessible."},
			},
		})
	}))
	defer srv.Close()

	s, err := NewSearcher(SearcherConfig{Type: "serper", APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := s.Search(context.Background(), "blue screen 0x7B", 5)
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "https://support.microsoft.com/0x7b", resp.Hits[0].Link)
}

func TestOpenSERPSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/google/search", r.URL.Path)
		assert.Equal(t, "EN", r.URL.Query().Get("lang"))
		assert.Equal(t, "wifi keeps dropping", r.URL.Query().Get("text"))
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"rank": 1, "url": "https://askubuntu.com/wifi", "title": "WiFi drops", "description": "Disable power save."},
		})
	}))
	defer srv.Close()

	s, err := NewSearcher(SearcherConfig{Type: "openserp", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := s.Search(context.Background(), "wifi keeps dropping", 3)
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "Disable power save.", resp.Hits[0].Snippet)
}

func TestSnippetContext(t *testing.T) {
	hits := []SearchHit{
		{Title: "A", Link: "https://a", Snippet: "first"},
		{Title: "B", Link: "https://b", Snippet: "second"},
	}
	got := SnippetContext(hits)
	assert.Equal(t, "[reference:1] A: first\n\n[reference:2] B: second", got)

	assert.Equal(t, "Answer not found", SnippetContext(nil))
}

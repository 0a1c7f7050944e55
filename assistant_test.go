package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhanyavarthini/Techie-S-Assistant/rag"
	"github.com/Dhanyavarthini/Techie-S-Assistant/rag/providers"
)

// fakeEmbedder returns a constant vector so every chunk retrieves with
// similarity 1.
type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return []float64{1, 0, 0}, nil
}

func (f *fakeEmbedder) GetDimension() (int, error) { return 3, nil }

// scriptedLLM replies based on which prompt it receives.
type scriptedLLM struct {
	mu      sync.Mutex
	prompts []string
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return "Use compressed air on the vents [reference:1].", nil
}

var testLLM = &scriptedLLM{}

var registerFakes sync.Once

func registerFakeProviders() {
	registerFakes.Do(func() {
		providers.RegisterEmbedder("fake", func(config map[string]interface{}) (providers.Embedder, error) {
			return &fakeEmbedder{}, nil
		})
		providers.RegisterLLM("fake", func(config map[string]interface{}) (providers.LLM, error) {
			return testLLM, nil
		})
	})
}

// newTestAssistant wires the full pipeline against httptest backends:
// a canned search API and a content server standing in for the support
// site.
func newTestAssistant(t *testing.T) (*SearchAssistant, *httptest.Server) {
	t.Helper()
	registerFakeProviders()

	content := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>Overheating is usually dust. Use compressed air on the vents.</p></body></html>`))
	}))
	t.Cleanup(content.Close)

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"organic_results": []map[string]string{
				{"title": "Laptop overheating fix", "link": content.URL + "/fix", "snippet": "Dust buildup blocks airflow."},
			},
		})
	}))
	t.Cleanup(search.Close)

	a, err := New(context.Background(), WithConfig(Config{
		SearchMethod:      "serpapi",
		SearchEngine:      "google",
		SearchAPIKey:      "test-key",
		SearchBaseURL:     search.URL,
		OfficialSites:     nil, // keep test queries unrestricted
		LLM:               LLMConfig{Provider: "fake"},
		EmbeddingProvider: "fake",
		DBType:            "memory",
		Collection:        "test_docs",
		TopK:              2,
		MinScore:          0.5,
		Hybrid:            true,
	}))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, content
}

func TestAnswerFromSnippets(t *testing.T) {
	a, content := newTestAssistant(t)

	answer, err := a.AnswerFromSnippets(context.Background(), "laptop overheating", "")
	require.NoError(t, err)

	assert.Contains(t, answer.Answer, "[<sup>1</sup>]("+content.URL+"/fix)")
	assert.Equal(t, []string{content.URL + "/fix"}, answer.Sources)
}

func TestSearchIndexAndAsk(t *testing.T) {
	a, content := newTestAssistant(t)

	sources, err := a.SearchAndIndex(context.Background(), "laptop overheating")
	require.NoError(t, err)
	require.Equal(t, []string{content.URL + "/fix"}, sources)
	assert.Equal(t, sources, a.Sources())

	answer, err := a.Ask(context.Background(), "how do I fix it")
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, "compressed air")
	assert.Contains(t, answer.Answer, "<sup>1</sup>")
	assert.Equal(t, []string{content.URL + "/fix"}, answer.Sources)
}

func TestAskWithoutIndexFails(t *testing.T) {
	a, _ := newTestAssistant(t)

	_, err := a.Ask(context.Background(), "anything")
	assert.ErrorContains(t, err, "no sources indexed")
}

func TestRelatedQueriesParsing(t *testing.T) {
	registerFakeProviders()

	queries, err := parseRelatedQueries(`{"related_queries": ["a", "b", "c", "d"]}`)
	require.NoError(t, err)
	assert.Len(t, queries, 4)
}

func TestComponentLoggerFallbacks(t *testing.T) {
	levels := map[string]rag.LogLevel{"crawler": rag.LogLevelDebug, "default": rag.LogLevelWarn}

	// Configured components get a named instance at their own level,
	// unlisted ones at the default level; without any configuration
	// the shared global logger is used.
	assert.NotSame(t, rag.GlobalLogger, componentLogger(levels, "crawler"))
	assert.NotSame(t, rag.GlobalLogger, componentLogger(levels, "search"))
	assert.Same(t, rag.GlobalLogger, componentLogger(nil, "search"))
}

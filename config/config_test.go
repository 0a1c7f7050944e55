package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhanyavarthini/Techie-S-Assistant/rag"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sambanova", cfg.LLM.Provider)
	assert.Equal(t, "serpapi", cfg.Search.Method)
	assert.Equal(t, ":8501", cfg.Server.Addr)
	assert.Equal(t, "chromem", cfg.Retrieval.DBType)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  method: serper
  engine: google
  max_results: 8
retrieval:
  db_type: memory
  chunk_size: 500
  chunk_overlap: 100
web_crawling:
  excluded_links:
    - facebook.com
    - https://twitter.com/home
server:
  addr: ":9000"
  read_timeout: 10s
logging:
  default: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "serper", cfg.Search.Method)
	assert.Equal(t, 8, cfg.Search.MaxResults)
	assert.Equal(t, "memory", cfg.Retrieval.DBType)
	assert.Equal(t, []string{"facebook.com", "https://twitter.com/home"}, cfg.WebCrawling.ExcludedLinks)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, rag.LogLevelDebug, cfg.LogLevel("default"))
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "serpapi", cfg.Search.Method)
}

func TestEnvOverridesFileAndKeys(t *testing.T) {
	t.Setenv("SERPAPI_KEY", "serp-secret")
	t.Setenv("SAMBANOVA_API_KEY", "samba-secret")
	t.Setenv("SEARCH_METHOD", "openserp")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "serp-secret", cfg.SerpAPIKey)
	assert.Equal(t, "samba-secret", cfg.SambaNovaKey)
	assert.Equal(t, "openserp", cfg.Search.Method)
	assert.Equal(t, "samba-secret", cfg.LLMAPIKey())
}

func TestSearchAPIKeySelection(t *testing.T) {
	cfg := Default()
	cfg.SerpAPIKey = "serp"
	cfg.SerperKey = "serper"

	cfg.Search.Method = "serpapi"
	assert.Equal(t, "serp", cfg.SearchAPIKey())

	cfg.Search.Method = "serper"
	assert.Equal(t, "serper", cfg.SearchAPIKey())

	cfg.Search.Method = "openserp"
	assert.Equal(t, "", cfg.SearchAPIKey())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Search.Method = "yahoo"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Logging["server"] = "chatty"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")

	cfg = Default()
	cfg.Retrieval.ChunkOverlap = cfg.Retrieval.ChunkSize
	assert.Error(t, cfg.Validate())
}

func TestLogLevelFallbacks(t *testing.T) {
	cfg := Default()
	cfg.Logging = map[string]string{"default": "warn", "rag": "debug"}

	assert.Equal(t, rag.LogLevelDebug, cfg.LogLevel("rag"))
	assert.Equal(t, rag.LogLevelWarn, cfg.LogLevel("server"))
}

func TestLogLevelsParsesEveryEntry(t *testing.T) {
	cfg := Default()
	cfg.Logging = map[string]string{"default": "info", "crawler": "debug", "server": "error"}

	levels := cfg.LogLevels()
	assert.Equal(t, map[string]rag.LogLevel{
		"default": rag.LogLevelInfo,
		"crawler": rag.LogLevelDebug,
		"server":  rag.LogLevelError,
	}, levels)
}

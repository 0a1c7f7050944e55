// Package config loads the assistant's configuration from defaults, a
// YAML file and environment variables, in that order of precedence
// (environment wins). API keys are only ever read from the
// environment so they stay out of the config file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Dhanyavarthini/Techie-S-Assistant/rag"
)

// Config holds every setting the assistant and its server use.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	WebCrawling WebCrawlingConfig `yaml:"web_crawling"`
	Search      SearchConfig      `yaml:"search"`
	Server      ServerConfig      `yaml:"server"`
	// Logging maps component names to log levels, e.g.
	// {"server": "info", "rag": "debug"}. The "default" entry sets
	// the global level.
	Logging map[string]string `yaml:"logging"`

	// Keys come from the environment only.
	SerpAPIKey   string `yaml:"-" env:"SERPAPI_KEY"`
	SambaNovaKey string `yaml:"-" env:"SAMBANOVA_API_KEY"`
	OpenAIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
	SerperKey    string `yaml:"-" env:"SERPER_API_KEY"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider" env:"LLM_PROVIDER"`
	Model       string        `yaml:"model" env:"LLM_MODEL"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type EmbeddingConfig struct {
	Provider string `yaml:"provider" env:"EMBEDDING_PROVIDER"`
	Model    string `yaml:"model" env:"EMBEDDING_MODEL"`
}

type RetrievalConfig struct {
	DBType         string  `yaml:"db_type" env:"DB_TYPE"`
	DBAddress      string  `yaml:"db_address" env:"DB_ADDRESS"`
	Collection     string  `yaml:"collection"`
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	TopK           int     `yaml:"k_retrieved_documents"`
	ScoreThreshold float64 `yaml:"score_threshold"`
	Hybrid         bool    `yaml:"hybrid"`
}

type WebCrawlingConfig struct {
	MaxScrapedWebsites int           `yaml:"max_scraped_websites"`
	MaxConcurrency     int           `yaml:"max_concurrency"`
	RequestsPerSecond  float64       `yaml:"requests_per_second"`
	Timeout            time.Duration `yaml:"timeout"`
	ExcludedLinks      []string      `yaml:"excluded_links"`
	FetchPDF           bool          `yaml:"fetch_pdf"`
}

type SearchConfig struct {
	Method     string `yaml:"method" env:"SEARCH_METHOD"`
	Engine     string `yaml:"engine" env:"SEARCH_ENGINE"`
	BaseURL    string `yaml:"base_url" env:"OPENSERP_URL"`
	MaxResults int    `yaml:"max_results"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"SERVER_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	UsageStats   bool          `yaml:"usage_stats"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "sambanova",
			Model:       "Meta-Llama-3.1-70B-Instruct",
			MaxTokens:   1024,
			Temperature: 0.0,
			Timeout:     90 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider: "sambanova",
			Model:    "E5-Mistral-7B-Instruct",
		},
		Retrieval: RetrievalConfig{
			DBType:         "chromem",
			DBAddress:      "data/chromem",
			Collection:     "techie_docs",
			ChunkSize:      1000,
			ChunkOverlap:   200,
			TopK:           3,
			ScoreThreshold: 0.3,
			Hybrid:         true,
		},
		WebCrawling: WebCrawlingConfig{
			MaxScrapedWebsites: 20,
			MaxConcurrency:     4,
			RequestsPerSecond:  4,
			Timeout:            30 * time.Second,
			FetchPDF:           true,
		},
		Search: SearchConfig{
			Method:     "serpapi",
			Engine:     "google",
			MaxResults: 5,
		},
		Server: ServerConfig{
			Addr:         ":8501",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			UsageStats:   true,
		},
		Logging: map[string]string{
			"default": "info",
		},
	}
}

// Load reads the config file at path (skipped when path is empty or
// the file does not exist), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside a
// request.
func (c *Config) Validate() error {
	switch c.Search.Method {
	case "serpapi", "serper", "openserp":
	default:
		return fmt.Errorf("unknown search method: %s", c.Search.Method)
	}
	switch c.LLM.Provider {
	case "sambanova", "openai":
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}
	if c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Retrieval.ChunkOverlap, c.Retrieval.ChunkSize)
	}
	for component, level := range c.Logging {
		if _, err := rag.ParseLogLevel(level); err != nil {
			return fmt.Errorf("invalid log level for %s: %w", component, err)
		}
	}
	return nil
}

// SearchAPIKey returns the key for the configured search method.
func (c *Config) SearchAPIKey() string {
	switch c.Search.Method {
	case "serper":
		return c.SerperKey
	case "openserp":
		return "" // self-hosted, no key
	default:
		return c.SerpAPIKey
	}
}

// LLMAPIKey returns the key for the configured LLM provider.
func (c *Config) LLMAPIKey() string {
	if c.LLM.Provider == "openai" {
		return c.OpenAIKey
	}
	return c.SambaNovaKey
}

// LogLevels returns every configured logging entry parsed into levels.
// Entries that fail to parse are skipped; Validate rejects them before
// this is reached on a loaded config.
func (c *Config) LogLevels() map[string]rag.LogLevel {
	levels := make(map[string]rag.LogLevel, len(c.Logging))
	for component, level := range c.Logging {
		parsed, err := rag.ParseLogLevel(level)
		if err != nil {
			continue
		}
		levels[component] = parsed
	}
	return levels
}

// LogLevel returns the configured level for a component, falling back
// to the "default" entry and then to info.
func (c *Config) LogLevel(component string) rag.LogLevel {
	if level, ok := c.Logging[component]; ok {
		parsed, err := rag.ParseLogLevel(level)
		if err == nil {
			return parsed
		}
	}
	if level, ok := c.Logging["default"]; ok {
		parsed, err := rag.ParseLogLevel(level)
		if err == nil {
			return parsed
		}
	}
	return rag.LogLevelInfo
}

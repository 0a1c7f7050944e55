package rag

import (
	"context"
	"fmt"

	"github.com/Dhanyavarthini/Techie-S-Assistant/rag/providers"
)

// EmbedderConfig holds the configuration for creating an Embedder.
type EmbedderConfig struct {
	Provider string
	Options  map[string]interface{}
}

// EmbedderOption configures an EmbedderConfig.
type EmbedderOption func(*EmbedderConfig)

// SetProvider selects the embedding provider by name.
func SetProvider(provider string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Provider = provider
	}
}

// SetModel selects the embedding model.
func SetModel(model string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options["model"] = model
	}
}

// SetAPIKey sets the provider credential.
func SetAPIKey(apiKey string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options["api_key"] = apiKey
	}
}

// SetOption sets a provider-specific option.
func SetOption(key string, value interface{}) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options[key] = value
	}
}

// NewEmbedder creates an Embedder through the provider registry.
func NewEmbedder(opts ...EmbedderOption) (providers.Embedder, error) {
	config := &EmbedderConfig{
		Options: make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.Provider == "" {
		return nil, fmt.Errorf("provider must be specified")
	}
	factory, err := providers.GetEmbedderFactory(config.Provider)
	if err != nil {
		return nil, err
	}
	return factory(config.Options)
}

// EmbeddedChunk is a chunk together with its embedding and metadata.
type EmbeddedChunk struct {
	Text      string                 `json:"text"`
	Embedding []float64              `json:"embedding"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// EmbeddingService embeds chunks through one configured embedder.
type EmbeddingService struct {
	embedder providers.Embedder
	logger   Logger
}

// NewEmbeddingService creates an embedding service around an embedder.
func NewEmbeddingService(embedder providers.Embedder, logger Logger) *EmbeddingService {
	if logger == nil {
		logger = GlobalLogger
	}
	return &EmbeddingService{embedder: embedder, logger: logger}
}

// EmbedChunks embeds a slice of chunks, carrying source and position into
// the chunk metadata so retrieval can cite the right page.
func (s *EmbeddingService) EmbedChunks(ctx context.Context, chunks []Chunk) ([]EmbeddedChunk, error) {
	embedded := make([]EmbeddedChunk, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("error embedding chunk %d: %w", i+1, err)
		}
		embedded = append(embedded, EmbeddedChunk{
			Text:      chunk.Text,
			Embedding: embedding,
			Metadata: map[string]interface{}{
				"source":     chunk.Source,
				"token_size": chunk.TokenSize,
				"chunk":      i,
			},
		})
		s.logger.Debug("embedded chunk", "index", i+1, "of", len(chunks), "dimension", len(embedding))
	}
	return embedded, nil
}

// Embed embeds one query string.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float64, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("error embedding text: %w", err)
	}
	return embedding, nil
}

// EmbeddingFunc adapts the service to the func signature persistent store
// backends expect for on-demand embedding.
func (s *EmbeddingService) EmbeddingFunc() func(ctx context.Context, text string) ([]float32, error) {
	return func(ctx context.Context, text string) ([]float32, error) {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		return toFloat32Slice(embedding), nil
	}
}

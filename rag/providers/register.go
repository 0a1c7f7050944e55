// Package providers implements the hosted model clients the pipeline
// depends on: embedding providers and chat-completion providers. Both are
// managed through name-keyed factory registries so backends can be chosen
// from configuration and swapped in tests.
package providers

import (
	"context"
	"fmt"
	"sync"
)

// Embedder converts text into a vector representation.
type Embedder interface {
	// Embed generates the embedding for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// GetDimension returns the output dimension of the current model.
	GetDimension() (int, error)
}

// LLM generates a completion for a prompt. The pipeline needs nothing more
// than single-shot generation; streaming and tool use stay out of scope.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderFactory builds an Embedder from provider-specific options.
type EmbedderFactory func(config map[string]interface{}) (Embedder, error)

// LLMFactory builds an LLM from provider-specific options.
type LLMFactory func(config map[string]interface{}) (LLM, error)

var (
	mu                sync.RWMutex
	embedderFactories = make(map[string]EmbedderFactory)
	llmFactories      = make(map[string]LLMFactory)
)

// RegisterEmbedder registers an embedder factory under a provider name.
// Registering an existing name replaces the previous factory.
func RegisterEmbedder(name string, factory EmbedderFactory) {
	mu.Lock()
	defer mu.Unlock()
	embedderFactories[name] = factory
}

// GetEmbedderFactory returns the factory for the given provider name.
func GetEmbedderFactory(name string) (EmbedderFactory, error) {
	mu.RLock()
	defer mu.RUnlock()
	factory, ok := embedderFactories[name]
	if !ok {
		return nil, fmt.Errorf("embedder not found: %s", name)
	}
	return factory, nil
}

// RegisterLLM registers an LLM factory under a provider name.
func RegisterLLM(name string, factory LLMFactory) {
	mu.Lock()
	defer mu.Unlock()
	llmFactories[name] = factory
}

// GetLLMFactory returns the factory for the given provider name.
func GetLLMFactory(name string) (LLMFactory, error) {
	mu.RLock()
	defer mu.RUnlock()
	factory, ok := llmFactories[name]
	if !ok {
		return nil, fmt.Errorf("llm provider not found: %s", name)
	}
	return factory, nil
}

// ListEmbedders returns the names of all registered embedding providers.
func ListEmbedders() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(embedderFactories))
	for name := range embedderFactories {
		names = append(names, name)
	}
	return names
}

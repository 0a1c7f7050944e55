package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/teilomillet/gollm"

	"github.com/Dhanyavarthini/Techie-S-Assistant/rag/providers"
)

// LLMConfig selects and configures the chat model.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewLLM builds a chat model by provider name. "openai" is served by
// gollm; every other name resolves through the provider registry,
// which carries "sambanova" by default.
func NewLLM(cfg LLMConfig) (providers.LLM, error) {
	if cfg.Provider == "openai" {
		return newGollmLLM(cfg)
	}
	name := cfg.Provider
	if name == "" {
		name = "sambanova"
	}
	factory, err := providers.GetLLMFactory(name)
	if err != nil {
		return nil, err
	}
	return factory(map[string]interface{}{
		"api_key":     cfg.APIKey,
		"model":       cfg.Model,
		"max_tokens":  cfg.MaxTokens,
		"temperature": cfg.Temperature,
		"timeout":     cfg.Timeout,
	})
}

// gollmLLM adapts a gollm model to the providers.LLM interface.
type gollmLLM struct {
	llm gollm.LLM
}

func newGollmLLM(cfg LLMConfig) (*gollmLLM, error) {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}
	llm, err := gollm.NewLLM(
		gollm.SetProvider("openai"),
		gollm.SetModel(model),
		gollm.SetAPIKey(cfg.APIKey),
		gollm.SetMaxTokens(maxTokens),
		gollm.SetMaxRetries(3),
		gollm.SetRetryDelay(time.Second*2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize openai llm: %w", err)
	}
	return &gollmLLM{llm: llm}, nil
}

func (g *gollmLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return g.llm.Generate(ctx, gollm.NewPrompt(prompt))
}

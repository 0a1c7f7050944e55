package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

func init() {
	RegisterEmbedder("sambanova", NewSambaNovaEmbedder)
	RegisterLLM("sambanova", NewSambaNovaLLM)
}

// SambaNova Cloud exposes an OpenAI-compatible API surface, so both the
// chat and embeddings clients speak that wire format against its base URL.
const (
	defaultSambaNovaChatAPI      = "https://api.sambanova.ai/v1/chat/completions"
	defaultSambaNovaEmbeddingAPI = "https://api.sambanova.ai/v1/embeddings"
	defaultSambaNovaChatModel    = "Meta-Llama-3.1-70B-Instruct"
	defaultSambaNovaEmbedModel   = "E5-Mistral-7B-Instruct"
)

// SambaNovaLLM is a chat-completions client for SambaNova Cloud. It is
// safe for concurrent use.
type SambaNovaLLM struct {
	apiKey      string
	client      *http.Client
	apiURL      string
	modelName   string
	maxTokens   int
	temperature float64
}

// NewSambaNovaLLM creates a SambaNova chat client. The config requires
// "api_key" and optionally accepts "model", "api_url", "max_tokens",
// "temperature" and "timeout".
func NewSambaNovaLLM(config map[string]interface{}) (LLM, error) {
	apiKey, ok := config["api_key"].(string)
	if !ok || apiKey == "" {
		return nil, fmt.Errorf("API key is required for SambaNova LLM")
	}

	l := &SambaNovaLLM{
		apiKey:      apiKey,
		client:      &http.Client{Timeout: 120 * time.Second},
		apiURL:      defaultSambaNovaChatAPI,
		modelName:   defaultSambaNovaChatModel,
		maxTokens:   1024,
		temperature: 0.0,
	}
	if model, ok := config["model"].(string); ok && model != "" {
		l.modelName = model
	}
	if apiURL, ok := config["api_url"].(string); ok && apiURL != "" {
		l.apiURL = apiURL
	}
	if maxTokens, ok := config["max_tokens"].(int); ok && maxTokens > 0 {
		l.maxTokens = maxTokens
	}
	if temperature, ok := config["temperature"].(float64); ok {
		l.temperature = temperature
	}
	if timeout, ok := config["timeout"].(time.Duration); ok && timeout > 0 {
		l.client.Timeout = timeout
	}
	return l, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends a single-turn chat completion and returns the assistant
// message content.
func (l *SambaNovaLLM) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:       l.modelName,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   l.maxTokens,
		Temperature: l.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status code %d: %s", resp.StatusCode, resp.Status)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// SambaNovaEmbedder generates embeddings through SambaNova Cloud.
type SambaNovaEmbedder struct {
	apiKey    string
	client    *http.Client
	apiURL    string
	modelName string
}

// NewSambaNovaEmbedder creates a SambaNova embedding client. The config
// requires "api_key" and optionally accepts "model", "api_url" and
// "timeout".
func NewSambaNovaEmbedder(config map[string]interface{}) (Embedder, error) {
	apiKey, ok := config["api_key"].(string)
	if !ok || apiKey == "" {
		return nil, fmt.Errorf("API key is required for SambaNova embedder")
	}

	e := &SambaNovaEmbedder{
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		apiURL:    defaultSambaNovaEmbeddingAPI,
		modelName: defaultSambaNovaEmbedModel,
	}
	if model, ok := config["model"].(string); ok && model != "" {
		e.modelName = model
	}
	if apiURL, ok := config["api_url"].(string); ok && apiURL != "" {
		e.apiURL = apiURL
	}
	if timeout, ok := config["timeout"].(time.Duration); ok {
		e.client.Timeout = timeout
	}
	return e, nil
}

// Embed converts the input text into its vector representation.
func (e *SambaNovaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody, err := json.Marshal(embeddingRequest{Input: text, Model: e.modelName})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status code %d: %s", resp.StatusCode, resp.Status)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}
	return parsed.Data[0].Embedding, nil
}

// GetDimension returns the output dimension for the current model.
func (e *SambaNovaEmbedder) GetDimension() (int, error) {
	switch e.modelName {
	case "E5-Mistral-7B-Instruct":
		return 4096, nil
	default:
		return 0, fmt.Errorf("unknown model: %s", e.modelName)
	}
}

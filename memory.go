package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Dhanyavarthini/Techie-S-Assistant/rag"
	"github.com/Dhanyavarthini/Techie-S-Assistant/rag/providers"
)

const (
	defaultMemoryTokenLimit = 100
	initialMemorySummary    = "The human and AI greet each other to start a conversation."
)

// ConversationMemory keeps a running summary of the conversation plus
// a short buffer of recent turns. When the buffer outgrows the token
// limit it is folded into the summary by the LLM, so the history
// handed to prompts stays bounded no matter how long the chat runs.
type ConversationMemory struct {
	mu         sync.Mutex
	llm        providers.LLM
	counter    rag.TokenCounter
	tokenLimit int
	summary    string
	buffer     []string
	logger     rag.Logger
}

// NewConversationMemory builds a memory seeded with a neutral opening
// summary. counter may be nil, in which case tokens are counted as
// words.
func NewConversationMemory(llm providers.LLM, counter rag.TokenCounter, tokenLimit int) *ConversationMemory {
	if counter == nil {
		counter = &rag.WordTokenCounter{}
	}
	if tokenLimit <= 0 {
		tokenLimit = defaultMemoryTokenLimit
	}
	return &ConversationMemory{
		llm:        llm,
		counter:    counter,
		tokenLimit: tokenLimit,
		summary:    initialMemorySummary,
		logger:     rag.GlobalLogger,
	}
}

// History returns the conversation context to interpolate into
// prompts: the summary followed by any buffered recent turns.
func (m *ConversationMemory) History() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.buffer) == 0 {
		return m.summary
	}
	return m.summary + "\n" + strings.Join(m.buffer, "\n")
}

// SaveContext records one question and answer pair. If the buffered
// turns exceed the token limit they are summarized away.
func (m *ConversationMemory) SaveContext(ctx context.Context, input, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffer = append(m.buffer,
		fmt.Sprintf("Human: %s", input),
		fmt.Sprintf("AI: %s", answer),
	)

	buffered := strings.Join(m.buffer, "\n")
	if m.counter.Count(buffered) <= m.tokenLimit {
		return nil
	}

	summary, err := m.llm.Generate(ctx, rag.SummaryPrompt(m.summary, buffered))
	if err != nil {
		return fmt.Errorf("failed to summarize conversation: %w", err)
	}
	m.summary = strings.TrimSpace(summary)
	m.buffer = nil
	m.logger.Debug("conversation folded into summary", "summary", m.summary)
	return nil
}

// Reset discards the conversation and restores the opening summary.
func (m *ConversationMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary = initialMemorySummary
	m.buffer = nil
}

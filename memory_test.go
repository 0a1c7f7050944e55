package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM returns canned responses and records the prompts it saw.
type fakeLLM struct {
	response string
	prompts  []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, nil
}

func TestConversationMemoryStartsWithGreeting(t *testing.T) {
	m := NewConversationMemory(&fakeLLM{}, nil, 100)
	assert.Equal(t, "The human and AI greet each other to start a conversation.", m.History())
}

func TestConversationMemoryBuffersShortTurns(t *testing.T) {
	llm := &fakeLLM{}
	m := NewConversationMemory(llm, nil, 100)

	require.NoError(t, m.SaveContext(context.Background(), "why is my pc slow", "check startup programs"))

	history := m.History()
	assert.Contains(t, history, "Human: why is my pc slow")
	assert.Contains(t, history, "AI: check startup programs")
	assert.Empty(t, llm.prompts, "short buffers should not trigger summarization")
}

func TestConversationMemorySummarizesLongBuffers(t *testing.T) {
	llm := &fakeLLM{response: "The human asked about a slow PC and got troubleshooting steps."}
	m := NewConversationMemory(llm, nil, 10)

	longAnswer := strings.Repeat("check the startup programs and drivers ", 5)
	require.NoError(t, m.SaveContext(context.Background(), "why is my pc slow", longAnswer))

	require.Len(t, llm.prompts, 1, "exceeding the token limit folds the buffer")
	assert.Equal(t, "The human asked about a slow PC and got troubleshooting steps.", m.History())
}

func TestConversationMemoryReset(t *testing.T) {
	m := NewConversationMemory(&fakeLLM{}, nil, 100)
	require.NoError(t, m.SaveContext(context.Background(), "q", "a"))

	m.Reset()
	assert.Equal(t, "The human and AI greet each other to start a conversation.", m.History())
}

func TestParseRelatedQueries(t *testing.T) {
	queries, err := parseRelatedQueries(`{"related_queries": ["how to clean fans", "laptop thermal paste"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"how to clean fans", "laptop thermal paste"}, queries)
}

func TestParseRelatedQueriesInCodeFence(t *testing.T) {
	raw := "Here you go:\n```json\n{\"related_queries\": [\"only one\"]}\n```\n"
	queries, err := parseRelatedQueries(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, queries)
}

func TestParseRelatedQueriesRejectsGarbage(t *testing.T) {
	_, err := parseRelatedQueries("I cannot answer that.")
	assert.Error(t, err)
}

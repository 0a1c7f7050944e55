package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextChunkerSmallInput(t *testing.T) {
	chunker, err := NewTextChunker()
	require.NoError(t, err)

	chunks := chunker.Chunk("The laptop will not boot. The power light blinks twice.")
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "power light")
	assert.Equal(t, 0, chunks[0].StartSentence)
	assert.Equal(t, 2, chunks[0].EndSentence)
}

func TestTextChunkerSplitsAndOverlaps(t *testing.T) {
	chunker, err := NewTextChunker(
		WithChunkSize(10),
		WithChunkOverlap(3),
	)
	require.NoError(t, err)

	// Five sentences of five words each, so a 10-token budget fits
	// two sentences per chunk.
	var sentences []string
	for i := 0; i < 5; i++ {
		sentences = append(sentences, "one two three four five.")
	}
	chunks := chunker.Chunk(strings.Join(sentences, " "))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i].StartSentence, chunks[i-1].EndSentence,
			"consecutive chunks should share overlap sentences")
	}
}

func TestTextChunkerRejectsBadOverlap(t *testing.T) {
	_, err := NewTextChunker(WithChunkSize(100), WithChunkOverlap(100))
	assert.Error(t, err)
}

func TestChunkDocumentsAddsReferences(t *testing.T) {
	chunker, err := NewTextChunker()
	require.NoError(t, err)

	docs := []Document{
		{Content: "Reset the SMC. Then reboot.", Source: "https://support.apple.com/smc"},
		{Content: "Update the BIOS first.", Source: "https://support.lenovo.com/bios"},
		{Content: "An orphaned page.", Source: "https://example.com/lost"},
	}
	sources := SourceIndex([]string{
		"https://support.apple.com/smc",
		"https://support.lenovo.com/bios",
	})

	chunks := ChunkDocuments(chunker, docs, sources)
	require.Len(t, chunks, 3)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "[reference:1] "))
	assert.True(t, strings.HasPrefix(chunks[1].Text, "[reference:2] "))
	assert.True(t, strings.HasPrefix(chunks[2].Text, "[reference:unknown] "))
	assert.Equal(t, "https://support.apple.com/smc", chunks[0].Source)
}

func TestSourceIndex(t *testing.T) {
	idx := SourceIndex([]string{"https://a", "https://b"})
	assert.Equal(t, map[string]int{"https://a": 1, "https://b": 2}, idx)
}

func TestSmartSentenceSplitter(t *testing.T) {
	sentences := SmartSentenceSplitter("Is it plugged in? Yes. Then turn it on!")
	require.Len(t, sentences, 3)
	assert.Equal(t, "Is it plugged in?", sentences[0])
}

func TestWordTokenCounter(t *testing.T) {
	counter := &WordTokenCounter{}
	assert.Equal(t, 4, counter.Count("the fan spins loudly"))
	assert.Equal(t, 0, counter.Count(""))
}

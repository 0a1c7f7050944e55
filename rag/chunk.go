package rag

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunk is a piece of document text with position and size metadata.
type Chunk struct {
	Text          string // chunk content, including any reference prefix
	Source        string // URL of the originating document
	TokenSize     int    // number of tokens in the chunk
	StartSentence int    // index of the first sentence in the chunk
	EndSentence   int    // index one past the last sentence
}

// Chunker splits text into chunks according to some strategy.
type Chunker interface {
	Chunk(text string) []Chunk
}

// TokenCounter counts tokens in a string. Implementations range from
// whitespace word counting to model-accurate subword tokenization.
type TokenCounter interface {
	Count(text string) int
}

// TextChunker splits text on sentence boundaries into chunks of roughly
// ChunkSize tokens with ChunkOverlap tokens shared between neighbors.
type TextChunker struct {
	ChunkSize        int
	ChunkOverlap     int
	TokenCounter     TokenCounter
	SentenceSplitter func(string) []string
}

// TextChunkerOption configures a TextChunker.
type TextChunkerOption func(*TextChunker)

// NewTextChunker creates a TextChunker with 256-token chunks, 64-token
// overlap, word-based counting and the default sentence splitter unless
// options say otherwise.
func NewTextChunker(options ...TextChunkerOption) (*TextChunker, error) {
	tc := &TextChunker{
		ChunkSize:        256,
		ChunkOverlap:     64,
		TokenCounter:     &WordTokenCounter{},
		SentenceSplitter: DefaultSentenceSplitter,
	}
	for _, option := range options {
		option(tc)
	}
	if tc.ChunkOverlap >= tc.ChunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", tc.ChunkOverlap, tc.ChunkSize)
	}
	return tc, nil
}

// WithChunkSize sets the target chunk size in tokens.
func WithChunkSize(size int) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.ChunkSize = size
	}
}

// WithChunkOverlap sets the token overlap between adjacent chunks.
func WithChunkOverlap(overlap int) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.ChunkOverlap = overlap
	}
}

// WithTokenCounter sets a custom token counter.
func WithTokenCounter(counter TokenCounter) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.TokenCounter = counter
	}
}

// WithSentenceSplitter sets a custom sentence splitter function.
func WithSentenceSplitter(splitter func(string) []string) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.SentenceSplitter = splitter
	}
}

// Chunk splits the input while preserving sentence boundaries. Chunks are
// built by appending sentences until the size limit, then the next chunk
// starts with enough trailing sentences to cover the configured overlap.
func (tc *TextChunker) Chunk(text string) []Chunk {
	sentences := tc.SentenceSplitter(text)
	var chunks []Chunk
	var currentChunk Chunk
	currentTokenCount := 0

	for i, sentence := range sentences {
		sentenceTokenCount := tc.TokenCounter.Count(sentence)

		if currentTokenCount+sentenceTokenCount > tc.ChunkSize && currentTokenCount > 0 {
			chunks = append(chunks, currentChunk)

			overlapStart := maxInt(currentChunk.StartSentence, currentChunk.EndSentence-tc.overlapSentences(sentences, currentChunk.EndSentence))
			currentChunk = Chunk{
				Text:          strings.Join(sentences[overlapStart:i+1], " "),
				StartSentence: overlapStart,
				EndSentence:   i + 1,
			}
			currentTokenCount = 0
			for j := overlapStart; j <= i; j++ {
				currentTokenCount += tc.TokenCounter.Count(sentences[j])
			}
		} else {
			if currentTokenCount == 0 {
				currentChunk.StartSentence = i
			}
			currentChunk.Text += sentence + " "
			currentChunk.EndSentence = i + 1
			currentTokenCount += sentenceTokenCount
		}
		currentChunk.TokenSize = currentTokenCount
	}

	if currentChunk.TokenSize > 0 {
		chunks = append(chunks, currentChunk)
	}
	return chunks
}

// overlapSentences counts how many trailing sentences of the previous
// chunk are needed to reach the configured token overlap.
func (tc *TextChunker) overlapSentences(sentences []string, endSentence int) int {
	overlapTokens := 0
	overlapSentences := 0
	for i := endSentence - 1; i >= 0 && overlapTokens < tc.ChunkOverlap; i-- {
		overlapTokens += tc.TokenCounter.Count(sentences[i])
		overlapSentences++
	}
	return overlapSentences
}

// ChunkDocuments chunks every document and prefixes each chunk with its
// source reference marker. The sources map assigns 1-based reference
// numbers in scrape order; documents missing from it are tagged unknown so
// a bad join surfaces in the generated answer instead of silently citing
// the wrong page.
func ChunkDocuments(chunker Chunker, docs []Document, sources map[string]int) []Chunk {
	var out []Chunk
	for _, doc := range docs {
		ref := "unknown"
		if n, ok := sources[doc.Source]; ok {
			ref = fmt.Sprintf("%d", n)
		}
		for _, chunk := range chunker.Chunk(doc.Content) {
			chunk.Text = fmt.Sprintf("[reference:%s] %s\n\n", ref, strings.TrimSpace(chunk.Text))
			chunk.Source = doc.Source
			out = append(out, chunk)
		}
	}
	return out
}

// SourceIndex maps scraped URLs to their 1-based reference numbers.
func SourceIndex(urls []string) map[string]int {
	sources := make(map[string]int, len(urls))
	for i, u := range urls {
		sources[u] = i + 1
	}
	return sources
}

// DefaultSentenceSplitter splits on common terminal punctuation. Suitable
// for plain prose without heavy formatting.
func DefaultSentenceSplitter(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

// SmartSentenceSplitter additionally respects quoted spans so punctuation
// inside quotes does not end a sentence.
func SmartSentenceSplitter(text string) []string {
	var sentences []string
	var current strings.Builder
	inQuote := false

	for _, r := range text {
		current.WriteRune(r)
		if r == '"' {
			inQuote = !inQuote
		}
		if (r == '.' || r == '!' || r == '?') && !inQuote {
			if len(sentences) > 0 || current.Len() > 1 {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		trimmed := strings.TrimSpace(current.String())
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// WordTokenCounter approximates token counts by whitespace words.
type WordTokenCounter struct{}

// Count returns the number of whitespace-delimited words.
func (wtc *WordTokenCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TikTokenCounter counts tokens with the tiktoken encodings used by the
// hosted models, so chunk budgets line up with what the embedder sees.
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// NewTikTokenCounter creates a counter for the given encoding, e.g.
// "cl100k_base".
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

// Count returns the exact token count under the configured encoding.
func (ttc *TikTokenCounter) Count(text string) int {
	return len(ttc.tke.Encode(text, nil, nil))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package rag

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
)

// BM25Parameters tunes the BM25 scoring function.
type BM25Parameters struct {
	K1 float64 // term saturation, typically 1.2-2.0
	B  float64 // length normalization, typically 0.75
}

func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{K1: 1.5, B: 0.75}
}

// BM25Index is a keyword index over indexed chunks. It complements
// the dense vector search: exact product names and error codes that an
// embedding can blur score sharply here.
type BM25Index struct {
	mu           sync.RWMutex
	docs         map[string]string
	sources      map[string]string
	termFreq     map[string]map[string]int
	docFreq      map[string]int
	docLength    map[string]int
	avgDocLength float64
	totalDocs    int
	params       BM25Parameters
	tokenize     func(string) []string
}

func NewBM25Index() *BM25Index {
	return &BM25Index{
		docs:      make(map[string]string),
		sources:   make(map[string]string),
		termFreq:  make(map[string]map[string]int),
		docFreq:   make(map[string]int),
		docLength: make(map[string]int),
		params:    DefaultBM25Parameters(),
		tokenize:  defaultTokenizer,
	}
}

func defaultTokenizer(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Add indexes a chunk under the given ID. Re-adding an ID replaces it.
func (idx *BM25Index) Add(ctx context.Context, id, content, source string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.docs[id]; exists {
		idx.removeLocked(id)
	}

	idx.docs[id] = content
	idx.sources[id] = source

	terms := idx.tokenize(content)
	termFreq := make(map[string]int)
	for _, term := range terms {
		termFreq[term]++
	}
	idx.termFreq[id] = termFreq
	idx.docLength[id] = len(terms)
	for term := range termFreq {
		idx.docFreq[term]++
	}

	idx.totalDocs++
	idx.recomputeAvgLength()
	return nil
}

func (idx *BM25Index) Remove(ctx context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(id)
	return nil
}

func (idx *BM25Index) removeLocked(id string) {
	termFreq, exists := idx.termFreq[id]
	if !exists {
		return
	}
	for term := range termFreq {
		idx.docFreq[term]--
		if idx.docFreq[term] == 0 {
			delete(idx.docFreq, term)
		}
	}
	delete(idx.docs, id)
	delete(idx.sources, id)
	delete(idx.termFreq, id)
	delete(idx.docLength, id)
	idx.totalDocs--
	idx.recomputeAvgLength()
}

func (idx *BM25Index) recomputeAvgLength() {
	if idx.totalDocs == 0 {
		idx.avgDocLength = 0
		return
	}
	var total int
	for _, length := range idx.docLength {
		total += length
	}
	idx.avgDocLength = float64(total) / float64(idx.totalDocs)
}

func (idx *BM25Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.totalDocs
}

// Search scores every indexed chunk against the query terms and
// returns the topK best matches.
func (idx *BM25Index) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scores := make(map[string]float64)
	for _, term := range idx.tokenize(query) {
		df, exists := idx.docFreq[term]
		if !exists {
			continue
		}
		idf := math.Log(1 + (float64(idx.totalDocs)-float64(df)+0.5)/(float64(df)+0.5))
		for docID, docTerms := range idx.termFreq {
			tf, exists := docTerms[term]
			if !exists {
				continue
			}
			docLen := float64(idx.docLength[docID])
			numerator := float64(tf) * (idx.params.K1 + 1)
			denominator := float64(tf) + idx.params.K1*(1-idx.params.B+idx.params.B*docLen/idx.avgDocLength)
			scores[docID] += idf * numerator / denominator
		}
	}

	results := make([]SearchResult, 0, len(scores))
	for docID, score := range scores {
		results = append(results, SearchResult{
			ID:     docID,
			Score:  score,
			Text:   idx.docs[docID],
			Source: idx.sources[docID],
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (idx *BM25Index) SetParameters(params BM25Parameters) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.params = params
}

func (idx *BM25Index) SetTokenizer(tokenize func(string) []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tokenize = tokenize
}

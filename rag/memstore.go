package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRecord struct {
	id        string
	text      string
	source    string
	embedding []float64
}

// MemoryDB keeps embedded chunks in process memory. It exists for
// tests and for running without a database; nothing survives a
// restart.
type MemoryDB struct {
	mu          sync.RWMutex
	collections map[string][]memoryRecord
	logger      Logger
}

func newMemoryDB(cfg *StoreConfig) (*MemoryDB, error) {
	return &MemoryDB{
		collections: make(map[string][]memoryRecord),
		logger:      cfg.Logger,
	}, nil
}

func (m *MemoryDB) Connect(ctx context.Context) error { return nil }

func (m *MemoryDB) Close() error { return nil }

func (m *MemoryDB) HasCollection(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[name]
	return ok, nil
}

func (m *MemoryDB) DropCollection(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	return nil
}

func (m *MemoryDB) EnsureCollection(ctx context.Context, name string, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = nil
	}
	return nil
}

func (m *MemoryDB) Insert(ctx context.Context, collection string, chunks []EmbeddedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; !ok {
		return fmt.Errorf("collection %s does not exist", collection)
	}
	for _, chunk := range chunks {
		source, _ := chunk.Metadata["source"].(string)
		m.collections[collection] = append(m.collections[collection], memoryRecord{
			id:        uuid.NewString(),
			text:      chunk.Text,
			source:    source,
			embedding: chunk.Embedding,
		})
	}
	return nil
}

func (m *MemoryDB) Search(ctx context.Context, collection string, query []float64, topK int) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}

	results := make([]SearchResult, 0, len(records))
	for _, rec := range records {
		results = append(results, SearchResult{
			ID:     rec.id,
			Score:  cosineSimilarity(query, rec.embedding),
			Text:   rec.text,
			Source: rec.source,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

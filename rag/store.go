package rag

import (
	"context"
	"fmt"
	"time"
)

// SearchResult is one retrieved chunk with its similarity score. Scores
// are similarities in all backends: higher means closer.
type SearchResult struct {
	ID     string
	Score  float64
	Text   string
	Source string
}

// VectorDB stores embedded chunks and answers nearest-neighbor queries.
// Backends are selected by name through NewVectorDB.
type VectorDB interface {
	Connect(ctx context.Context) error
	Close() error
	HasCollection(ctx context.Context, name string) (bool, error)
	DropCollection(ctx context.Context, name string) error
	EnsureCollection(ctx context.Context, name string, dimension int) error
	Insert(ctx context.Context, collection string, chunks []EmbeddedChunk) error
	Search(ctx context.Context, collection string, query []float64, topK int) ([]SearchResult, error)
}

// StoreConfig configures a vector store backend.
type StoreConfig struct {
	Type      string // "chromem", "milvus" or "memory"
	Address   string // persist directory for chromem, host:port for milvus
	Dimension int
	Timeout   time.Duration

	// EmbeddingFunc is required by backends that embed on their own
	// (chromem); ignored by the rest.
	EmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

	Logger Logger
}

// NewVectorDB builds a vector store backend by name.
func NewVectorDB(cfg *StoreConfig) (VectorDB, error) {
	if cfg.Logger == nil {
		cfg.Logger = GlobalLogger
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	switch cfg.Type {
	case "chromem":
		return newChromemDB(cfg)
	case "milvus":
		return newMilvusDB(cfg)
	case "memory":
		return newMemoryDB(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func toFloat32Slice(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(val)
	}
	return out
}

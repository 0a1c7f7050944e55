package assistant

import (
	"context"
	"fmt"

	"github.com/Dhanyavarthini/Techie-S-Assistant/rag"
)

// RetrieverConfig holds the retrieval parameters.
type RetrieverConfig struct {
	Collection string
	TopK       int
	MinScore   float64
	// Hybrid fuses dense results with BM25 keyword matches. Useful
	// for queries dominated by exact error codes or model numbers.
	Hybrid       bool
	DenseWeight  float64
	SparseWeight float64
	Logger       rag.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*RetrieverConfig)

func WithRetrieveCollection(name string) RetrieverOption {
	return func(c *RetrieverConfig) {
		c.Collection = name
	}
}

func WithTopK(k int) RetrieverOption {
	return func(c *RetrieverConfig) {
		c.TopK = k
	}
}

func WithMinScore(score float64) RetrieverOption {
	return func(c *RetrieverConfig) {
		c.MinScore = score
	}
}

func WithHybrid(enabled bool) RetrieverOption {
	return func(c *RetrieverConfig) {
		c.Hybrid = enabled
	}
}

func WithRetrieveLogger(logger rag.Logger) RetrieverOption {
	return func(c *RetrieverConfig) {
		c.Logger = logger
	}
}

// Retriever finds indexed chunks relevant to a query. The similarity
// threshold applies to the dense scores before fusion; fused scores
// are rank-based and live on a different scale.
type Retriever struct {
	db       rag.VectorDB
	embedder *rag.EmbeddingService
	sparse   *rag.BM25Index
	reranker *rag.RRFReranker
	config   RetrieverConfig
	logger   rag.Logger
}

func NewRetriever(db rag.VectorDB, embedder *rag.EmbeddingService, sparse *rag.BM25Index, opts ...RetrieverOption) *Retriever {
	config := RetrieverConfig{
		Collection:   "techie_docs",
		TopK:         3,
		MinScore:     0.3,
		Hybrid:       true,
		DenseWeight:  0.7,
		SparseWeight: 0.3,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = rag.GlobalLogger
	}
	return &Retriever{
		db:       db,
		embedder: embedder,
		sparse:   sparse,
		reranker: rag.NewRRFReranker(0),
		config:   config,
		logger:   config.Logger,
	}
}

// Retrieve returns up to TopK chunks relevant to the query, most
// relevant first.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]rag.SearchResult, error) {
	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	dense, err := r.db.Search(ctx, r.config.Collection, queryEmbedding, r.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	filtered := dense[:0]
	for _, result := range dense {
		if result.Score >= r.config.MinScore {
			filtered = append(filtered, result)
		}
	}
	dense = filtered

	if !r.config.Hybrid || r.sparse == nil || r.sparse.Len() == 0 {
		return dense, nil
	}

	sparse, err := r.sparse.Search(ctx, query, r.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	fused, err := r.reranker.Rerank(ctx, query, dense, sparse, r.config.DenseWeight, r.config.SparseWeight)
	if err != nil {
		return nil, err
	}
	if len(fused) > r.config.TopK {
		fused = fused[:r.config.TopK]
	}
	r.logger.Debug("retrieved chunks", "query", query, "dense", len(dense), "sparse", len(sparse), "fused", len(fused))
	return fused, nil
}
